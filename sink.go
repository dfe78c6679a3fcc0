// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"io"
	"math"
)

// MessageSink mirrors MessageSource: it owns a working buffer leased from
// an allocator, in which [0, position) is staged output waiting to be
// flushed to the provider (spec §3/§4.5).
//
// Not safe for concurrent use.
type MessageSink struct {
	provider SinkProvider
	leased   *LeasedBuffer
	buf      []byte // cap(buf) is the buffer capacity; data lives in buf[:position]
	position int
	closed   bool
}

// NewMessageSink leases a working buffer of the given capacity from alloc
// and wraps provider.
func NewMessageSink(provider SinkProvider, alloc Allocator, bufferCapacity int) (*MessageSink, error) {
	leased, err := alloc.Acquire(bufferCapacity)
	if err != nil {
		return nil, err
	}
	return &MessageSink{
		provider: provider,
		leased:   leased,
		buf:      leased.Bytes()[:cap(leased.Bytes())],
	}, nil
}

// EnsureRemaining guarantees at least min free bytes starting at position,
// flushing staged bytes first if necessary. min must not exceed the
// buffer's total capacity.
func (s *MessageSink) EnsureRemaining(min int) error {
	if cap(s.buf)-s.position >= min {
		return nil
	}
	if err := s.flushStaged(); err != nil {
		return err
	}
	if min > cap(s.buf) {
		return &Error{Kind: SizeLimitExceeded, Length: int64(min), Max: int64(cap(s.buf))}
	}
	return nil
}

func (s *MessageSink) flushStaged() error {
	if s.position == 0 {
		return nil
	}
	if err := s.provider.Write(s.buf[:s.position]); err != nil {
		return wrapIo(err)
	}
	s.position = 0
	return nil
}

// WriteByte stages one byte.
func (s *MessageSink) WriteByte(b byte) error {
	if err := s.EnsureRemaining(1); err != nil {
		return err
	}
	s.buf[s.position] = b
	s.position++
	return nil
}

func (s *MessageSink) writeN(n int) []byte {
	w := s.buf[s.position : s.position+n]
	s.position += n
	return w
}

func (s *MessageSink) WriteU8(v uint8) error {
	if err := s.EnsureRemaining(1); err != nil {
		return err
	}
	s.writeN(1)[0] = v
	return nil
}

func (s *MessageSink) WriteI8(v int8) error {
	return s.WriteU8(uint8(v))
}

func (s *MessageSink) WriteU16(v uint16) error {
	if err := s.EnsureRemaining(2); err != nil {
		return err
	}
	w := s.writeN(2)
	w[0] = byte(v >> 8)
	w[1] = byte(v)
	return nil
}

func (s *MessageSink) WriteI16(v int16) error {
	return s.WriteU16(uint16(v))
}

func (s *MessageSink) WriteU32(v uint32) error {
	if err := s.EnsureRemaining(4); err != nil {
		return err
	}
	w := s.writeN(4)
	w[0] = byte(v >> 24)
	w[1] = byte(v >> 16)
	w[2] = byte(v >> 8)
	w[3] = byte(v)
	return nil
}

func (s *MessageSink) WriteI32(v int32) error {
	return s.WriteU32(uint32(v))
}

func (s *MessageSink) WriteU64(v uint64) error {
	if err := s.EnsureRemaining(8); err != nil {
		return err
	}
	w := s.writeN(8)
	for i := range 8 {
		w[i] = byte(v >> uint(8*(7-i)))
	}
	return nil
}

func (s *MessageSink) WriteI64(v int64) error {
	return s.WriteU64(uint64(v))
}

func (s *MessageSink) WriteF32(v float32) error {
	return s.WriteU32(math.Float32bits(v))
}

func (s *MessageSink) WriteF64(v float64) error {
	return s.WriteU64(math.Float64bits(v))
}

// WriteByteAndByte/Short/Int/Long write a tag byte followed by a fixed
// width value in a single buffer reservation, matching spec §4.5's batched
// header+value writes.
func (s *MessageSink) WriteByteAndByte(tag byte, v uint8) error {
	if err := s.EnsureRemaining(2); err != nil {
		return err
	}
	w := s.writeN(2)
	w[0], w[1] = tag, v
	return nil
}

func (s *MessageSink) WriteByteAndShort(tag byte, v uint16) error {
	if err := s.EnsureRemaining(3); err != nil {
		return err
	}
	w := s.writeN(3)
	w[0] = tag
	w[1] = byte(v >> 8)
	w[2] = byte(v)
	return nil
}

func (s *MessageSink) WriteByteAndInt(tag byte, v uint32) error {
	if err := s.EnsureRemaining(5); err != nil {
		return err
	}
	w := s.writeN(5)
	w[0] = tag
	w[1] = byte(v >> 24)
	w[2] = byte(v >> 16)
	w[3] = byte(v >> 8)
	w[4] = byte(v)
	return nil
}

func (s *MessageSink) WriteByteAndLong(tag byte, v uint64) error {
	if err := s.EnsureRemaining(9); err != nil {
		return err
	}
	w := s.writeN(9)
	w[0] = tag
	for i := range 8 {
		w[1+i] = byte(v >> uint(8*(7-i)))
	}
	return nil
}

// Write stages src, flushing first if it doesn't fit and forwarding
// directly to the provider if src is at least as large as the whole buffer.
func (s *MessageSink) Write(src []byte) error {
	if cap(s.buf)-s.position >= len(src) {
		s.position += copy(s.buf[s.position:], src)
		return nil
	}
	if err := s.flushStaged(); err != nil {
		return err
	}
	if len(src) >= cap(s.buf) {
		return wrapIo(s.provider.Write(src))
	}
	s.position += copy(s.buf[s.position:], src)
	return nil
}

// WriteVectored stages or forwards each of srcs in order.
func (s *MessageSink) WriteVectored(srcs ...[]byte) error {
	for _, src := range srcs {
		if err := s.Write(src); err != nil {
			return err
		}
	}
	return nil
}

// flushOverflow flushes the currently staged header bytes together with an
// overflow payload buffer as a single provider.WriteVectored scatter write,
// instead of copying overflow into the working buffer first. Used by the
// string codec's overflow path (spec §4.8 step 5).
func (s *MessageSink) flushOverflow(overflow []byte) error {
	if s.position == 0 {
		return wrapIo(s.provider.Write(overflow))
	}
	err := s.provider.WriteVectored([][]byte{s.buf[:s.position], overflow})
	s.position = 0
	if err != nil {
		return wrapIo(err)
	}
	return nil
}

// TransferFrom flushes staged bytes, then delegates to the provider.
func (s *MessageSink) TransferFrom(in io.Reader, maxBytes int64) (int64, error) {
	if err := s.flushStaged(); err != nil {
		return 0, err
	}
	n, err := s.provider.TransferFrom(in, maxBytes)
	if err != nil {
		return n, wrapIo(err)
	}
	return n, nil
}

// Flush drains staged bytes to the provider, then flushes the provider.
func (s *MessageSink) Flush() error {
	if err := s.flushStaged(); err != nil {
		return err
	}
	return wrapIo(s.provider.Flush())
}

// Close cascades to the provider (after a final flush) and releases the
// working buffer.
func (s *MessageSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.flushStaged()
	s.leased.Release()
	return s.provider.Close()
}
