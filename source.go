// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"io"
	"math"
)

// MessageSource owns one working buffer leased from an allocator, a
// SourceProvider, and the position/limit bookkeeping described in spec §3:
// bytes in [position, limit) of buf are pending input; position <= limit
// <= cap(buf) at all times.
//
// Not safe for concurrent use (spec §5): a MessageSource is exclusively
// owned by the MessageReader built on top of it.
type MessageSource struct {
	provider SourceProvider
	leased   *LeasedBuffer
	buf      []byte // len(buf) == limit; cap(buf) == buffer capacity
	position int
	closed   bool
}

// NewMessageSource leases a working buffer of the given capacity from
// alloc and wraps provider.
func NewMessageSource(provider SourceProvider, alloc Allocator, bufferCapacity int) (*MessageSource, error) {
	leased, err := alloc.Acquire(bufferCapacity)
	if err != nil {
		return nil, err
	}
	return &MessageSource{
		provider: provider,
		leased:   leased,
		buf:      leased.Bytes()[:0],
	}, nil
}

func (s *MessageSource) remaining() int {
	return len(s.buf) - s.position
}

// EnsureRemaining guarantees at least min bytes are readable starting at
// the current position, compacting and refilling from the provider as
// needed. Returns *Error{Kind: PrematureEndOfInput} on EOF before min
// bytes could be made available.
func (s *MessageSource) EnsureRemaining(min int) error {
	if s.remaining() >= min {
		return nil
	}
	if min > cap(s.buf) {
		return &Error{Kind: PrematureEndOfInput, Length: int64(min), Max: int64(s.remaining())}
	}

	// Compact: move [position, len(buf)) to the front.
	n := copy(s.buf[:cap(s.buf)], s.buf[s.position:])
	s.buf = s.buf[:n]
	s.position = 0

	for s.remaining() < min {
		grown, err := s.provider.Read(s.buf, min-s.remaining())
		if err == io.EOF {
			return &Error{Kind: PrematureEndOfInput, Length: int64(min), Max: int64(s.remaining())}
		}
		if err != nil {
			return wrapIo(err)
		}
		s.buf = grown
	}
	return nil
}

// ReadByte consumes and returns one byte.
func (s *MessageSource) ReadByte() (byte, error) {
	if err := s.EnsureRemaining(1); err != nil {
		return 0, err
	}
	b := s.buf[s.position]
	s.position++
	return b, nil
}

// NextByte peeks at the next byte without consuming it.
func (s *MessageSource) NextByte() (byte, error) {
	if err := s.EnsureRemaining(1); err != nil {
		return 0, err
	}
	return s.buf[s.position], nil
}

func (s *MessageSource) readN(n int) ([]byte, error) {
	if err := s.EnsureRemaining(n); err != nil {
		return nil, err
	}
	b := s.buf[s.position : s.position+n]
	s.position += n
	return b, nil
}

// ReadU8/ReadI8/... read a fixed-width big-endian value and advance.

func (s *MessageSource) ReadU8() (uint8, error) {
	b, err := s.ReadByte()
	return b, err
}

func (s *MessageSource) ReadI8() (int8, error) {
	b, err := s.ReadByte()
	return int8(b), err
}

func (s *MessageSource) ReadU16() (uint16, error) {
	b, err := s.readN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (s *MessageSource) ReadI16() (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

func (s *MessageSource) ReadU32() (uint32, error) {
	b, err := s.readN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (s *MessageSource) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *MessageSource) ReadU64() (uint64, error) {
	b, err := s.readN(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := range 8 {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

func (s *MessageSource) ReadI64() (int64, error) {
	v, err := s.ReadU64()
	return int64(v), err
}

func (s *MessageSource) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}

func (s *MessageSource) ReadF64() (float64, error) {
	v, err := s.ReadU64()
	return math.Float64frombits(v), err
}

// ReadLength8/16/32 read an unsigned length prefix of the given width.
// ReadLength32 rejects a raw value whose high bit is set (would read back
// negative as an int32) as LengthTooLarge, per spec §4.1/§4.4.
func (s *MessageSource) ReadLength8() (int, error) {
	v, err := s.ReadU8()
	return int(v), err
}

func (s *MessageSource) ReadLength16() (int, error) {
	v, err := s.ReadU16()
	return int(v), err
}

func (s *MessageSource) ReadLength32() (int, error) {
	v, err := s.ReadU32()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, &Error{Kind: LengthTooLarge, Length: int64(v), Max: math.MaxInt32}
	}
	return int(v), nil
}

// ReadAtLeast fills dest with at least min bytes, draining the source
// buffer first and reading directly from the provider for the remainder.
func (s *MessageSource) ReadAtLeast(dest []byte, min int) (int, error) {
	n := copy(dest, s.buf[s.position:])
	s.position += n
	if n >= min {
		return n, nil
	}
	for n < min {
		// Three-index slice so provider.Read's buf[len(buf):cap(buf)]
		// window lands exactly on dest[n:len(dest)].
		window := dest[:n:len(dest)]
		grown, err := s.provider.Read(window, min-n)
		if err == io.EOF {
			return n, &Error{Kind: PrematureEndOfInput, Length: int64(min), Max: int64(n)}
		}
		if err != nil {
			return n, wrapIo(err)
		}
		n = len(grown)
	}
	return n, nil
}

// ReadPayload reads exactly len(dest) bytes: first draining any bytes
// already buffered, then delegating the remainder to ReadAtLeast.
func (s *MessageSource) ReadPayload(dest []byte) error {
	_, err := s.ReadAtLeast(dest, len(dest))
	return err
}

// Skip advances past length bytes without necessarily buffering them.
func (s *MessageSource) Skip(length int64) error {
	avail := int64(s.remaining())
	if avail >= length {
		s.position += int(length)
		return nil
	}
	length -= avail
	s.position = len(s.buf)
	return s.provider.Skip(length, s.buf[:cap(s.buf)])
}

// TransferTo flushes the buffered remainder to out, then zero-copy
// transfers the rest via the provider where possible.
func (s *MessageSource) TransferTo(out io.Writer, length int64) (int64, error) {
	avail := int64(s.remaining())
	if avail > length {
		avail = length
	}
	n, err := out.Write(s.buf[s.position : s.position+int(avail)])
	s.position += n
	if err != nil {
		return int64(n), wrapIo(err)
	}
	remaining := length - int64(n)
	if remaining <= 0 {
		return int64(n), nil
	}
	transferred, err := s.provider.TransferTo(out, remaining, s.buf[:cap(s.buf)])
	return int64(n) + transferred, err
}

// Close cascades to the provider and releases the working buffer.
func (s *MessageSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.leased.Release()
	return s.provider.Close()
}
