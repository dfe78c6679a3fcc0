// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"unicode/utf8"
)

// replacementChar is the 3-byte UTF-8 encoding of U+FFFD, substituted for
// malformed or unmappable input per spec §4.8 step 6.
const replacementChar = "�"

// StringEncoder writes a Go string onto a MessageSink as a MessagePack str
// value. StringDecoder is the inverse, reading off a MessageSource.
//
// Both are modelled as single-method interfaces (spec §9's "functional
// interface" note) so a caller may supply either the built-in
// CharsetStringEncoder/Decoder or a custom implementation.
type StringEncoder interface {
	Encode(sink *MessageSink, s string) error
}

type StringDecoder interface {
	Decode(source *MessageSource) (string, error)
}

// CharsetStringEncoder implements the 6-step UTF-8 encode algorithm of
// spec §4.8: reserve a worst-case header, encode directly into the sink
// buffer, overflow to an auxiliary buffer on exhaustion, then patch the
// header in place with the real tag and length.
type CharsetStringEncoder struct {
	Allocator Allocator
}

func (e CharsetStringEncoder) Encode(sink *MessageSink, s string) error {
	if len(s) == 0 {
		return sink.WriteByte(tagFixStrMin)
	}

	// Worst case: every rune could need replacement (3 bytes) or already
	// be up to 4 UTF-8 bytes; char_len*3 is a safe upper bound per spec.
	worstCase := len(s) * 3
	headerLen := stringHeaderLen(worstCase)

	if err := sink.EnsureRemaining(headerLen); err != nil {
		return err
	}
	headerStart := sink.position
	sink.position += headerLen // reserve; patched below

	written := 0
	var overflow []byte
	var overflowLease *LeasedBuffer
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		enc := string(r)
		if r == utf8.RuneError && size <= 1 {
			enc = replacementChar
		}
		n := len(enc)

		if overflow == nil && cap(sink.buf)-sink.position >= n {
			copy(sink.buf[sink.position:], enc)
			sink.position += n
			written += n
		} else {
			if overflow == nil {
				remaining := worstCase - written
				var err error
				overflowLease, err = e.allocator().Acquire(remaining)
				if err != nil {
					return err
				}
				overflow = overflowLease.Bytes()[:0]
			}
			overflow = append(overflow, enc...)
			written += n
		}
		i += size
	}

	// The actual header may be narrower than the worst-case reservation;
	// close the gap by shifting the in-buffer payload left.
	tag, lenBytes := stringTagAndLenBytes(written)
	actualHeaderLen := 1 + lenBytes
	if gap := headerLen - actualHeaderLen; gap > 0 {
		copy(sink.buf[headerStart+actualHeaderLen:], sink.buf[headerStart+headerLen:sink.position])
		sink.position -= gap
	}
	patchStringHeader(sink.buf[headerStart:headerStart+actualHeaderLen], tag, lenBytes, written)

	if overflow != nil {
		err := sink.flushOverflow(overflow)
		overflowLease.Release()
		return err
	}
	return nil
}

func (e CharsetStringEncoder) allocator() Allocator {
	if e.Allocator != nil {
		return e.Allocator
	}
	return NewUnpooledAllocator(0)
}

// stringHeaderLen returns the worst-case header width (1, 2, 3, or 5 bytes)
// for a payload of up to n bytes.
func stringHeaderLen(n int) int {
	switch {
	case n <= 31:
		return 1
	case n <= 255:
		return 2
	case n <= 65535:
		return 3
	default:
		return 5
	}
}

// stringTagAndLenBytes returns the tag byte to use (for fixstr, the full
// tag including the length bits; for str8/16/32, the bare tag) and how
// many length bytes follow it.
func stringTagAndLenBytes(n int) (tag byte, lenBytes int) {
	switch {
	case n <= 31:
		return tagFixStrMin | byte(n), 0
	case n <= 255:
		return tagStr8, 1
	case n <= 65535:
		return tagStr16, 2
	default:
		return tagStr32, 4
	}
}

// patchStringHeader writes tag (+ length bytes, if any) into header, which
// must be exactly the right width for lenBytes.
func patchStringHeader(header []byte, tag byte, lenBytes int, n int) {
	header[0] = tag
	switch lenBytes {
	case 1:
		header[1] = byte(n)
	case 2:
		header[1] = byte(n >> 8)
		header[2] = byte(n)
	case 4:
		header[1] = byte(n >> 24)
		header[2] = byte(n >> 16)
		header[3] = byte(n >> 8)
		header[4] = byte(n)
	}
}

// CharsetStringDecoder implements the decode side of spec §4.8: decode in
// place when the payload is already buffered, otherwise read it into an
// auxiliary buffer allocated once at the declared length. The auxiliary
// buffer does not grow incrementally; MaxStringSize is the only bound on
// its size.
type CharsetStringDecoder struct {
	// MaxStringSize bounds the declared length; 0 means unbounded.
	MaxStringSize int
}

func (d CharsetStringDecoder) Decode(source *MessageSource) (string, error) {
	n, err := readStringHeader(source)
	if err != nil {
		return "", err
	}
	if d.MaxStringSize > 0 && n > d.MaxStringSize {
		return "", &Error{Kind: StringTooLarge, Length: int64(n), Max: int64(d.MaxStringSize)}
	}
	if n == 0 {
		return "", nil
	}

	if source.remaining() >= n {
		s := decodeUTF8WithReplacement(source.buf[source.position : source.position+n])
		source.position += n
		return s, nil
	}

	buf := make([]byte, n)
	if err := source.ReadPayload(buf); err != nil {
		return "", err
	}
	return decodeUTF8WithReplacement(buf), nil
}

func decodeUTF8WithReplacement(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb []byte
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb = append(sb, replacementChar...)
			b = b[1:]
			continue
		}
		sb = append(sb, b[:size]...)
		b = b[size:]
	}
	return string(sb)
}

// readStringHeader reads a str/fixstr header and returns the declared
// payload length.
func readStringHeader(source *MessageSource) (int, error) {
	tag, err := source.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case IsFixStr(tag):
		return FixStrLength(tag), nil
	case tag == tagStr8:
		return source.ReadLength8()
	case tag == tagStr16:
		return source.ReadLength16()
	case tag == tagStr32:
		return source.ReadLength32()
	default:
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Str"}
	}
}
