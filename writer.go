// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

// MessageWriter is the exclusive owner of a MessageSink for its lifetime
// (spec §3): it implements the minimum-width encoding rules of §4.7 on top
// of the sink's buffered byte writes.
type MessageWriter struct {
	sink              *MessageSink
	stringEncoder     StringEncoder
	identifierEncoder IdentifierEncoder
}

// NewWriter leases a sink buffer from opts.Allocator and wraps provider.
func NewWriter(provider SinkProvider, opts WriterOptions) (*MessageWriter, error) {
	opts = opts.withDefaults()
	sink, err := NewMessageSink(provider, opts.Allocator, opts.WriteBufferCapacity)
	if err != nil {
		return nil, err
	}
	return &MessageWriter{
		sink:              sink,
		stringEncoder:     opts.StringEncoder,
		identifierEncoder: opts.IdentifierEncoder,
	}, nil
}

// WriteNil writes the nil tag.
func (w *MessageWriter) WriteNil() error {
	return w.sink.WriteByte(tagNil)
}

// WriteBool writes the false/true tag.
func (w *MessageWriter) WriteBool(v bool) error {
	if v {
		return w.sink.WriteByte(tagTrue)
	}
	return w.sink.WriteByte(tagFalse)
}

// WriteInt writes v using the minimum-width selection table of spec §4.7:
// negative values choose fixint|int8|int16|int32|int64 by range;
// non-negative values that don't fit positive fixint choose
// uint8|uint16|uint32|uint64, since nothing is gained by spending a sign
// bit on a value already known to be non-negative.
func (w *MessageWriter) WriteInt(v int64) error {
	if v >= 0 {
		return w.WriteUint(uint64(v))
	}
	switch {
	case v >= -32:
		return w.sink.WriteByte(byte(int8(v)))
	case v >= -128:
		return w.sink.WriteByteAndByte(tagInt8, uint8(int8(v)))
	case v >= -(1 << 15):
		return w.sink.WriteByteAndShort(tagInt16, uint16(int16(v)))
	case v >= -(1 << 31):
		return w.sink.WriteByteAndInt(tagInt32, uint32(int32(v)))
	default:
		return w.sink.WriteByteAndLong(tagInt64, uint64(v))
	}
}

// WriteUint writes v using the minimum-width unsigned selection table of
// spec §4.7.
func (w *MessageWriter) WriteUint(v uint64) error {
	switch {
	case v <= 127:
		return w.sink.WriteByte(byte(v))
	case v < 1<<8:
		return w.sink.WriteByteAndByte(tagUint8, uint8(v))
	case v < 1<<16:
		return w.sink.WriteByteAndShort(tagUint16, uint16(v))
	case v < 1<<32:
		return w.sink.WriteByteAndInt(tagUint32, uint32(v))
	default:
		return w.sink.WriteByteAndLong(tagUint64, v)
	}
}

// WriteF32 writes a 32-bit float. MiniPack never promotes a 32-bit input to
// 64-bit for precision preservation (spec §9, pinned by round-trip tests).
func (w *MessageWriter) WriteF32(v float32) error {
	if err := w.sink.EnsureRemaining(5); err != nil {
		return err
	}
	_ = w.sink.WriteByte(tagFloat32)
	return w.sink.WriteF32(v)
}

func (w *MessageWriter) WriteF64(v float64) error {
	if err := w.sink.EnsureRemaining(9); err != nil {
		return err
	}
	_ = w.sink.WriteByte(tagFloat64)
	return w.sink.WriteF64(v)
}

// WriteTimestamp encodes (seconds, nanos) per spec §4.7's three-width
// selection.
func (w *MessageWriter) WriteTimestamp(seconds int64, nanos uint32) error {
	switch {
	case nanos == 0 && seconds >= 0 && seconds < 1<<32:
		return w.writeFixExtHeader(4, extTypeTimestamp, func() error {
			return w.sink.WriteU32(uint32(seconds))
		})
	case seconds >= 0 && seconds < 1<<34:
		packed := (uint64(nanos) << 34) | uint64(seconds)
		return w.writeFixExtHeader(8, extTypeTimestamp, func() error {
			return w.sink.WriteU64(packed)
		})
	default:
		return w.writeExt8Header(12, extTypeTimestamp, func() error {
			if err := w.sink.WriteU32(nanos); err != nil {
				return err
			}
			return w.sink.WriteI64(seconds)
		})
	}
}

func (w *MessageWriter) writeFixExtHeader(n int, extType int8, writePayload func() error) error {
	tag, ok := fixExtTagForLength(n)
	if !ok {
		panic("writeFixExtHeader: n must be 1, 2, 4, 8, or 16")
	}
	if err := w.sink.WriteByteAndByte(tag, uint8(extType)); err != nil {
		return err
	}
	return writePayload()
}

func (w *MessageWriter) writeExt8Header(n int, extType int8, writePayload func() error) error {
	if err := w.sink.WriteByteAndByte(tagExt8, uint8(n)); err != nil {
		return err
	}
	if err := w.sink.WriteI8(extType); err != nil {
		return err
	}
	return writePayload()
}

func fixExtTagForLength(n int) (byte, bool) {
	switch n {
	case 1:
		return tagFixExt1, true
	case 2:
		return tagFixExt2, true
	case 4:
		return tagFixExt4, true
	case 8:
		return tagFixExt8, true
	case 16:
		return tagFixExt16, true
	default:
		return 0, false
	}
}

// WriteArrayHeader writes an array length header, choosing fix/16/32 form
// by range. Negative n is NegativeLength.
func (w *MessageWriter) WriteArrayHeader(n int) error {
	if n < 0 {
		return &Error{Kind: NegativeLength, Length: int64(n)}
	}
	switch {
	case n <= 15:
		return w.sink.WriteByte(tagFixArrayMin | byte(n))
	case n <= 65535:
		return w.sink.WriteByteAndShort(tagArray16, uint16(n))
	default:
		return w.sink.WriteByteAndInt(tagArray32, uint32(n))
	}
}

// WriteMapHeader writes a map entry-count header.
func (w *MessageWriter) WriteMapHeader(n int) error {
	if n < 0 {
		return &Error{Kind: NegativeLength, Length: int64(n)}
	}
	switch {
	case n <= 15:
		return w.sink.WriteByte(tagFixMapMin | byte(n))
	case n <= 65535:
		return w.sink.WriteByteAndShort(tagMap16, uint16(n))
	default:
		return w.sink.WriteByteAndInt(tagMap32, uint32(n))
	}
}

// WriteStringHeader writes a str/fixstr length header without the payload;
// the caller must follow with exactly n bytes written via the sink.
func (w *MessageWriter) WriteStringHeader(n int) error {
	if n < 0 {
		return &Error{Kind: NegativeLength, Length: int64(n)}
	}
	tag, lenBytes := stringTagAndLenBytes(n)
	return w.writeHeaderTagAndLen(tag, lenBytes, n)
}

// WriteBinaryHeader writes a bin8/16/32 header.
func (w *MessageWriter) WriteBinaryHeader(n int) error {
	if n < 0 {
		return &Error{Kind: NegativeLength, Length: int64(n)}
	}
	switch {
	case n <= 255:
		return w.sink.WriteByteAndByte(tagBin8, uint8(n))
	case n <= 65535:
		return w.sink.WriteByteAndShort(tagBin16, uint16(n))
	default:
		return w.sink.WriteByteAndInt(tagBin32, uint32(n))
	}
}

// WriteExtensionHeader writes an ext/fixext header (tag, length if not fix,
// then the extension type byte). n ∈ {1,2,4,8,16} uses fixext.
func (w *MessageWriter) WriteExtensionHeader(n int, extType int8) error {
	if n < 0 {
		return &Error{Kind: NegativeLength, Length: int64(n)}
	}
	if tag, ok := fixExtTagForLength(n); ok {
		return w.sink.WriteByteAndByte(tag, uint8(extType))
	}
	switch {
	case n <= 255:
		if err := w.sink.WriteByteAndByte(tagExt8, uint8(n)); err != nil {
			return err
		}
	case n <= 65535:
		if err := w.sink.WriteByteAndShort(tagExt16, uint16(n)); err != nil {
			return err
		}
	default:
		if err := w.sink.WriteByteAndInt(tagExt32, uint32(n)); err != nil {
			return err
		}
	}
	return w.sink.WriteI8(extType)
}

func (w *MessageWriter) writeHeaderTagAndLen(tag byte, lenBytes int, n int) error {
	switch lenBytes {
	case 0:
		return w.sink.WriteByte(tag)
	case 1:
		return w.sink.WriteByteAndByte(tag, uint8(n))
	case 2:
		return w.sink.WriteByteAndShort(tag, uint16(n))
	default:
		return w.sink.WriteByteAndInt(tag, uint32(n))
	}
}

func writeExtensionHeaderAndPayload(sink *MessageSink, extType int8, payload []byte) error {
	w := &MessageWriter{sink: sink}
	if err := w.WriteExtensionHeader(len(payload), extType); err != nil {
		return err
	}
	return sink.Write(payload)
}

// WritePayload writes raw bytes following a header previously written by
// WriteBinaryHeader/WriteStringHeader/WriteExtensionHeader.
func (w *MessageWriter) WritePayload(data []byte) error {
	return w.sink.Write(data)
}

// WriteString encodes s via the configured StringEncoder.
func (w *MessageWriter) WriteString(s string) error {
	return w.stringEncoder.Encode(w.sink, s)
}

// WriteIdentifier encodes s via the configured IdentifierEncoder.
func (w *MessageWriter) WriteIdentifier(s string) error {
	return w.identifierEncoder.Encode(w.sink, s)
}

// Flush drains any staged bytes to the underlying provider.
func (w *MessageWriter) Flush() error {
	return w.sink.Flush()
}

// Close cascades to the sink (and hence the provider), releasing the
// working buffer. Idempotent.
func (w *MessageWriter) Close() error {
	return w.sink.Close()
}
