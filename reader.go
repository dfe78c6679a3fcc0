// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

// MessageReader is the exclusive owner of a MessageSource for its lifetime
// (spec §3): it implements the tag-dispatched decode rules of §4 on top of
// the source's buffered byte reads.
type MessageReader struct {
	source            *MessageSource
	stringDecoder     StringDecoder
	identifierDecoder IdentifierDecoder
}

// NewReader leases a source buffer from opts.Allocator and wraps provider.
func NewReader(provider SourceProvider, opts ReaderOptions) (*MessageReader, error) {
	opts = opts.withDefaults()
	source, err := NewMessageSource(provider, opts.Allocator, opts.ReadBufferCapacity)
	if err != nil {
		return nil, err
	}
	return &MessageReader{
		source:            source,
		stringDecoder:     opts.StringDecoder,
		identifierDecoder: opts.IdentifierDecoder,
	}, nil
}

// NextType peeks at the next tag byte without consuming it and returns the
// ValueKind it denotes.
func (r *MessageReader) NextType() (ValueKind, error) {
	tag, err := r.source.NextByte()
	if err != nil {
		return KindInvalid, err
	}
	return TagToValueKind(tag), nil
}

// ReadNil consumes a nil tag.
func (r *MessageReader) ReadNil() error {
	tag, err := r.source.ReadByte()
	if err != nil {
		return err
	}
	if tag != tagNil {
		return &Error{Kind: TypeMismatch, Tag: tag, Requested: "Nil"}
	}
	return nil
}

// ReadBool consumes a false/true tag.
func (r *MessageReader) ReadBool() (bool, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return false, err
	}
	switch tag {
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil
	default:
		return false, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Bool"}
	}
}

// ReadI64 decodes any integer-family tag (fixint, int8..int64, uint8..uint32)
// as a signed int64, rejecting uint64 values that do not fit (spec §4.7's
// "no widening/narrowing beyond what the destination holds" rule).
func (r *MessageReader) ReadI64() (int64, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case tag <= tagPosFixIntMax:
		return int64(tag), nil
	case tag >= tagNegFixIntMin:
		return int64(int8(tag)), nil
	}
	switch tag {
	case tagInt8:
		v, err := r.source.ReadI8()
		return int64(v), err
	case tagInt16:
		v, err := r.source.ReadI16()
		return int64(v), err
	case tagInt32:
		v, err := r.source.ReadI32()
		return int64(v), err
	case tagInt64:
		return r.source.ReadI64()
	case tagUint8:
		v, err := r.source.ReadU8()
		return int64(v), err
	case tagUint16:
		v, err := r.source.ReadU16()
		return int64(v), err
	case tagUint32:
		v, err := r.source.ReadU32()
		return int64(v), err
	case tagUint64:
		v, err := r.source.ReadU64()
		if err != nil {
			return 0, err
		}
		if v > 1<<63-1 {
			return 0, &Error{Kind: IntegerOverflow, Value: int64(v), Requested: "int64"}
		}
		return int64(v), nil
	default:
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Int"}
	}
}

// ReadI8/ReadI16/ReadI32 narrow ReadI64's result, rejecting values that
// overflow the destination width as IntegerOverflow.
func (r *MessageReader) ReadI8() (int8, error) {
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if v < -128 || v > 127 {
		return 0, &Error{Kind: IntegerOverflow, Value: v, Requested: "int8"}
	}
	return int8(v), nil
}

func (r *MessageReader) ReadI16() (int16, error) {
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if v < -1<<15 || v > 1<<15-1 {
		return 0, &Error{Kind: IntegerOverflow, Value: v, Requested: "int16"}
	}
	return int16(v), nil
}

func (r *MessageReader) ReadI32() (int32, error) {
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if v < -1<<31 || v > 1<<31-1 {
		return 0, &Error{Kind: IntegerOverflow, Value: v, Requested: "int32"}
	}
	return int32(v), nil
}

// ReadU64 decodes any integer-family tag as an unsigned uint64, rejecting a
// negative signed value.
func (r *MessageReader) ReadU64() (uint64, error) {
	tag, err := r.source.NextByte()
	if err != nil {
		return 0, err
	}
	if tag == tagUint64 {
		_, _ = r.source.ReadByte()
		return r.source.ReadU64()
	}
	v, err := r.ReadI64()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &Error{Kind: IntegerOverflow, Value: v, Requested: "uint64"}
	}
	return uint64(v), nil
}

func (r *MessageReader) ReadU8() (uint8, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > 1<<8-1 {
		return 0, &Error{Kind: IntegerOverflow, Value: int64(v), Requested: "uint8"}
	}
	return uint8(v), nil
}

func (r *MessageReader) ReadU16() (uint16, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > 1<<16-1 {
		return 0, &Error{Kind: IntegerOverflow, Value: int64(v), Requested: "uint16"}
	}
	return uint16(v), nil
}

func (r *MessageReader) ReadU32() (uint32, error) {
	v, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, &Error{Kind: IntegerOverflow, Value: int64(v), Requested: "uint32"}
	}
	return uint32(v), nil
}

// ReadF32 decodes a float32 tag. No widening from float64 is performed, per
// spec §9's round-trip tests.
func (r *MessageReader) ReadF32() (float32, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	if tag != tagFloat32 {
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Float32"}
	}
	return r.source.ReadF32()
}

func (r *MessageReader) ReadF64() (float64, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	if tag != tagFloat64 {
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Float64"}
	}
	return r.source.ReadF64()
}

// ReadTimestamp decodes the -1 extension in its 4/8/12-byte variants (spec
// §4.7).
func (r *MessageReader) ReadTimestamp() (seconds int64, nanos uint32, err error) {
	n, extType, err := r.readExtHeader()
	if err != nil {
		return 0, 0, err
	}
	if extType != extTypeTimestamp {
		return 0, 0, &Error{Kind: TimestampTypeMismatch, Value: int64(extType)}
	}
	switch n {
	case 4:
		v, err := r.source.ReadU32()
		return int64(v), 0, err
	case 8:
		v, err := r.source.ReadU64()
		if err != nil {
			return 0, 0, err
		}
		return int64(v & (1<<34 - 1)), uint32(v >> 34), nil
	case 12:
		ns, err := r.source.ReadU32()
		if err != nil {
			return 0, 0, err
		}
		sec, err := r.source.ReadI64()
		return sec, ns, err
	default:
		return 0, 0, &Error{Kind: InvalidTimestampLength, Length: int64(n)}
	}
}

// ReadArrayHeader reads an array length header.
func (r *MessageReader) ReadArrayHeader() (int, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case IsFixArray(tag):
		return FixArrayLength(tag), nil
	case tag == tagArray16:
		return r.source.ReadLength16()
	case tag == tagArray32:
		return r.source.ReadLength32()
	default:
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Array"}
	}
}

// ReadMapHeader reads a map entry-count header.
func (r *MessageReader) ReadMapHeader() (int, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case IsFixMap(tag):
		return FixMapLength(tag), nil
	case tag == tagMap16:
		return r.source.ReadLength16()
	case tag == tagMap32:
		return r.source.ReadLength32()
	default:
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Map"}
	}
}

// ReadBinaryHeader reads a bin8/16/32 length header.
func (r *MessageReader) ReadBinaryHeader() (int, error) {
	tag, err := r.source.ReadByte()
	if err != nil {
		return 0, err
	}
	switch tag {
	case tagBin8:
		return r.source.ReadLength8()
	case tagBin16:
		return r.source.ReadLength16()
	case tagBin32:
		return r.source.ReadLength32()
	default:
		return 0, &Error{Kind: TypeMismatch, Tag: tag, Requested: "Bin"}
	}
}

// ReadStringHeader reads a str/fixstr length header.
func (r *MessageReader) ReadStringHeader() (int, error) {
	return readStringHeader(r.source)
}

// ReadExtensionHeader reads an ext/fixext length+type header, returning the
// payload length and the extension type byte.
func (r *MessageReader) ReadExtensionHeader() (length int, extType int8, err error) {
	return r.readExtHeader()
}

func (r *MessageReader) readExtHeader() (length int, extType int8, err error) {
	return readExtensionHeaderRaw(r.source)
}

// ReadPayload reads exactly len(dest) raw bytes following a header
// previously read by ReadBinaryHeader/ReadStringHeader/ReadExtensionHeader.
func (r *MessageReader) ReadPayload(dest []byte) error {
	return r.source.ReadPayload(dest)
}

// ReadString decodes a str/fixstr value via the configured StringDecoder.
func (r *MessageReader) ReadString() (string, error) {
	return r.stringDecoder.Decode(r.source)
}

// ReadIdentifier decodes an interned identifier via the configured
// IdentifierDecoder.
func (r *MessageReader) ReadIdentifier() (string, error) {
	return r.identifierDecoder.Decode(r.source)
}

// Skip advances past the next complete value, recursing into
// arrays/maps/extensions as needed.
func (r *MessageReader) Skip() error {
	kind, err := r.NextType()
	if err != nil {
		return err
	}
	switch kind {
	case KindNil:
		return r.ReadNil()
	case KindBool:
		_, err := r.ReadBool()
		return err
	case KindInt:
		_, err := r.ReadI64()
		return err
	case KindUInt:
		_, err := r.ReadU64()
		return err
	case KindFloat32:
		_, err := r.ReadF32()
		return err
	case KindFloat64:
		_, err := r.ReadF64()
		return err
	case KindStr:
		n, err := r.ReadStringHeader()
		if err != nil {
			return err
		}
		return r.source.Skip(int64(n))
	case KindBin:
		n, err := r.ReadBinaryHeader()
		if err != nil {
			return err
		}
		return r.source.Skip(int64(n))
	case KindExtension:
		n, _, err := r.readExtHeader()
		if err != nil {
			return err
		}
		return r.source.Skip(int64(n))
	case KindArray:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := r.Skip(); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		n, err := r.ReadMapHeader()
		if err != nil {
			return err
		}
		for i := 0; i < n*2; i++ {
			if err := r.Skip(); err != nil {
				return err
			}
		}
		return nil
	default:
		tag, _ := r.source.ReadByte()
		return &Error{Kind: InvalidFormat, Tag: tag}
	}
}

// Close cascades to the source (and hence the provider), releasing the
// working buffer. Idempotent.
func (r *MessageReader) Close() error {
	return r.source.Close()
}
