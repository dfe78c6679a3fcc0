// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"bytes"
	"fmt"
	"time"
)

// NewPipe returns a connected in-memory MessageWriter/MessageReader pair
// backed by a shared *bytes.Buffer, the way framer tests wire a writer
// straight to a reader without a real transport. The writer must be
// flushed before the reader can see what it wrote.
func NewPipe(wopts WriterOptions, ropts ReaderOptions) (*MessageWriter, *MessageReader, error) {
	var buf bytes.Buffer
	w, err := NewWriter(NewBufferSink(&buf), wopts)
	if err != nil {
		return nil, nil, err
	}
	r, err := NewReader(NewBufferSource(&buf), ropts)
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	return w, r, nil
}

// WriteValue encodes v, a MessagePack value tree built from nil, bool,
// the integer kinds, float32/float64, string, []byte, time.Time,
// []any, and map[string]any, exercising every encode path in a single
// call (spec §9's generic Encode/Decode convenience surface).
func (w *MessageWriter) WriteValue(v any) error {
	switch x := v.(type) {
	case nil:
		return w.WriteNil()
	case bool:
		return w.WriteBool(x)
	case int:
		return w.WriteInt(int64(x))
	case int8:
		return w.WriteInt(int64(x))
	case int16:
		return w.WriteInt(int64(x))
	case int32:
		return w.WriteInt(int64(x))
	case int64:
		return w.WriteInt(x)
	case uint:
		return w.WriteUint(uint64(x))
	case uint8:
		return w.WriteUint(uint64(x))
	case uint16:
		return w.WriteUint(uint64(x))
	case uint32:
		return w.WriteUint(uint64(x))
	case uint64:
		return w.WriteUint(x)
	case float32:
		return w.WriteF32(x)
	case float64:
		return w.WriteF64(x)
	case string:
		return w.WriteString(x)
	case []byte:
		if err := w.WriteBinaryHeader(len(x)); err != nil {
			return err
		}
		return w.WritePayload(x)
	case time.Time:
		return w.WriteTimestamp(x.Unix(), uint32(x.Nanosecond()))
	case []any:
		if err := w.WriteArrayHeader(len(x)); err != nil {
			return err
		}
		for _, elem := range x {
			if err := w.WriteValue(elem); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if err := w.WriteMapHeader(len(x)); err != nil {
			return err
		}
		for k, elem := range x {
			if err := w.WriteString(k); err != nil {
				return err
			}
			if err := w.WriteValue(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("minipack: WriteValue: unsupported type %T", v)
	}
}

// ReadValue decodes one MessagePack value into the `any` tree WriteValue
// produces (binary decodes to []byte, the timestamp extension decodes to
// time.Time, arrays to []any, maps to map[string]any).
func (r *MessageReader) ReadValue() (any, error) {
	kind, err := r.NextType()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindNil:
		return nil, r.ReadNil()
	case KindBool:
		return r.ReadBool()
	case KindInt:
		return r.ReadI64()
	case KindUInt:
		return r.ReadU64()
	case KindFloat32:
		return r.ReadF32()
	case KindFloat64:
		return r.ReadF64()
	case KindStr:
		return r.ReadString()
	case KindBin:
		n, err := r.ReadBinaryHeader()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if err := r.ReadPayload(buf); err != nil {
			return nil, err
		}
		return buf, nil
	case KindExtension:
		return r.readExtensionValue()
	case KindArray:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		arr := make([]any, n)
		for i := range arr {
			arr[i], err = r.ReadValue()
			if err != nil {
				return nil, err
			}
		}
		return arr, nil
	case KindMap:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, n)
		for i := 0; i < n; i++ {
			key, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			m[key], err = r.ReadValue()
			if err != nil {
				return nil, err
			}
		}
		return m, nil
	default:
		tag, _ := r.source.ReadByte()
		return nil, &Error{Kind: InvalidFormat, Tag: tag}
	}
}

// readExtensionValue dispatches a KindExtension value: the timestamp type
// decodes to time.Time; any other extension type decodes to its raw
// payload bytes, since the type byte itself has no place in the `any`
// tree - callers needing it should use ReadExtensionHeader/ReadPayload
// directly instead of ReadValue.
func (r *MessageReader) readExtensionValue() (any, error) {
	n, extType, err := r.readExtHeader()
	if err != nil {
		return nil, err
	}
	if extType != extTypeTimestamp {
		buf := make([]byte, n)
		if err := r.ReadPayload(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	switch n {
	case 4:
		v, err := r.source.ReadU32()
		if err != nil {
			return nil, err
		}
		return time.Unix(int64(v), 0).UTC(), nil
	case 8:
		v, err := r.source.ReadU64()
		if err != nil {
			return nil, err
		}
		return time.Unix(int64(v&(1<<34-1)), int64(v>>34)).UTC(), nil
	case 12:
		nsec, err := r.source.ReadU32()
		if err != nil {
			return nil, err
		}
		sec, err := r.source.ReadI64()
		if err != nil {
			return nil, err
		}
		return time.Unix(sec, int64(nsec)).UTC(), nil
	default:
		return nil, &Error{Kind: InvalidTimestampLength, Length: int64(n)}
	}
}
