// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"bytes"
	"errors"
	"testing"
)

func newTestSource(t *testing.T, data []byte, bufCap int) *MessageSource {
	t.Helper()
	provider := NewBufferSource(bytes.NewBuffer(data))
	src, err := NewMessageSource(provider, NewUnpooledAllocator(0), bufCap)
	if err != nil {
		t.Fatalf("NewMessageSource: %v", err)
	}
	return src
}

func TestMessageSource_ReadByte(t *testing.T) {
	src := newTestSource(t, []byte{0x01, 0x02, 0x03}, 16)
	for _, want := range []byte{0x01, 0x02, 0x03} {
		b, err := src.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if b != want {
			t.Errorf("got 0x%02x, want 0x%02x", b, want)
		}
	}
	if _, err := src.ReadByte(); err == nil {
		t.Error("expected PrematureEndOfInput at EOF")
	}
}

func TestMessageSource_NextByte(t *testing.T) {
	src := newTestSource(t, []byte{0xaa, 0xbb}, 16)
	b, err := src.NextByte()
	if err != nil || b != 0xaa {
		t.Fatalf("NextByte() = (0x%02x, %v)", b, err)
	}
	// Peek must not consume.
	b2, err := src.ReadByte()
	if err != nil || b2 != 0xaa {
		t.Fatalf("ReadByte() after peek = (0x%02x, %v)", b2, err)
	}
}

func TestMessageSource_ReadU16BigEndian(t *testing.T) {
	src := newTestSource(t, []byte{0x01, 0x02}, 16)
	v, err := src.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("ReadU16() = 0x%04x, want 0x0102", v)
	}
}

func TestMessageSource_ReadU32U64(t *testing.T) {
	src := newTestSource(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c}, 16)
	v32, err := src.ReadU32()
	if err != nil || v32 != 0x01020304 {
		t.Fatalf("ReadU32() = (0x%08x, %v)", v32, err)
	}
	v64, err := src.ReadU64()
	if err != nil || v64 != 0x05060708090a0b0c {
		t.Fatalf("ReadU64() = (0x%016x, %v)", v64, err)
	}
}

func TestMessageSource_EnsureRemainingCompacts(t *testing.T) {
	// Small buffer forces a compact+refill cycle inside EnsureRemaining,
	// then ReadPayload drains the small remainder and reads the rest
	// directly from the provider.
	data := bytes.Repeat([]byte{0x01}, 100)
	src := newTestSource(t, data, 8)
	if _, err := src.ReadU32(); err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	dest := make([]byte, 96)
	if err := src.ReadPayload(dest); err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	for i, b := range dest {
		if b != 0x01 {
			t.Fatalf("dest[%d] = 0x%02x, want 0x01", i, b)
		}
	}
}

func TestMessageSource_PrematureEndOfInput(t *testing.T) {
	src := newTestSource(t, []byte{0x01}, 16)
	_, err := src.ReadU32()
	var e *Error
	if !errors.As(err, &e) || e.Kind != PrematureEndOfInput {
		t.Errorf("got %v, want PrematureEndOfInput", err)
	}
}

func TestMessageSource_ReadLength32TooLarge(t *testing.T) {
	src := newTestSource(t, []byte{0xff, 0xff, 0xff, 0xff}, 16)
	_, err := src.ReadLength32()
	var e *Error
	if !errors.As(err, &e) || e.Kind != LengthTooLarge {
		t.Errorf("got %v, want LengthTooLarge", err)
	}
}

func TestMessageSource_Skip(t *testing.T) {
	src := newTestSource(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, 16)
	if err := src.Skip(3); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	b, err := src.ReadByte()
	if err != nil || b != 0x04 {
		t.Fatalf("ReadByte() after Skip = (0x%02x, %v)", b, err)
	}
}

func TestMessageSource_TransferTo(t *testing.T) {
	src := newTestSource(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, 16)
	var out bytes.Buffer
	n, err := src.TransferTo(&out, 5)
	if err != nil {
		t.Fatalf("TransferTo: %v", err)
	}
	if n != 5 || !bytes.Equal(out.Bytes(), []byte{0x01, 0x02, 0x03, 0x04, 0x05}) {
		t.Errorf("TransferTo copied %v (n=%d)", out.Bytes(), n)
	}
}

func TestMessageSource_CloseIdempotent(t *testing.T) {
	src := newTestSource(t, []byte{0x01}, 16)
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
