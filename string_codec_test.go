// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStringCodec_Empty(t *testing.T) {
	sink, out := newTestSink(t, 16)
	enc := CharsetStringEncoder{}
	if err := enc.Encode(sink, ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_ = sink.Flush()
	if !bytes.Equal(out.Bytes(), []byte{tagFixStrMin}) {
		t.Errorf("got %x, want fixstr(0)", out.Bytes())
	}
}

func TestStringCodec_RoundTripFixStr(t *testing.T) {
	sink, out := newTestSink(t, 64)
	enc := CharsetStringEncoder{}
	if err := enc.Encode(sink, "Hello, MiniPack!"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_ = sink.Flush()

	src := newTestSource(t, out.Bytes(), 64)
	dec := CharsetStringDecoder{}
	got, err := dec.Decode(src)
	if err != nil || got != "Hello, MiniPack!" {
		t.Fatalf("Decode() = (%q, %v)", got, err)
	}
}

func TestStringCodec_OverflowsSinkBuffer(t *testing.T) {
	// Sink buffer too small to hold the whole payload: forces the
	// overflow-auxiliary-buffer path.
	sink, out := newTestSink(t, 8)
	enc := CharsetStringEncoder{Allocator: NewUnpooledAllocator(0)}
	s := strings.Repeat("x", 100)
	if err := enc.Encode(sink, s); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_ = sink.Flush()

	src := newTestSource(t, out.Bytes(), 128)
	dec := CharsetStringDecoder{}
	got, err := dec.Decode(src)
	if err != nil || got != s {
		t.Fatalf("Decode() = (%q, %v), want %q", got, err, s)
	}
}

func TestStringCodec_MalformedUTF8Replaced(t *testing.T) {
	malformed := string([]byte{0x48, 0x69, 0xff, 0x21})
	got := decodeUTF8WithReplacement([]byte(malformed))
	want := "Hi" + replacementChar + "!"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringCodec_TooLarge(t *testing.T) {
	sink, out := newTestSink(t, 64)
	enc := CharsetStringEncoder{}
	_ = enc.Encode(sink, "hello")
	_ = sink.Flush()

	src := newTestSource(t, out.Bytes(), 64)
	dec := CharsetStringDecoder{MaxStringSize: 2}
	_, err := dec.Decode(src)
	var e *Error
	if !errors.As(err, &e) || e.Kind != StringTooLarge {
		t.Errorf("got %v, want StringTooLarge", err)
	}
}

func TestStringCodec_HeaderWidthSelection(t *testing.T) {
	cases := []struct {
		n            int
		wantLenBytes int
	}{
		{0, 0}, {31, 0}, {32, 1}, {255, 1}, {256, 2}, {65535, 2}, {65536, 4},
	}
	for _, c := range cases {
		_, lenBytes := stringTagAndLenBytes(c.n)
		if lenBytes != c.wantLenBytes {
			t.Errorf("stringTagAndLenBytes(%d) lenBytes = %d, want %d", c.n, lenBytes, c.wantLenBytes)
		}
	}
}
