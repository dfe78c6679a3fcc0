// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"bytes"
	"testing"
)

func newTestSink(t *testing.T, bufCap int) (*MessageSink, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	provider := NewBufferSink(&out)
	sink, err := NewMessageSink(provider, NewUnpooledAllocator(0), bufCap)
	if err != nil {
		t.Fatalf("NewMessageSink: %v", err)
	}
	return sink, &out
}

func TestMessageSink_WriteByte(t *testing.T) {
	sink, out := newTestSink(t, 16)
	for _, b := range []byte{0x01, 0x02, 0x03} {
		if err := sink.WriteByte(b); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{0x01, 0x02, 0x03}) {
		t.Errorf("got %v, want [1 2 3]", out.Bytes())
	}
}

func TestMessageSink_WriteU32BigEndian(t *testing.T) {
	sink, out := newTestSink(t, 16)
	if err := sink.WriteU32(0x01020304); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	_ = sink.Flush()
	if !bytes.Equal(out.Bytes(), []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("got %v", out.Bytes())
	}
}

func TestMessageSink_WriteByteAndLong(t *testing.T) {
	sink, out := newTestSink(t, 16)
	if err := sink.WriteByteAndLong(0xcf, 0x0102030405060708); err != nil {
		t.Fatalf("WriteByteAndLong: %v", err)
	}
	_ = sink.Flush()
	want := []byte{0xcf, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("got %v, want %v", out.Bytes(), want)
	}
}

func TestMessageSink_FlushesOnOverflow(t *testing.T) {
	sink, out := newTestSink(t, 4)
	// Buffer capacity 4; writing 4 bytes then 1 more forces a flush.
	for range 4 {
		_ = sink.WriteByte(0xaa)
	}
	if err := sink.WriteByte(0xbb); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	_ = sink.Flush()
	want := bytes.Repeat([]byte{0xaa}, 4)
	want = append(want, 0xbb)
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("got %v, want %v", out.Bytes(), want)
	}
}

func TestMessageSink_WriteLargePayloadBypassesBuffer(t *testing.T) {
	sink, out := newTestSink(t, 4)
	payload := bytes.Repeat([]byte{0x42}, 1000)
	if err := sink.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = sink.Flush()
	if !bytes.Equal(out.Bytes(), payload) {
		t.Error("large payload not written correctly")
	}
}

func TestMessageSink_CloseFlushesAndIdempotent(t *testing.T) {
	sink, out := newTestSink(t, 16)
	_ = sink.WriteByte(0x01)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{0x01}) {
		t.Errorf("got %v", out.Bytes())
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
