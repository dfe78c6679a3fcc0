// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package minipack implements a MessagePack-compatible binary serialization
// codec over pooled, lock-free buffers, tuned for zero-allocation hot paths
// on streams, in-memory buffers, and net.Conn.
//
// # Reader and Writer
//
// MessageReader and MessageWriter are the primary entry points. Each owns a
// working buffer leased from an Allocator for its lifetime and exposes
// tag-dispatched methods for every MessagePack value family:
//
//	w, _ := minipack.NewWriter(minipack.NewBufferSink(&out), minipack.WriterOptions{})
//	_ = w.WriteMapHeader(2)
//	_ = w.WriteString("id")
//	_ = w.WriteInt(7)
//	_ = w.WriteString("active")
//	_ = w.WriteBool(true)
//	_ = w.Flush()
//
//	r, _ := minipack.NewReader(minipack.NewBufferSource(&out), minipack.ReaderOptions{})
//	n, _ := r.ReadMapHeader()
//
// WriteInt/WriteUint pick the minimum-width tag that holds the value
// (positive/negative fixint first, then int8/16/32/64 or uint8/16/32/64);
// ReadI64/ReadU64 accept any integer-family tag and reject values that do
// not fit the requested width as an IntegerOverflow error.
//
// # Providers
//
// SourceProvider and SinkProvider adapt an io.Reader/io.Writer,
// a *bytes.Buffer, or a net.Conn to the byte-oriented interface
// MessageSource/MessageSink read from and write to. NewStreamSource,
// NewBufferSink, and NewConnSink construct the built-in adapters; a
// net.Conn sink's WriteVectored sends its buffers through net.Buffers as a
// single vectored write, which the string encoder uses to flush staged
// bytes together with an overflow buffer.
//
// # Allocator
//
// Allocator leases and releases working buffers. NewUnpooledAllocator
// allocates directly from the runtime; NewPooledAllocator buckets leased
// buffers by capacity into 32 lock-free pools (lockFreePool, a Treiber
// stack) so repeated Reader/Writer construction in a hot loop reuses
// memory instead of re-allocating it. Both variants enforce an optional
// per-request capacity ceiling, returning SizeLimitExceeded for a request
// above it. The pooled variant also caps the total capacity it pools;
// once that cap is reached it serves exact-size unpooled buffers.
//
// # Strings and identifiers
//
// StringEncoder/StringDecoder (CharsetStringEncoder/CharsetStringDecoder by
// default) transcode Go strings to/from UTF-8 str payloads, replacing
// malformed sequences with U+FFFD rather than failing the whole value.
// IdentifierEncoder/IdentifierDecoder intern short, repeated strings
// (typically map keys) behind a private extension type: a string's first
// occurrence is written with its id and bytes, later occurrences as a bare
// 4-byte id reference, which WriteIdentifier/ReadIdentifier wrap.
//
// # Top-level convenience
//
// NewPipe wires a writer and reader over a shared in-memory buffer for
// tests and request/response framing. WriteValue/ReadValue walk a generic
// Go value tree (nil, bool, integers, floats, string, []byte, time.Time,
// []any, map[string]any) end to end without per-field boilerplate.
//
// # Errors
//
// Codec failures are *Error values carrying a closed ErrorKind and enough
// context (the offending tag, a requested type name, a length, or a wrapped
// I/O error) to diagnose it. WriteValue's unsupported-type error and errors
// returned by a provider's Skip, TransferTo, or Close are passed back as
// plain errors. Callers use errors.As to inspect a specific kind
// and errors.Is to check against ErrWouldBlock/ErrMore, the two control-flow
// sentinels re-exported from iox for non-blocking providers.
package minipack
