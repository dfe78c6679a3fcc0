// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"bytes"
	"io"
	"net"
)

// SourceProvider is the abstraction a MessageSource reads through (spec §6).
// Implementations wrap a channel, stream, in-memory buffer, or any other
// byte source.
type SourceProvider interface {
	// Read fills buf starting at len(buf) up to cap(buf), returning the new
	// slice and the number of bytes read. minHint is advisory: providers
	// that know their next chunk size may use it, but are not required to.
	// Returns io.EOF when no further bytes are available. A provider that
	// is genuinely non-blocking and made no progress while space remained
	// must return ErrWouldBlock rather than (n=0, err=nil).
	Read(buf []byte, minHint int) ([]byte, error)

	// Skip advances the provider's position past length bytes, using buf
	// as scratch space if the provider has no native seek.
	Skip(length int64, buf []byte) error

	// TransferTo copies length bytes to out, zero-copy where the
	// underlying transport allows it, falling back to a buffered copy
	// through buf otherwise. Returns the number of bytes transferred.
	TransferTo(out io.Writer, length int64, buf []byte) (int64, error)

	Close() error
}

// SinkProvider is the abstraction a MessageSink writes through (spec §6).
type SinkProvider interface {
	// Write fully drains buf to the underlying destination.
	Write(buf []byte) error
	// WriteVectored fully drains every buffer in bufs, in order, as a
	// single vectored write where the underlying transport supports it.
	WriteVectored(bufs [][]byte) error
	// TransferFrom copies up to maxBytes from in, zero-copy where
	// possible. Returns the number of bytes transferred.
	TransferFrom(in io.Reader, maxBytes int64) (int64, error)
	Flush() error
	Close() error
}

// streamSource adapts a blocking io.Reader to SourceProvider, the way
// framer.NewReader wraps a plain io.Reader.
type streamSource struct {
	r io.Reader
}

// NewStreamSource wraps an io.Reader as a SourceProvider.
func NewStreamSource(r io.Reader) SourceProvider {
	return &streamSource{r: r}
}

func (s *streamSource) Read(buf []byte, _ int) ([]byte, error) {
	n, err := s.r.Read(buf[len(buf):cap(buf)])
	if n == 0 && err == nil {
		return buf, &Error{Kind: NonBlockingChannelDetected}
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return buf[:len(buf)+n], err
}

func (s *streamSource) Skip(length int64, buf []byte) error {
	_, err := io.CopyBuffer(io.Discard, io.LimitReader(s.r, length), buf[:cap(buf)])
	return err
}

func (s *streamSource) TransferTo(out io.Writer, length int64, buf []byte) (int64, error) {
	return io.CopyBuffer(out, io.LimitReader(s.r, length), buf[:cap(buf)])
}

func (s *streamSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// streamSink adapts a blocking io.Writer to SinkProvider, the way
// framer.NewWriter wraps a plain io.Writer.
type streamSink struct {
	w io.Writer
}

// NewStreamSink wraps an io.Writer as a SinkProvider.
func NewStreamSink(w io.Writer) SinkProvider {
	return &streamSink{w: w}
}

func (s *streamSink) Write(buf []byte) error {
	_, err := s.w.Write(buf)
	return err
}

func (s *streamSink) WriteVectored(bufs [][]byte) error {
	for _, b := range bufs {
		if err := s.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func (s *streamSink) TransferFrom(in io.Reader, maxBytes int64) (int64, error) {
	return io.Copy(s.w, io.LimitReader(in, maxBytes))
}

func (s *streamSink) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (s *streamSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// bufferSource adapts an in-memory *bytes.Buffer to SourceProvider (spec §6
// "in-memory buffer" adapter).
type bufferSource struct {
	b *bytes.Buffer
}

// NewBufferSource wraps a *bytes.Buffer as a SourceProvider.
func NewBufferSource(b *bytes.Buffer) SourceProvider {
	return &bufferSource{b: b}
}

func (s *bufferSource) Read(buf []byte, _ int) ([]byte, error) {
	n, err := s.b.Read(buf[len(buf):cap(buf)])
	return buf[:len(buf)+n], err
}

func (s *bufferSource) Skip(length int64, _ []byte) error {
	_, err := io.CopyN(io.Discard, s.b, length)
	return err
}

func (s *bufferSource) TransferTo(out io.Writer, length int64, _ []byte) (int64, error) {
	return io.CopyN(out, s.b, length)
}

func (s *bufferSource) Close() error { return nil }

// bufferSink adapts an in-memory *bytes.Buffer to SinkProvider.
type bufferSink struct {
	b *bytes.Buffer
}

// NewBufferSink wraps a *bytes.Buffer as a SinkProvider.
func NewBufferSink(b *bytes.Buffer) SinkProvider {
	return &bufferSink{b: b}
}

func (s *bufferSink) Write(buf []byte) error {
	_, err := s.b.Write(buf)
	return err
}

func (s *bufferSink) WriteVectored(bufs [][]byte) error {
	for _, b := range bufs {
		if _, err := s.b.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func (s *bufferSink) TransferFrom(in io.Reader, maxBytes int64) (int64, error) {
	return io.CopyN(s.b, in, maxBytes)
}

func (s *bufferSink) Flush() error { return nil }
func (s *bufferSink) Close() error { return nil }

// connSource adapts a net.Conn to SourceProvider, exercising
// io.ReaderFrom/io.WriterTo zero-copy transfer when the concrete
// connection type supports it (e.g. *net.TCPConn).
type connSource struct {
	conn net.Conn
}

// NewConnSource wraps a net.Conn as a SourceProvider.
func NewConnSource(conn net.Conn) SourceProvider {
	return &connSource{conn: conn}
}

func (s *connSource) Read(buf []byte, _ int) ([]byte, error) {
	n, err := s.conn.Read(buf[len(buf):cap(buf)])
	if n == 0 && err == nil {
		return buf, &Error{Kind: NonBlockingChannelDetected}
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return buf[:len(buf)+n], err
}

func (s *connSource) Skip(length int64, buf []byte) error {
	_, err := io.CopyBuffer(io.Discard, io.LimitReader(s.conn, length), buf[:cap(buf)])
	return err
}

// TransferTo prefers out's io.ReaderFrom (if out implements it, e.g.
// *net.TCPConn) by delegating to io.Copy, which detects that fast path
// itself; otherwise falls back to a buffered copy through buf. Go has no
// portable FileChannel.transferTo equivalent, so this is the idiomatic
// zero-copy-where-possible substitute (see DESIGN.md).
func (s *connSource) TransferTo(out io.Writer, length int64, buf []byte) (int64, error) {
	if length < 0 {
		return io.Copy(out, s.conn)
	}
	return io.CopyBuffer(out, io.LimitReader(s.conn, length), buf[:cap(buf)])
}

func (s *connSource) Close() error {
	return s.conn.Close()
}

// connSink adapts a net.Conn to SinkProvider. WriteVectored uses
// net.Buffers so a writev-capable net.Conn (e.g. *net.TCPConn) can flush a
// header plus payload as a single syscall.
type connSink struct {
	conn net.Conn
}

// NewConnSink wraps a net.Conn as a SinkProvider.
func NewConnSink(conn net.Conn) SinkProvider {
	return &connSink{conn: conn}
}

func (s *connSink) Write(buf []byte) error {
	_, err := s.conn.Write(buf)
	return err
}

func (s *connSink) WriteVectored(bufs [][]byte) error {
	nb := make(Buffers, len(bufs))
	copy(nb, bufs)
	_, err := nb.WriteTo(s.conn)
	return err
}

func (s *connSink) TransferFrom(in io.Reader, maxBytes int64) (int64, error) {
	return io.Copy(s.conn, io.LimitReader(in, maxBytes))
}

func (s *connSink) Flush() error { return nil }
func (s *connSink) Close() error { return s.conn.Close() }

// discardSink is a SinkProvider that reports success without retaining
// bytes, mirroring msgp.Nowhere — useful for benchmarking write paths
// without I/O.
type discardSink struct{}

// NewDiscardSink returns a SinkProvider that discards everything written to
// it.
func NewDiscardSink() SinkProvider {
	return discardSink{}
}

func (discardSink) Write(_ []byte) error             { return nil }
func (discardSink) WriteVectored(_ [][]byte) error   { return nil }
func (discardSink) TransferFrom(in io.Reader, maxBytes int64) (int64, error) {
	return io.CopyN(io.Discard, in, maxBytes)
}
func (discardSink) Flush() error { return nil }
func (discardSink) Close() error { return nil }
