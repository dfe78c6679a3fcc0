// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

// defaultBufferCapacity is the working-buffer size a Reader/Writer leases
// from its Allocator when the caller leaves Options zero-valued.
const defaultBufferCapacity = 4096

// ReaderOptions configures NewReader. The zero value is valid; missing
// fields are filled in by withDefaults.
type ReaderOptions struct {
	// Allocator leases the source's working buffer. Defaults to an
	// unpooled allocator with no per-request ceiling.
	Allocator Allocator
	// ReadBufferCapacity sizes the working buffer. Defaults to 4096.
	ReadBufferCapacity int
	// StringDecoder decodes ReadString calls. Defaults to
	// CharsetStringDecoder{}.
	StringDecoder StringDecoder
	// IdentifierDecoder decodes ReadIdentifier calls. Defaults to
	// NewIdentifierDecoder(0) (unbounded cache).
	IdentifierDecoder IdentifierDecoder
}

func (o ReaderOptions) withDefaults() ReaderOptions {
	if o.Allocator == nil {
		o.Allocator = NewUnpooledAllocator(0)
	}
	if o.ReadBufferCapacity <= 0 {
		o.ReadBufferCapacity = defaultBufferCapacity
	}
	if o.StringDecoder == nil {
		o.StringDecoder = CharsetStringDecoder{}
	}
	if o.IdentifierDecoder == nil {
		o.IdentifierDecoder = NewIdentifierDecoder(0)
	}
	return o
}

// WriterOptions configures NewWriter. The zero value is valid; missing
// fields are filled in by withDefaults.
type WriterOptions struct {
	// Allocator leases the sink's working buffer, and the string codec's
	// overflow buffers when StringEncoder is left at its default.
	// Defaults to an unpooled allocator with no per-request ceiling.
	Allocator Allocator
	// WriteBufferCapacity sizes the working buffer. Defaults to 4096.
	WriteBufferCapacity int
	// StringEncoder encodes WriteString calls. Defaults to
	// CharsetStringEncoder using the same Allocator.
	StringEncoder StringEncoder
	// IdentifierEncoder encodes WriteIdentifier calls. Defaults to
	// NewIdentifierEncoder(0) (unbounded cache).
	IdentifierEncoder IdentifierEncoder
}

func (o WriterOptions) withDefaults() WriterOptions {
	if o.Allocator == nil {
		o.Allocator = NewUnpooledAllocator(0)
	}
	if o.WriteBufferCapacity <= 0 {
		o.WriteBufferCapacity = defaultBufferCapacity
	}
	if o.StringEncoder == nil {
		o.StringEncoder = CharsetStringEncoder{Allocator: o.Allocator}
	}
	if o.IdentifierEncoder == nil {
		o.IdentifierEncoder = NewIdentifierEncoder(0)
	}
	return o
}
