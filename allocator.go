// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"sync/atomic"
)

// Allocator is a bucketed, size-capped buffer pool (spec §4.3). Acquire
// returns a leased handle; releasing it returns capacity to the pool (or
// is a no-op for the unpooled variant and for buffers above the
// never-pooled ceiling).
type Allocator interface {
	// Acquire returns a buffer with capacity at least size.
	// Returns *Error{Kind: SizeLimitExceeded} if size exceeds the
	// allocator's per-request ceiling, or *Error{Kind: AlreadyClosed} if
	// the allocator has been closed.
	Acquire(size int) (*LeasedBuffer, error)

	// Close marks the allocator closed. Further Acquire calls fail;
	// in-flight LeasedBuffer.Release calls after Close are silently
	// dropped rather than erroring.
	Close() error
}

// LeasedBuffer is a byte buffer on loan from an Allocator. Release returns
// it to the allocator's pool (if pooled and within the pooling ceiling);
// double-release is a no-op, and using Bytes after Release is a caller
// error the allocator does not itself detect (per spec §3's leased-buffer
// ownership model).
type LeasedBuffer struct {
	buf  []byte
	rel  func([]byte)
	done atomic.Bool
}

// Bytes returns the buffer's backing storage, length 0, capacity as
// requested from Acquire (rounded up to the bucket size for pooled
// allocations).
func (lb *LeasedBuffer) Bytes() []byte {
	return lb.buf
}

// Release returns the buffer to its allocator. Safe to call more than
// once; only the first call has an effect.
func (lb *LeasedBuffer) Release() {
	if !lb.done.CompareAndSwap(false, true) {
		return
	}
	if lb.rel != nil {
		lb.rel(lb.buf)
	}
}

// AllocatorOptions configures a pooled Allocator (spec §6). The zero value
// is not valid; use DefaultAllocatorOptions and override fields, matching
// the flat-record-over-builder design decision in spec §9.
type AllocatorOptions struct {
	// MaxByteBufferCapacity is the hard per-request ceiling for a single
	// Acquire call; exceeding it is SizeLimitExceeded.
	MaxByteBufferCapacity int
	// MaxByteBufferPoolCapacity bounds the total bytes held across all
	// pooled buckets, tracked via an atomic counter.
	MaxByteBufferPoolCapacity int64
	// MaxPooledByteBufferCapacity: requests larger than this are served
	// but never pooled (served as exact-size unpooled buffers).
	MaxPooledByteBufferCapacity int
	// PreferDirectBuffers backs freshly allocated pooled buffers with
	// page-aligned memory via AlignedMem, for providers that benefit from
	// page-aligned I/O (direct/unbuffered channels, io_uring).
	PreferDirectBuffers bool
}

// DefaultAllocatorOptions returns sensible ceilings: 64 MiB per request,
// 256 MiB total pooled, buffers over 1 MiB are never pooled.
func DefaultAllocatorOptions() AllocatorOptions {
	return AllocatorOptions{
		MaxByteBufferCapacity:       64 << 20,
		MaxByteBufferPoolCapacity:   256 << 20,
		MaxPooledByteBufferCapacity: 1 << 20,
		PreferDirectBuffers:         false,
	}
}

// NewUnpooledAllocator returns an Allocator whose Acquire always allocates a
// fresh exact-size buffer and whose Release is a no-op.
func NewUnpooledAllocator(maxCapacity int) Allocator {
	return &unpooledAllocator{maxCapacity: maxCapacity}
}

type unpooledAllocator struct {
	maxCapacity int
	closed      atomic.Bool
}

func (a *unpooledAllocator) Acquire(size int) (*LeasedBuffer, error) {
	if a.closed.Load() {
		return nil, &Error{Kind: AlreadyClosed, Resource: "allocator"}
	}
	if a.maxCapacity > 0 && size > a.maxCapacity {
		return nil, &Error{Kind: SizeLimitExceeded, Length: int64(size), Max: int64(a.maxCapacity)}
	}
	return &LeasedBuffer{buf: make([]byte, 0, size)}, nil
}

func (a *unpooledAllocator) Close() error {
	a.closed.Store(true)
	return nil
}

// pooledAllocator implements the 32-bucket, ceil(log2(capacity)) scheme of
// spec §4.3: each bucket is a lockFreePool of buffers of exactly 2^index
// capacity.
type pooledAllocator struct {
	opts    AllocatorOptions
	buckets [numBuckets]*lockFreePool[[]byte]
	pooled  atomic.Int64
	closed  atomic.Bool
}

// NewPooledAllocator returns a concurrency-safe Allocator that recycles
// released buffers by bucketed capacity.
func NewPooledAllocator(opts AllocatorOptions) Allocator {
	a := &pooledAllocator{opts: opts}
	for i := range a.buckets {
		a.buckets[i] = newLockFreePool[[]byte]()
	}
	return a
}

func (a *pooledAllocator) Acquire(size int) (*LeasedBuffer, error) {
	if a.closed.Load() {
		return nil, &Error{Kind: AlreadyClosed, Resource: "allocator"}
	}
	if size < 0 {
		return nil, &Error{Kind: NegativeLength, Length: int64(size)}
	}
	if a.opts.MaxByteBufferCapacity > 0 && size > a.opts.MaxByteBufferCapacity {
		return nil, &Error{Kind: SizeLimitExceeded, Length: int64(size), Max: int64(a.opts.MaxByteBufferCapacity)}
	}

	if a.opts.MaxPooledByteBufferCapacity > 0 && size > a.opts.MaxPooledByteBufferCapacity {
		return &LeasedBuffer{buf: a.alloc(size)[:0]}, nil
	}
	if size > bucketCapacity(numBuckets-1) {
		return &LeasedBuffer{buf: a.alloc(size)[:0]}, nil
	}

	index := bucketIndexForCapacity(size)
	bucket := a.buckets[index]
	if buf, ok := bucket.Get(); ok {
		return &LeasedBuffer{buf: buf[:0], rel: a.releaserFor(index)}, nil
	}

	bucketCap := bucketCapacity(index)
	if a.opts.MaxByteBufferPoolCapacity > 0 {
		newTotal := a.pooled.Add(int64(bucketCap))
		if newTotal > a.opts.MaxByteBufferPoolCapacity {
			a.pooled.Add(-int64(bucketCap))
			return &LeasedBuffer{buf: make([]byte, 0, size)}, nil
		}
	}
	return &LeasedBuffer{buf: a.alloc(bucketCap)[:0], rel: a.releaserFor(index)}, nil
}

func (a *pooledAllocator) alloc(size int) []byte {
	if a.opts.PreferDirectBuffers {
		return AlignedMem(size, PageSize)
	}
	return make([]byte, size)
}

func (a *pooledAllocator) releaserFor(index int) func([]byte) {
	return func(buf []byte) {
		if a.closed.Load() {
			return
		}
		a.buckets[index].Add(buf)
	}
}

func (a *pooledAllocator) Close() error {
	a.closed.Store(true)
	return nil
}
