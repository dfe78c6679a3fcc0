// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"errors"
	"testing"
	"unsafe"
)

func TestBucketIndexForCapacity(t *testing.T) {
	cases := []struct {
		capacity int
		want     int
	}{
		{0, minBucketIndex},
		{1, minBucketIndex},
		{16, minBucketIndex},
		{17, 5},
		{32, 5},
		{33, 6},
		{1 << 20, 20},
	}
	for _, c := range cases {
		if got := bucketIndexForCapacity(c.capacity); got != c.want {
			t.Errorf("bucketIndexForCapacity(%d) = %d, want %d", c.capacity, got, c.want)
		}
	}
}

func TestBucketCapacity(t *testing.T) {
	if got := bucketCapacity(4); got != 16 {
		t.Errorf("bucketCapacity(4) = %d, want 16", got)
	}
	if got := bucketCapacity(10); got != 1024 {
		t.Errorf("bucketCapacity(10) = %d, want 1024", got)
	}
}

func TestUnpooledAllocator_Acquire(t *testing.T) {
	a := NewUnpooledAllocator(1024)
	lb, err := a.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if cap(lb.Bytes()) != 100 {
		t.Errorf("cap = %d, want 100", cap(lb.Bytes()))
	}
	lb.Release()
	lb.Release() // double-release is a no-op
}

func TestUnpooledAllocator_SizeLimitExceeded(t *testing.T) {
	a := NewUnpooledAllocator(100)
	_, err := a.Acquire(101)
	var e *Error
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.As(err, &e) || e.Kind != SizeLimitExceeded {
		t.Errorf("got %v, want SizeLimitExceeded", err)
	}
}

func TestUnpooledAllocator_AcquireAfterClose(t *testing.T) {
	a := NewUnpooledAllocator(1024)
	_ = a.Close()
	_, err := a.Acquire(10)
	var e *Error
	if !errors.As(err, &e) || e.Kind != AlreadyClosed {
		t.Errorf("got %v, want AlreadyClosed", err)
	}
}

func TestPooledAllocator_RecyclesSameStorage(t *testing.T) {
	opts := DefaultAllocatorOptions()
	a := NewPooledAllocator(opts)

	lb1, err := a.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	ptr1 := unsafe.SliceData(lb1.Bytes()[:cap(lb1.Bytes())])
	lb1.Release()

	lb2, err := a.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	ptr2 := unsafe.SliceData(lb2.Bytes()[:cap(lb2.Bytes())])

	if ptr1 != ptr2 {
		t.Error("second Acquire of same bucket did not reuse released storage")
	}
}

func TestPooledAllocator_AboveNeverPooledCeiling(t *testing.T) {
	opts := DefaultAllocatorOptions()
	opts.MaxPooledByteBufferCapacity = 64
	a := NewPooledAllocator(opts)

	lb, err := a.Acquire(128)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if cap(lb.Bytes()) != 128 {
		t.Errorf("cap = %d, want exactly 128 (unpooled)", cap(lb.Bytes()))
	}
	lb.Release()

	lb2, err := a.Acquire(128)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p1 := unsafe.SliceData(lb.Bytes()[:cap(lb.Bytes())])
	p2 := unsafe.SliceData(lb2.Bytes()[:cap(lb2.Bytes())])
	if p1 == p2 {
		t.Error("buffers above the never-pooled ceiling must not be pooled")
	}
}

func TestPooledAllocator_PerRequestSizeLimit(t *testing.T) {
	opts := DefaultAllocatorOptions()
	opts.MaxByteBufferCapacity = 256
	a := NewPooledAllocator(opts)

	_, err := a.Acquire(257)
	var e *Error
	if !errors.As(err, &e) || e.Kind != SizeLimitExceeded {
		t.Errorf("got %v, want SizeLimitExceeded", err)
	}
}

func TestPooledAllocator_PoolCapacityRollback(t *testing.T) {
	opts := DefaultAllocatorOptions()
	opts.MaxByteBufferPoolCapacity = 16 // smaller than one bucket's size
	opts.MaxPooledByteBufferCapacity = 1 << 20
	a := NewPooledAllocator(opts)

	// First acquire at bucket capacity 32 (index 5) would push pooled total
	// to 32 > 16, so it must roll back and return an unpooled buffer.
	lb, err := a.Acquire(20)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if cap(lb.Bytes()) != 20 {
		t.Errorf("cap = %d, want exact unpooled size 20 after rollback", cap(lb.Bytes()))
	}
}

func TestPooledAllocator_NegativeSize(t *testing.T) {
	a := NewPooledAllocator(DefaultAllocatorOptions())
	_, err := a.Acquire(-1)
	var e *Error
	if !errors.As(err, &e) || e.Kind != NegativeLength {
		t.Errorf("got %v, want NegativeLength", err)
	}
}

func TestPooledAllocator_CloseDropsRelease(t *testing.T) {
	a := NewPooledAllocator(DefaultAllocatorOptions())
	lb, err := a.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	_ = a.Close()
	lb.Release() // must not panic; silently dropped

	_, err = a.Acquire(100)
	var e *Error
	if !errors.As(err, &e) || e.Kind != AlreadyClosed {
		t.Errorf("got %v, want AlreadyClosed", err)
	}
}
