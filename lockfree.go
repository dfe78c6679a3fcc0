// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// lockFreeNode is a single link in the Treiber stack. A fresh node is
// allocated on every Add so the same node object is never recycled while
// concurrent pops may still hold a pointer to it, which is what keeps the
// CAS on head ABA-safe per spec §4.2.
type lockFreeNode[T any] struct {
	value T
	next  *lockFreeNode[T]
}

// lockFreePool is a lock-free LIFO pool of elements of type T, built as a
// Treiber stack: Add pushes via CAS on the head pointer, Get pops via CAS.
// There is no FIFO guarantee — elements may surface in any order relative
// to insertion. It is unbounded and node-based: the allocator's pooled
// buckets use it because a bucket's population grows and shrinks with
// program behavior rather than being fixed at construction time.
type lockFreePool[T any] struct {
	_    noCopy
	head atomic.Pointer[lockFreeNode[T]]
}

// newLockFreePool creates an empty lock-free pool.
func newLockFreePool[T any]() *lockFreePool[T] {
	return &lockFreePool[T]{}
}

// Add pushes item onto the stack. It allocates a fresh node and retries the
// CAS on head until it succeeds.
func (p *lockFreePool[T]) Add(item T) {
	n := &lockFreeNode[T]{value: item}
	var sw spin.Wait
	for {
		old := p.head.Load()
		n.next = old
		if p.head.CompareAndSwap(old, n) {
			return
		}
		sw.Once()
	}
}

// Get pops an element from the stack. It returns ok=false when the stack
// was empty at the moment of the attempt.
func (p *lockFreePool[T]) Get() (item T, ok bool) {
	var sw spin.Wait
	for {
		old := p.head.Load()
		if old == nil {
			var zero T
			return zero, false
		}
		if p.head.CompareAndSwap(old, old.next) {
			return old.value, true
		}
		sw.Once()
	}
}
