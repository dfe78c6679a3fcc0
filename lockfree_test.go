// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestLockFreePool_GetEmpty(t *testing.T) {
	p := newLockFreePool[int]()
	if _, ok := p.Get(); ok {
		t.Error("Get() on empty pool returned ok=true")
	}
}

func TestLockFreePool_AddGet(t *testing.T) {
	p := newLockFreePool[int]()
	p.Add(1)
	p.Add(2)
	p.Add(3)

	seen := map[int]bool{}
	for range 3 {
		v, ok := p.Get()
		if !ok {
			t.Fatal("expected an element")
		}
		seen[v] = true
	}
	for _, v := range []int{1, 2, 3} {
		if !seen[v] {
			t.Errorf("element %d never surfaced", v)
		}
	}
	if _, ok := p.Get(); ok {
		t.Error("pool should be empty after draining all adds")
	}
}

func TestLockFreePool_EmptyGetReturnsZeroValue(t *testing.T) {
	p := newLockFreePool[[]byte]()
	v, ok := p.Get()
	if ok || v != nil {
		t.Errorf("Get() on empty pool = (%v, %v), want (nil, false)", v, ok)
	}
}

func TestLockFreePool_ConcurrentProducersConsumers(t *testing.T) {
	const K = 8
	const N = 2000
	const total = K * N

	p := newLockFreePool[int]()
	var consumed atomic.Int64

	var mu sync.Mutex
	results := make(map[int]int, total)

	var wg sync.WaitGroup
	wg.Add(2 * K)

	for g := range K {
		go func(base int) {
			defer wg.Done()
			for i := range N {
				p.Add(base*N + i)
			}
		}(g)
	}

	// Every producer item has exactly one matching consumer attempt: total
	// Get calls are issued across all consumers for total items Added, so
	// each consumer retries until it succeeds rather than giving up on a
	// transient empty read.
	for range K {
		go func() {
			defer wg.Done()
			for range N {
				for {
					if v, ok := p.Get(); ok {
						mu.Lock()
						results[v]++
						mu.Unlock()
						consumed.Add(1)
						break
					}
				}
			}
		}()
	}

	wg.Wait()

	if int(consumed.Load()) != total {
		t.Errorf("consumed %d elements, want %d", consumed.Load(), total)
	}
	if len(results) != total {
		t.Errorf("got %d distinct elements, want %d", len(results), total)
	}
	for k, c := range results {
		if c != 1 {
			t.Errorf("element %d surfaced %d times, want exactly 1", k, c)
		}
	}
}
