// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"unsafe"

	"code.hybscloud.com/minipack/internal"
)

// AlignedMem returns a byte slice with the specified size
// and starting address aligned to the memory page size.
//
// The pooled allocator's PreferDirectBuffers option uses this to back
// freshly allocated working buffers with page-aligned memory.
//
// The returned slice shares underlying memory with a larger allocation;
// do not assume len(result) == cap(result).
func AlignedMem(size int, pageSize uintptr) []byte {
	p := make([]byte, uintptr(size)+pageSize-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := ((uintptr(base)+pageSize-1)/pageSize)*pageSize - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}

// CacheLineSize is the CPU L1 cache line size for the current architecture.
// This is detected at compile time based on the target architecture:
//   - amd64: 64 bytes (Intel/AMD)
//   - arm64: 128 bytes (conservative for Apple Silicon)
//   - riscv64: 64 bytes
//   - loong64: 64 bytes
//   - others: 64 bytes (default)
const CacheLineSize = internal.CacheLineSize

// PageSize defines the standard memory page size (4 KiB) used for alignment.
var PageSize uintptr = 4096

// The pooled allocator buckets buffers by capacity, indexed by
// ceil(log2(capacity)) and clamped to a floor of 16 bytes (index 4), per
// spec §4.3. 32 buckets cover capacities up to 2^31 bytes; the pooled
// allocator serves larger requests as exact-size unpooled buffers.
const (
	minBucketIndex = 4
	numBuckets     = 32
)

// bucketIndexForCapacity returns the smallest bucket index whose pooled
// capacity (2^index) is >= capacity, clamped to [minBucketIndex, numBuckets-1].
func bucketIndexForCapacity(capacity int) int {
	if capacity <= 1<<minBucketIndex {
		return minBucketIndex
	}
	idx := bitLen(uint64(capacity - 1))
	if idx >= numBuckets {
		return numBuckets - 1
	}
	return idx
}

// bucketCapacity returns 2^index, the exact capacity pooled by that bucket.
func bucketCapacity(index int) int {
	return 1 << uint(index)
}

// bitLen returns the number of bits required to represent v, i.e. the
// smallest n such that v < 1<<n. bitLen(0) == 0.
func bitLen(v uint64) (n int) {
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}
