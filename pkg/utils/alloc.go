// pkg/utils/alloc.go

package utils

import (
	"sync"
	"sync/atomic"
)

var used int64

// Alloc returns a byte slice of the wanted size, backed by an arena that
// is a power of two. The slice should be released with Free.
func Alloc(size int) []byte {
	zeros := PowerOf2(size)
	b := *pools[zeros].Get().(*[]byte)
	if cap(b) < size {
		panic("size of allocated chunk is smaller than wanted")
	}
	atomic.AddInt64(&used, int64(cap(b)))
	return b[:size]
}

// Free returns a slice got from Alloc back to its pool. It is a no-op for
// an empty slice, so freeing twice after a slice was zeroed out is safe.
func Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	atomic.AddInt64(&used, -int64(cap(b)))
	b = b[:cap(b)]
	pools[PowerOf2(cap(b))].Put(&b)
}

// AllocMemory returns the size of memory that was taken from the pools.
func AllocMemory() int64 {
	return atomic.LoadInt64(&used)
}

// PowerOf2 returns the smallest p so that (1 << p) >= s.
func PowerOf2(s int) int {
	var bits int
	var p = 1
	for p < s {
		bits++
		p <<= 1
	}
	return bits
}

var pools []*sync.Pool

func init() {
	pools = make([]*sync.Pool, 33) // 1 byte up to 4G
	for i := 0; i < 33; i++ {
		func(bits int) {
			pools[bits] = &sync.Pool{
				New: func() interface{} {
					b := make([]byte, 1<<bits)
					return &b
				},
			}
		}(i)
	}
}
