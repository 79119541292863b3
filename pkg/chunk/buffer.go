// pkg/chunk/buffer.go

package chunk

import (
	"fmt"
	"runtime"

	"FlipIO/pkg/utils"
)

// Buffer is a fixed-capacity arena with an apparent size (how many bytes
// are meaningful this round) and a cursor (how far its owner has got).
// The arena is allocated once and reused for every chunk the buffer
// carries, so a long stream costs two allocations total.
//
// Buffer is a dumb primitive owned by one goroutine at a time; misuse is
// a programming error and panics instead of returning an error.
type Buffer struct {
	data []byte // len(data) == capacity
	size int    // apparent size, size <= len(data)
	pos  int    // cursor, pos <= size
}

// NewBuffer creates a buffer of the given capacity on the shared
// allocation pool. It must be released with Free.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		panic("capacity of buffer should be > 0")
	}
	b := &Buffer{data: utils.Alloc(capacity)}
	runtime.SetFinalizer(b, func(b *Buffer) {
		if b.data != nil {
			logger.Errorf("buffer %p (capacity %d) was collected without Free", b, len(b.data))
		}
	})
	return b
}

// Free returns the arena to the allocation pool. The buffer must not be
// used afterwards; a second Free is a no-op.
func (b *Buffer) Free() {
	if b.data != nil {
		utils.Free(b.data)
		b.data = nil
		b.size = 0
		b.pos = 0
	}
}

// Capacity returns the allocated size of the arena.
func (b *Buffer) Capacity() int { return len(b.data) }

// Size returns the apparent size.
func (b *Buffer) Size() int { return b.size }

// Len returns the position of the cursor.
func (b *Buffer) Len() int { return b.pos }

// Remaining returns how many meaningful bytes are left after the cursor.
func (b *Buffer) Remaining() int { return b.size - b.pos }

// AtEnd reports whether the cursor has consumed all meaningful bytes.
func (b *Buffer) AtEnd() bool { return b.pos >= b.size }

// Reset rewinds the cursor; the apparent size stays.
func (b *Buffer) Reset() { b.pos = 0 }

// SetApparentSize declares how many bytes of the arena are meaningful.
// The filler calls it before handing the buffer over, so consumers never
// see bytes of the previous chunk past the end of a short one.
func (b *Buffer) SetApparentSize(n int) {
	if n < 0 || n > len(b.data) {
		panic(fmt.Sprintf("apparent size %d outside arena of %d bytes", n, len(b.data)))
	}
	b.size = n
}

// Advance moves the cursor past n consumed bytes.
func (b *Buffer) Advance(n int) {
	if n < 0 || n > b.size-b.pos {
		panic(fmt.Sprintf("advance %d bytes with only %d remaining", n, b.size-b.pos))
	}
	b.pos += n
}

// Window returns the meaningful bytes between the cursor and the apparent
// size, without consuming them.
func (b *Buffer) Window() []byte { return b.data[b.pos:b.size] }

// Region returns the whole arena, for fillers. The caller owns the buffer
// exclusively while writing into it.
func (b *Buffer) Region() []byte { return b.data }

// Put copies as much of p as fits between the cursor and the apparent
// size, advances the cursor, and returns the number of bytes taken.
func (b *Buffer) Put(p []byte) int {
	n := copy(b.data[b.pos:b.size], p)
	b.pos += n
	return n
}

// Fill replaces the content from the start of the arena with p, making
// exactly those bytes apparent. The cursor is not touched.
func (b *Buffer) Fill(p []byte) {
	if len(p) > len(b.data) {
		panic(fmt.Sprintf("fill %d bytes into arena of %d", len(p), len(b.data)))
	}
	copy(b.data, p)
	b.size = len(p)
}
