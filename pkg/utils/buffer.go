// pkg/utils/buffer.go

package utils

import "encoding/binary"

// Buffer is a wrapper of slice of bytes, with a cursor, to read or write
// values in big endian. Writing past the end, or reading more than was
// put in, panics.
type Buffer struct {
	buf []byte
	off int
}

// HasMore returns true if there are more bytes to read.
func (b *Buffer) HasMore() bool {
	return b.off < len(b.buf)
}

// Left returns the number of bytes after the cursor.
func (b *Buffer) Left() int {
	return len(b.buf) - b.off
}

// Len returns the position of the cursor.
func (b *Buffer) Len() int {
	return b.off
}

// Bytes returns the bytes before the cursor.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.off]
}

// Get returns the next l bytes and moves the cursor past them.
func (b *Buffer) Get(l int) []byte {
	last := b.off + l
	v := b.buf[b.off:last:last]
	b.off = last
	return v
}

// Get8 returns the next byte as uint8.
func (b *Buffer) Get8() uint8 {
	v := b.buf[b.off]
	b.off++
	return v
}

// Get16 returns the next 2 bytes as uint16.
func (b *Buffer) Get16() uint16 {
	v := binary.BigEndian.Uint16(b.buf[b.off:])
	b.off += 2
	return v
}

// Get32 returns the next 4 bytes as uint32.
func (b *Buffer) Get32() uint32 {
	v := binary.BigEndian.Uint32(b.buf[b.off:])
	b.off += 4
	return v
}

// Get64 returns the next 8 bytes as uint64.
func (b *Buffer) Get64() uint64 {
	v := binary.BigEndian.Uint64(b.buf[b.off:])
	b.off += 8
	return v
}

// Put appends the given bytes at the cursor.
func (b *Buffer) Put(v []byte) {
	copy(b.buf[b.off:], v)
	b.off += len(v)
}

// Put8 appends v as one byte.
func (b *Buffer) Put8(v uint8) {
	b.buf[b.off] = v
	b.off++
}

// Put16 appends v as 2 bytes.
func (b *Buffer) Put16(v uint16) {
	binary.BigEndian.PutUint16(b.buf[b.off:], v)
	b.off += 2
}

// Put32 appends v as 4 bytes.
func (b *Buffer) Put32(v uint32) {
	binary.BigEndian.PutUint32(b.buf[b.off:], v)
	b.off += 4
}

// Put64 appends v as 8 bytes.
func (b *Buffer) Put64(v uint64) {
	binary.BigEndian.PutUint64(b.buf[b.off:], v)
	b.off += 8
}

// NewBuffer returns a buffer of the given size, ready to be written.
func NewBuffer(size uint32) Buffer {
	return Buffer{make([]byte, size), 0}
}

// FromBuffer returns a buffer to read values from buf.
func FromBuffer(buf []byte) Buffer {
	return Buffer{buf, 0}
}

// ReadBuffer is an alias of FromBuffer.
func ReadBuffer(buf []byte) Buffer {
	return FromBuffer(buf)
}
