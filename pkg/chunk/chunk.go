// pkg/chunk/chunk.go

// Package chunk moves byte streams between memory and disk through a pair
// of fixed-size buffers. A Reader hands out bytes from one buffer while
// the next chunk is loaded into the other; a Writer fills one buffer while
// the previous one is flushed behind its back. Sequential consumers and
// producers overlap their compute with the disk instead of waiting for it.
package chunk

import (
	"io"

	"FlipIO/pkg/utils"
)

var logger = utils.GetLogger("flipio")

// DefaultChunkSize is used when Config.ChunkSize is left zero.
const DefaultChunkSize = 1 << 20

// Sizes below this still work but leave little latency to hide.
const minChunkSize = 1 << 10

// File is what the streams run on: positional reads and writes plus size
// query and resize. *os.File satisfies it through the adapter returned by
// openFile and createFile; tests swap in their own.
type File interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Truncate(size int64) error
	Close() error
}

// Preallocator is implemented by files that can reserve disk space ahead
// of the writes, so a full disk is found out at open time rather than in
// some background flush much later.
type Preallocator interface {
	Preallocate(size int64) error
}

// Config tunes a Reader or a Writer. The zero value is usable.
type Config struct {
	// ChunkSize is the capacity of each of the two buffers.
	ChunkSize int
	// UpLimit and DownLimit throttle flushes and loads, in bytes per
	// second. Zero means unlimited.
	UpLimit   int64
	DownLimit int64
}

func (c *Config) chunkSize() int {
	size := c.ChunkSize
	if size == 0 {
		size = DefaultChunkSize
	}
	if size < minChunkSize {
		logger.Warnf("chunk size %d is below %d bytes, the disk will hardly be overlapped", size, minChunkSize)
	}
	return size
}

// Layout describes how a stream of a given length is cut into chunks:
// Chunks-1 full chunks of ChunkSize bytes followed by a final one of Last
// bytes. An empty stream still counts as one chunk of zero bytes.
type Layout struct {
	ChunkSize int
	Chunks    int
	Last      int
}

// Layout returns the chunk layout of a stream of size bytes under this
// configuration.
func (c *Config) Layout(size int64) Layout {
	l := Layout{ChunkSize: c.chunkSize()}
	l.Chunks = int(size / int64(l.ChunkSize))
	l.Last = int(size % int64(l.ChunkSize))
	if l.Last > 0 {
		l.Chunks++
	} else if l.Chunks > 0 {
		l.Last = l.ChunkSize
	} else {
		l.Chunks = 1
	}
	return l
}

// OpenMode controls what Writer.Open does with existing content.
type OpenMode int

const (
	// Truncate drops any existing content.
	Truncate OpenMode = iota
	// Append keeps existing content and continues after it.
	Append
)

func (m OpenMode) String() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}
