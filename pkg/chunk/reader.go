// pkg/chunk/reader.go

package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"FlipIO/pkg/utils"
	"github.com/pkg/errors"
)

// Reader streams a file from start to finish through two fixed-size
// buffers: while the caller drains one, the next chunk is already being
// loaded into the other. A Reader serves one goroutine; the only state
// shared with a load is the arena it fills, and that is never touched
// before the load is joined.
type Reader struct {
	conf Config

	file File
	size int64
	read int64 // bytes handed out so far

	chunkSize int
	chunks    int // including the short last one
	lastChunk int

	cur  int // chunk being consumed
	isA  bool
	bufA *Buffer
	bufB *Buffer
	load *task // at most one in flight
	rerr error // first load failure, sticky
}

// NewReader creates a reader with the given tuning; conf may be nil for
// the defaults. Nothing is allocated until Open.
func NewReader(conf *Config) *Reader {
	var c Config
	if conf != nil {
		c = *conf
	}
	return &Reader{conf: c}
}

// Open prepares the stream on path: the first chunk is loaded before Open
// returns and the second one is already on its way. Open on an open
// reader closes it first, so a single reader can walk many files.
func (r *Reader) Open(path string) error {
	if err := r.Close(); err != nil {
		return err
	}
	f, err := openFile(path)
	if err != nil {
		return &OpenError{Path: path, Err: err}
	}
	size, err := f.Size()
	if err != nil {
		_ = f.Close()
		return &StatError{Path: path, Err: err}
	}
	return r.start(newLimited(f, r.conf.UpLimit, r.conf.DownLimit), size)
}

func (r *Reader) start(f File, size int64) error {
	// an empty file still gets one empty chunk
	l := r.conf.Layout(size)
	r.chunkSize = l.ChunkSize
	r.chunks = l.Chunks
	r.lastChunk = l.Last
	r.file = f
	r.size = size
	r.read = 0
	r.cur = 0
	r.isA = true
	r.rerr = nil
	r.bufA = NewBuffer(r.chunkSize)
	r.bufB = NewBuffer(r.chunkSize)

	_ = r.startLoad(r.bufA, 0)
	if err := r.joinLoad(); err != nil {
		_ = r.Close()
		return err
	}
	if r.chunks > 1 {
		return r.startLoad(r.bufB, 1)
	}
	return nil
}

// HasMore reports whether any bytes are left to read. Once false it stays
// false until the next Open.
func (r *Reader) HasMore() bool {
	if r.file == nil {
		return false
	}
	if r.cur >= r.chunks-1 {
		return !r.active().AtEnd()
	}
	return true
}

// Size returns the total size of the open file.
func (r *Reader) Size() int64 { return r.size }

// Remaining returns how many bytes of the stream are still unread.
func (r *Reader) Remaining() int64 { return r.size - r.read }

// Buffered returns how many bytes can be served without touching the disk.
func (r *Reader) Buffered() int {
	if r.file == nil {
		return 0
	}
	return r.active().Remaining()
}

// ReadBytes fills dst completely, crossing chunk boundaries as needed.
// Asking for more bytes than the stream still has fails with ErrRange and
// consumes nothing. Load failures are sticky: after a read fails with
// one, every later read returns the same error.
func (r *Reader) ReadBytes(dst []byte) error {
	if r.file == nil {
		return ErrClosed
	}
	if r.rerr != nil {
		return r.rerr
	}
	if int64(len(dst)) > r.size-r.read {
		return errors.Wrapf(ErrRange, "read %d bytes with %d left", len(dst), r.size-r.read)
	}
	done := 0
	for done < len(dst) {
		buf := r.active()
		n := utils.Min(len(dst)-done, buf.Remaining())
		copy(dst[done:], buf.Window()[:n])
		buf.Advance(n)
		done += n
		if buf.AtEnd() {
			if err := r.swap(); err != nil {
				return err
			}
		}
	}
	r.read += int64(len(dst))
	return nil
}

// ReadString returns the next n bytes as a string.
func (r *Reader) ReadString(n int) (string, error) {
	b := make([]byte, n)
	if err := r.ReadBytes(b); err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLiteral decodes the next bytes as one fixed-size little-endian
// value: out is a pointer to an integer, a float, or a struct of such
// fields, like with binary.Read.
func (r *Reader) ReadLiteral(out interface{}) error {
	size := binary.Size(out)
	if size < 0 {
		return errors.Errorf("%T is not a fixed-size value", out)
	}
	tmp := utils.Alloc(size)
	defer utils.Free(tmp)
	if err := r.ReadBytes(tmp); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(tmp), binary.LittleEndian, out)
}

// Read makes the stream an io.Reader so it plugs into io.Copy and
// friends. A short count happens only at the end of the stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r.file == nil {
		return 0, ErrClosed
	}
	if r.rerr != nil {
		return 0, r.rerr
	}
	left := r.size - r.read
	if left == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if int64(n) > left {
		n = int(left)
	}
	if n == 0 {
		return 0, nil
	}
	if err := r.ReadBytes(p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Close joins any load still in flight, releases both buffers and the
// file. Closing twice, or a never-opened reader, is a no-op.
func (r *Reader) Close() error {
	_ = r.joinLoad()
	if r.bufA != nil {
		r.bufA.Free()
		r.bufB.Free()
		r.bufA, r.bufB = nil, nil
	}
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *Reader) active() *Buffer {
	if r.isA {
		return r.bufA
	}
	return r.bufB
}

func (r *Reader) idle() *Buffer {
	if r.isA {
		return r.bufB
	}
	return r.bufA
}

// swap makes the other buffer current once the active one is drained and
// queues the next load; on the last chunk it waits out the pending one.
func (r *Reader) swap() error {
	if !r.HasMore() {
		return nil
	}
	r.isA = !r.isA
	r.cur++
	if r.cur < r.chunks-1 {
		return r.startLoad(r.idle(), r.cur+1)
	}
	return r.joinLoad()
}

// joinLoad settles the load in flight, if any; a failure latches in rerr.
func (r *Reader) joinLoad() error {
	if r.load == nil {
		return nil
	}
	err := r.load.Join()
	r.load = nil
	if err != nil {
		r.rerr = err
	}
	return err
}

// startLoad begins loading chunk idx into buf; at most one load is in flight.
func (r *Reader) startLoad(buf *Buffer, idx int) error {
	if err := r.joinLoad(); err != nil {
		return err
	}
	length := r.chunkSize
	if idx == r.chunks-1 {
		length = r.lastChunk
	}
	buf.Reset()
	buf.SetApparentSize(length)
	if length == 0 {
		return nil
	}
	off := int64(idx) * int64(r.chunkSize)
	file := r.file
	region := buf.Region()[:length]
	r.load = spawn(fmt.Sprintf("load of chunk %d", idx), func() error {
		n, err := file.ReadAt(region, off)
		if err == io.EOF && n == len(region) {
			err = nil
		}
		if err != nil {
			return &IOError{Op: fmt.Sprintf("load %d bytes at offset %d", len(region), off), Err: err}
		}
		return nil
	})
	return nil
}
