// pkg/chunk/writer.go

package chunk

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Writer appends a byte stream to a file through two fixed-size
// accumulators: a full one is flushed in the background while the caller
// keeps filling the other. OverwriteBytes is the slow path for patching
// bytes that were already appended, typically a header whose fields are
// only known at the end.
//
// A Writer serves one goroutine. Flush failures are sticky: once one
// surfaces at a join, every later call returns it and nothing more is
// flushed; Close still settles both slots and releases the file.
type Writer struct {
	conf Config

	path string
	file File
	// fileMu serializes the physical file between background flushes
	// and foreground overwrites
	fileMu sync.Mutex

	base    int64 // offset where this session started appending
	flushed int64 // bytes after base already handed to flushes
	stored  int64 // bytes accepted by WriteBytes this session

	isA    bool
	bufA   *Buffer
	bufB   *Buffer
	taskA  *task // in-flight flush of bufA, nil when settled
	taskB  *task
	virgin bool // no WriteBytes yet

	werr error // first flush failure, sticky
}

// NewWriter creates a writer with the given tuning; conf may be nil for
// the defaults. Nothing is allocated until Open.
func NewWriter(conf *Config) *Writer {
	var c Config
	if conf != nil {
		c = *conf
	}
	return &Writer{conf: c}
}

// Open creates or opens path for appending. With initialSize > 0 that
// much disk is reserved up front, so running out of space surfaces here
// as a ResizeError; in Append mode the reservation only ever grows the
// file. bufferSize is the capacity of each accumulator, <= 0 falls back
// to the configured chunk size. Open on an open writer closes it first.
func (w *Writer) Open(path string, initialSize int64, mode OpenMode, bufferSize int) error {
	if err := w.Close(); err != nil {
		return err
	}
	if bufferSize <= 0 {
		bufferSize = w.conf.chunkSize()
	} else if bufferSize < minChunkSize {
		logger.Warnf("buffer size %d is below %d bytes, the disk will hardly be overlapped", bufferSize, minChunkSize)
	}
	f, err := createFile(path, mode)
	if err != nil {
		return &OpenError{Path: path, Err: err}
	}
	var base int64
	if mode == Append {
		if base, err = f.Size(); err != nil {
			_ = f.Close()
			return &StatError{Path: path, Err: err}
		}
	}
	if initialSize > 0 && (mode == Truncate || initialSize > base) {
		if err = preallocate(f, initialSize); err != nil {
			_ = f.Close()
			return &ResizeError{Path: path, Size: initialSize, Err: err}
		}
	}
	w.start(newLimited(f, w.conf.UpLimit, w.conf.DownLimit), path, base, bufferSize)
	return nil
}

// start wires a session on an already opened file.
func (w *Writer) start(f File, path string, base int64, bufferSize int) {
	w.path = path
	w.file = f
	w.base = base
	w.flushed = 0
	w.stored = 0
	w.bufA = NewBuffer(bufferSize)
	w.bufB = NewBuffer(bufferSize)
	w.bufA.SetApparentSize(bufferSize)
	w.bufB.SetApparentSize(bufferSize)
	w.isA = true
	w.virgin = true
	w.werr = nil
}

// WriteBytes appends src to the stream. Each time the active accumulator
// runs full its flush starts in the background and the roles toggle; an
// accumulator is reused only after its previous flush was joined. Stored
// moves as soon as bytes enter an accumulator, durability arrives with
// the flush, at the latest in Close.
func (w *Writer) WriteBytes(src []byte) error {
	if w.file == nil {
		return ErrClosed
	}
	if w.werr != nil {
		return w.werr
	}
	w.virgin = false
	for len(src) > 0 {
		buf := w.active()
		if err := w.join(buf); err != nil {
			return err
		}
		n := buf.Put(src)
		w.stored += int64(n)
		src = src[n:]
		if buf.AtEnd() {
			w.startFlush(buf, buf.Capacity())
			// the flush owns the arena now, the cursor is still ours
			buf.Reset()
			w.isA = !w.isA
		}
	}
	return nil
}

// OverwriteBytes patches len(src) bytes at an absolute file offset and
// leaves the append position where it was. Both flushes are joined first
// so the file has caught up with every append before the patch lands.
// On a virgin stream a patch at offset 0 is really the first append and
// goes through the accumulators; a patch reaching into pending bytes
// forces them out first. Offsets beyond the append position fail with
// ErrRange; bytes patched past it are not part of the stream and later
// appends land over them.
func (w *Writer) OverwriteBytes(off int64, src []byte) error {
	if w.file == nil {
		return ErrClosed
	}
	if w.werr != nil {
		return w.werr
	}
	if off < 0 {
		return errors.Wrapf(ErrRange, "negative offset %d", off)
	}
	if err := w.join(w.bufA); err != nil {
		return err
	}
	if err := w.join(w.bufB); err != nil {
		return err
	}

	p := w.base + w.flushed
	if w.virgin && p == 0 && off == 0 {
		return w.WriteBytes(src)
	}
	if off+int64(len(src)) > p && w.active().Len() > 0 {
		if err := w.flushPending(); err != nil {
			return err
		}
		p = w.base + w.flushed
	}
	if off > p {
		return errors.Wrapf(ErrRange, "overwrite at %d beyond append position %d", off, p)
	}

	w.fileMu.Lock()
	_, err := w.file.WriteAt(src, off)
	w.fileMu.Unlock()
	if err != nil {
		return &IOError{Op: fmt.Sprintf("overwrite %d bytes at offset %d", len(src), off), Err: err}
	}
	return nil
}

// Stored returns how many bytes WriteBytes has taken so far; it runs
// ahead of durability. The count survives Close and resets with the
// next Open.
func (w *Writer) Stored() int64 { return w.stored }

// FileSize returns the current size on disk, reservation included, or -1
// when the writer is closed.
func (w *Writer) FileSize() (int64, error) {
	if w.file == nil {
		return -1, ErrClosed
	}
	return w.file.Size()
}

// Path returns the path of the open file, empty when closed.
func (w *Writer) Path() string { return w.path }

// Close drains the partial accumulator, settles both slots and releases
// the file. The writer can be reused with another Open; closing twice is
// a no-op.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	var err error
	if w.werr != nil {
		// poisoned: settle the slots, flush nothing new
		err = w.werr
		_ = w.join(w.bufA)
		_ = w.join(w.bufB)
	} else {
		err = w.flushPending()
	}
	if cerr := w.file.Close(); err == nil && cerr != nil {
		err = cerr
	}
	w.file = nil
	w.bufA.Free()
	w.bufB.Free()
	w.bufA, w.bufB = nil, nil
	w.taskA, w.taskB = nil, nil
	w.path = ""
	w.base, w.flushed = 0, 0
	w.virgin = false
	w.werr = nil
	return err
}

func (w *Writer) active() *Buffer {
	if w.isA {
		return w.bufA
	}
	return w.bufB
}

func (w *Writer) slot(buf *Buffer) **task {
	if buf == w.bufA {
		return &w.taskA
	}
	return &w.taskB
}

// join waits out the pending flush of buf, if any; a failure latches in werr.
func (w *Writer) join(buf *Buffer) error {
	t := w.slot(buf)
	if *t == nil {
		return nil
	}
	err := (*t).Join()
	*t = nil
	if err != nil {
		w.werr = err
	}
	return err
}

// flushPending forces out the bytes still sitting in the accumulator.
// Both slots are settled when it returns, error or not.
func (w *Writer) flushPending() error {
	buf := w.active()
	err := w.join(buf)
	if err == nil && buf.Len() > 0 {
		w.startFlush(buf, buf.Len())
		buf.Reset()
	}
	if jerr := w.join(w.bufA); err == nil {
		err = jerr
	}
	if jerr := w.join(w.bufB); err == nil {
		err = jerr
	}
	w.isA = true
	return err
}

// startFlush hands the first n bytes of buf to a background task writing
// at the next append offset. The caller has joined the slot already.
func (w *Writer) startFlush(buf *Buffer, n int) {
	off := w.base + w.flushed
	w.flushed += int64(n)
	region := buf.Region()[:n]
	file := w.file
	*w.slot(buf) = spawn(fmt.Sprintf("flush of %d bytes", n), func() error {
		w.fileMu.Lock()
		defer w.fileMu.Unlock()
		if _, err := file.WriteAt(region, off); err != nil {
			return &IOError{Op: fmt.Sprintf("flush %d bytes at offset %d", n, off), Err: err}
		}
		return nil
	})
}
