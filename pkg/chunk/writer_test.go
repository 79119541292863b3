// pkg/chunk/writer_test.go

package chunk

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriterRoundtrip(t *testing.T) {
	const C = 64
	for _, n := range []int{0, 1, C - 1, C, C + 1, 3*C + 7} {
		t.Run(fmt.Sprintf("%dbytes", n), func(t *testing.T) {
			req := require.New(t)
			path := filepath.Join(t.TempDir(), "out")
			w := NewWriter(&Config{ChunkSize: C})
			req.NoError(w.Open(path, int64(n), Truncate, C))

			data := pattern(n)
			for off := 0; off < n; { // feed in awkward pieces
				c := 17
				if off+c > n {
					c = n - off
				}
				req.NoError(w.WriteBytes(data[off : off+c]))
				off += c
			}
			req.Equal(int64(n), w.Stored())
			req.NoError(w.Close())

			got, err := os.ReadFile(path)
			req.NoError(err)
			req.Equal(data, got)
		})
	}
}

func TestWriterThenReader(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	data := pattern(3*256 + 17)

	w := NewWriter(nil)
	req.NoError(w.Open(path, int64(len(data)), Truncate, 256))
	req.NoError(w.WriteBytes(data))
	req.NoError(w.Close())

	r := NewReader(&Config{ChunkSize: 96})
	req.NoError(r.Open(path))
	got := make([]byte, len(data))
	req.NoError(r.ReadBytes(got))
	req.Equal(data, got)
	req.False(r.HasMore())
	req.NoError(r.Close())
}

func TestWriterStored(t *testing.T) {
	req := require.New(t)
	f := &memFile{}
	w := NewWriter(nil)
	w.start(f, "mem", 0, 8)

	req.Equal(int64(0), w.Stored())
	req.NoError(w.WriteBytes(pattern(5)))
	req.Equal(int64(5), w.Stored(), "the count moves before any flush")
	req.NoError(w.WriteBytes(pattern(10)))
	req.Equal(int64(15), w.Stored())
	req.NoError(w.Close())
	req.Equal(pattern(5), f.content()[:5])
}

func TestWriterHeaderPatch(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Truncate, 32))

	placeholder := make([]byte, 8)
	req.NoError(w.OverwriteBytes(0, placeholder), "a virgin patch at zero is the first append")
	body := pattern(100)
	req.NoError(w.WriteBytes(body))
	req.Equal(int64(108), w.Stored())

	req.NoError(w.OverwriteBytes(0, []byte("HDR-DONE")))
	req.NoError(w.Close())

	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(108, len(got))
	req.Equal([]byte("HDR-DONE"), got[:8])
	req.Equal(body, got[8:])
}

func TestWriterPatchPendingBytes(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Truncate, 8))

	req.NoError(w.WriteBytes(pattern(10))) // 8 flushed, 2 still in the accumulator
	req.NoError(w.OverwriteBytes(6, []byte("XYZZY!")))
	req.NoError(w.WriteBytes([]byte("??")))
	req.NoError(w.Close())

	// the patch forced the pending bytes out first, then later appends
	// land over whatever the patch left past the append position
	want := append([]byte{}, pattern(10)[:6]...)
	want = append(want, []byte("XYZZ")...)
	want = append(want, []byte("??")...)
	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(want, got)
	req.Equal(int64(12), w.Stored())
}

func TestWriterRangeErrors(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Truncate, 8))

	req.ErrorIs(w.OverwriteBytes(3, []byte("x")), ErrRange, "nothing appended yet")
	req.ErrorIs(w.OverwriteBytes(-1, []byte("x")), ErrRange)

	req.NoError(w.WriteBytes(pattern(4)))
	req.ErrorIs(w.OverwriteBytes(100, []byte("x")), ErrRange)

	// a range error does not poison the stream
	req.NoError(w.WriteBytes(pattern(4)))
	req.NoError(w.Close())
	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(append(append([]byte{}, pattern(4)...), pattern(4)...), got)
}

func TestWriterAppend(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	req.NoError(os.WriteFile(path, []byte("HELLO"), 0644))

	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Append, 8))
	req.NoError(w.WriteBytes([]byte(" WORLD")))
	req.NoError(w.Close())

	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("HELLO WORLD", string(got))

	// patching inside the pre-existing content while appending
	req.NoError(w.Open(path, 0, Append, 8))
	req.NoError(w.OverwriteBytes(0, []byte("J")))
	req.NoError(w.WriteBytes([]byte("!")))
	req.NoError(w.Close())

	got, err = os.ReadFile(path)
	req.NoError(err)
	req.Equal("JELLO WORLD!", string(got))
}

func TestWriterReservation(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	w := NewWriter(nil)
	req.NoError(w.Open(path, 1000, Truncate, 64))

	size, err := w.FileSize()
	req.NoError(err)
	req.Equal(int64(1000), size, "the reservation is visible right away")

	req.NoError(w.WriteBytes(pattern(10)))
	req.Equal(int64(10), w.Stored(), "stored lags the reserved size on purpose")
	req.NoError(w.Close())

	st, err := os.Stat(path)
	req.NoError(err)
	req.Equal(int64(1000), st.Size(), "closing does not trim the reservation")
	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(pattern(10), got[:10])

	// an append session never shrinks the file to a smaller reservation
	req.NoError(w.Open(path, 50, Append, 64))
	size, err = w.FileSize()
	req.NoError(err)
	req.Equal(int64(1000), size)
	req.NoError(w.Close())
}

func TestWriterStickyFailure(t *testing.T) {
	req := require.New(t)
	f := &memFile{failWrAt: 1}
	w := NewWriter(nil)
	w.start(f, "mem", 0, 8)

	// both flushes get queued before any failure is observable
	req.NoError(w.WriteBytes(pattern(8)))
	req.NoError(w.WriteBytes(pattern(8)))

	err := w.WriteBytes(pattern(1))
	var ioErr *IOError
	req.ErrorAs(err, &ioErr)
	req.ErrorIs(err, errInjected)
	req.Equal(int64(16), w.Stored(), "the failed call took nothing")

	req.Equal(err, w.WriteBytes(pattern(1)), "the failure is sticky")
	req.Equal(err, w.OverwriteBytes(0, []byte("x")))
	req.Equal(err, w.Close())
	req.NoError(w.Close(), "second close is a no-op")
	req.ErrorIs(w.WriteBytes([]byte("x")), ErrClosed)
}

// stallFile fails the write landing at failOff and parks the one landing
// at stallOff until release is closed.
type stallFile struct {
	memFile
	failOff  int64
	stallOff int64
	release  chan struct{}
}

func (f *stallFile) WriteAt(p []byte, off int64) (int, error) {
	if off == f.stallOff {
		<-f.release
	}
	if off == f.failOff {
		return 0, errInjected
	}
	return f.memFile.WriteAt(p, off)
}

func TestWriterCloseSettlesBothSlots(t *testing.T) {
	req := require.New(t)
	f := &stallFile{failOff: 0, stallOff: 8, release: make(chan struct{})}
	w := NewWriter(nil)
	w.start(f, "mem", 0, 8)

	// one flush per slot: the first fails, the second is still draining
	req.NoError(w.WriteBytes(pattern(8)))
	req.NoError(w.WriteBytes(pattern(8)))

	start := time.Now()
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(f.release)
	}()
	err := w.Close()
	var ioErr *IOError
	req.ErrorAs(err, &ioErr)
	req.ErrorIs(err, errInjected)
	req.GreaterOrEqual(time.Since(start), 50*time.Millisecond, "close waits out the parked flush")
	req.Equal(pattern(8), f.content()[8:16], "the parked flush still landed")
	req.True(f.closed)
}

func TestWriterCloseFlushes(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Truncate, 64))
	req.NoError(w.WriteBytes([]byte("tail")))
	req.NoError(w.Close())

	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("tail", string(got))

	_, err = w.FileSize()
	req.ErrorIs(err, ErrClosed)
	req.Equal("", w.Path())
}

func TestWriterClosed(t *testing.T) {
	req := require.New(t)
	w := NewWriter(nil)
	req.ErrorIs(w.WriteBytes([]byte("x")), ErrClosed)
	req.ErrorIs(w.OverwriteBytes(0, []byte("x")), ErrClosed)
	req.NoError(w.Close())
	size, err := w.FileSize()
	req.Equal(int64(-1), size)
	req.ErrorIs(err, ErrClosed)
}

func TestWriterTruncateDropsOldContent(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out")
	req.NoError(os.WriteFile(path, pattern(500), 0644))

	w := NewWriter(nil)
	req.NoError(w.Open(path, 0, Truncate, 64))
	req.NoError(w.WriteBytes([]byte("fresh")))
	req.NoError(w.Close())

	got, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal("fresh", string(got))
}
