// pkg/chunk/chunk_test.go

package chunk

import (
	"io"
	"os"
	"sync"
	"testing"

	"FlipIO/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.SetLogLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

func TestLayout(t *testing.T) {
	req := require.New(t)
	conf := &Config{ChunkSize: 4 << 10}
	req.Equal(Layout{ChunkSize: 4 << 10, Chunks: 1, Last: 0}, conf.Layout(0))
	req.Equal(Layout{ChunkSize: 4 << 10, Chunks: 1, Last: 1}, conf.Layout(1))
	req.Equal(Layout{ChunkSize: 4 << 10, Chunks: 1, Last: 4 << 10}, conf.Layout(4<<10))
	req.Equal(Layout{ChunkSize: 4 << 10, Chunks: 2, Last: 1}, conf.Layout(4<<10+1))
	req.Equal(Layout{ChunkSize: 1 << 20, Chunks: 10, Last: 1 << 20}, (&Config{}).Layout(10<<20))
}

var errInjected = errors.New("injected fault")

// memFile is an in-memory File with fault injection and call counting.
type memFile struct {
	sync.Mutex
	data     []byte
	reads    int
	writes   int
	failRdAt int // reads starting with this one fail (1-based)
	failWrAt int // same for writes
	closed   bool
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.Lock()
	defer f.Unlock()
	f.reads++
	if f.failRdAt > 0 && f.reads >= f.failRdAt {
		return 0, errInjected
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	f.Lock()
	defer f.Unlock()
	f.writes++
	if f.failWrAt > 0 && f.writes >= f.failWrAt {
		return 0, errInjected
	}
	if need := off + int64(len(p)); need > int64(len(f.data)) {
		grown := make([]byte, need)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[off:], p)
	return len(p), nil
}

func (f *memFile) Size() (int64, error) {
	f.Lock()
	defer f.Unlock()
	return int64(len(f.data)), nil
}

func (f *memFile) Truncate(size int64) error {
	f.Lock()
	defer f.Unlock()
	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, f.data)
		f.data = grown
	}
	return nil
}

func (f *memFile) Close() error {
	f.Lock()
	defer f.Unlock()
	f.closed = true
	return nil
}

func (f *memFile) readCount() int {
	f.Lock()
	defer f.Unlock()
	return f.reads
}

func (f *memFile) content() []byte {
	f.Lock()
	defer f.Unlock()
	return append([]byte{}, f.data...)
}

// pattern returns n deterministic bytes.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%23)
	}
	return b
}
