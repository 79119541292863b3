// pkg/chunk/file.go

package chunk

import (
	"os"
)

// osFile adapts *os.File to the File interface.
type osFile struct {
	*os.File
}

func (f *osFile) Size() (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// openFile opens an existing file for reading.
func openFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &osFile{f}, nil
}

// createFile opens or creates a file for writing. O_APPEND is never used,
// it breaks WriteAt; append semantics come from the stream offsets.
func createFile(path string, mode OpenMode) (File, error) {
	flags := os.O_CREATE | os.O_RDWR
	if mode == Truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}
	return &osFile{f}, nil
}

// preallocate reserves space with the richest primitive the file offers.
func preallocate(f File, size int64) error {
	if p, ok := f.(Preallocator); ok {
		return p.Preallocate(size)
	}
	return f.Truncate(size)
}
