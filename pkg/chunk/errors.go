// pkg/chunk/errors.go

package chunk

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrRange flags a request outside the stream: reading more bytes
	// than are left, or overwriting beyond the current append position.
	// The stream is left as it was.
	ErrRange = errors.New("request outside the stream")

	// ErrClosed is returned when a stream is used before Open or after
	// Close.
	ErrClosed = errors.New("stream is not open")
)

// OpenError means the underlying file could not be opened or created.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("open %s: %s", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// StatError means the size of the file could not be determined.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string { return fmt.Sprintf("stat %s: %s", e.Path, e.Err) }
func (e *StatError) Unwrap() error { return e.Err }

// ResizeError means the up-front reservation failed, usually because the
// disk does not have that much space.
type ResizeError struct {
	Path string
	Size int64
	Err  error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize %s to %d bytes: %s", e.Path, e.Size, e.Err)
}
func (e *ResizeError) Unwrap() error { return e.Err }

// IOError wraps a failed load or flush. Background failures surface at
// the next join, not at the call that queued the work.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
