// pkg/chunk/falloc_linux.go

package chunk

import (
	"golang.org/x/sys/unix"
)

// Preallocate reserves size bytes on disk. Filesystems without fallocate
// (NFS, tmpfs before 3.5) get a plain truncate, which only reserves the
// visible length.
func (f *osFile) Preallocate(size int64) error {
	if size <= 0 {
		return nil
	}
	if err := unix.Fallocate(int(f.Fd()), 0, 0, size); err != nil {
		if err == unix.EOPNOTSUPP || err == unix.ENOSYS {
			return f.Truncate(size)
		}
		return err
	}
	return nil
}
