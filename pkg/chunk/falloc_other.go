// pkg/chunk/falloc_other.go

//go:build !linux

package chunk

// Preallocate grows the file to size. Without fallocate only the visible
// length is reserved, so a full disk may still bite a later flush.
func (f *osFile) Preallocate(size int64) error {
	if size <= 0 {
		return nil
	}
	return f.Truncate(size)
}
