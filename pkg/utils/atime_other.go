// pkg/utils/atime_other.go

//go:build !linux

package utils

import (
	"os"
	"time"
)

// FileAtime returns the last access time recorded for fi; platforms
// without a portable atime fall back to the modification time.
func FileAtime(fi os.FileInfo) time.Time {
	return fi.ModTime()
}
