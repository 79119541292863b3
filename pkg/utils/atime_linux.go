// pkg/utils/atime_linux.go

package utils

import (
	"os"
	"syscall"
	"time"
)

// FileAtime returns the last access time recorded for fi.
func FileAtime(fi os.FileInfo) time.Time {
	if sst, ok := fi.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sst.Atim.Unix())
	}
	return fi.ModTime()
}
