// pkg/utils/file_unix.go

package utils

import (
	"os"
	"syscall"
)

// GetFileInode returns the inode number of path.
func GetFileInode(path string) (uint64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if sst, ok := fi.Sys().(*syscall.Stat_t); ok {
		return sst.Ino, nil
	}
	return 0, nil
}
