//go:build unix

package scanner

import (
	"os"

	"github.com/lumipallolabs/dupedive/internal/model"
	"golang.org/x/sys/unix"
)

// fileIdentity returns the device/inode pair and link count of an open file
func fileIdentity(f *os.File) model.FileID {
	var stat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &stat); err != nil {
		return model.FileID{}
	}
	return model.FileID{
		Dev:   uint64(stat.Dev),
		Ino:   uint64(stat.Ino),
		Links: uint64(stat.Nlink),
	}
}
