//go:build windows

package scanner

import (
	"os"

	"github.com/lumipallolabs/dupedive/internal/model"
	"golang.org/x/sys/windows"
)

// fileIdentity returns the volume serial, file index and link count of an open file
func fileIdentity(f *os.File) model.FileID {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(f.Fd()), &info); err != nil {
		return model.FileID{}
	}
	return model.FileID{
		Dev:   uint64(info.VolumeSerialNumber),
		Ino:   uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow),
		Links: uint64(info.NumberOfLinks),
	}
}
