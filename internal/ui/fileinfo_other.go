//go:build !darwin

package ui

import (
	"os"
	"time"
)

// creationTime returns zero time on platforms without birthtime in FileInfo
func creationTime(info os.FileInfo) time.Time {
	return time.Time{}
}
