//go:build !unix && !windows

package scanner

import (
	"os"

	"github.com/lumipallolabs/dupedive/internal/model"
)

// fileIdentity is not available on this platform
func fileIdentity(f *os.File) model.FileID {
	return model.FileID{}
}
