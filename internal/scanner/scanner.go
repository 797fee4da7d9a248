package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumipallolabs/dupedive/internal/hasher"
	"github.com/lumipallolabs/dupedive/internal/model"
)

// ErrNotDirectory is wrapped by DirectoryError when the target is a file
var ErrNotDirectory = errors.New("not a directory")

// Progress reports scanning progress
type Progress struct {
	FilesSeen   int64
	FilesHashed int64
	BytesHashed int64
	Skipped     int64
	CurrentPath string
}

// Result is the outcome of one scan pass
type Result struct {
	Dir       string
	Algorithm hasher.Algorithm
	Verified  bool
	Groups    []*model.DuplicateGroup
	FilesRead int   // files hashed successfully
	Unique    int   // files read that are in no group
	Skipped   int   // entries that could not be read or are not regular files
	BytesRead int64 // content bytes hashed
}

// Duplicates returns the number of files that belong to some group
func (r *Result) Duplicates() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Len()
	}
	return n
}

// DirectoryError reports that the scanned directory cannot be opened.
// It is fatal to the scan that produced it.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("directory unavailable: %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// IsDirectoryUnavailable reports whether err is a DirectoryError
func IsDirectoryUnavailable(err error) bool {
	var e *DirectoryError
	return errors.As(err, &e)
}

// Scanner defines the interface for duplicate scanning
type Scanner interface {
	// Scan hashes the immediate entries of dir and returns its duplicate groups
	Scan(ctx context.Context, dir string) (*Result, error)

	// Progress returns a channel that receives progress updates.
	// It is closed when Scan returns.
	Progress() <-chan Progress
}
