package review

import (
	"errors"
	"fmt"
	"os"
)

// Remover deletes files from storage
type Remover interface {
	Remove(path string) error
}

// OSRemover deletes files with os.Remove
type OSRemover struct{}

// Remove deletes path
func (OSRemover) Remove(path string) error {
	return os.Remove(path)
}

// DeletionError reports a file that could not be deleted
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("cannot delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// IsDeletionFailed reports whether err is a DeletionError
func IsDeletionFailed(err error) bool {
	var e *DeletionError
	return errors.As(err, &e)
}
