package core

import (
	"github.com/lumipallolabs/dupedive/internal/scanner"
	"github.com/lumipallolabs/dupedive/internal/watcher"
)

// Event represents a state change produced off the foreground.
// Events are applied with Controller.Dispatch.
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	Path string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent is emitted during scanning
type ScanProgressEvent struct {
	scanner.Progress
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when a scan finishes, successfully or not.
// It carries the group list to the foreground.
type ScanCompletedEvent struct {
	Result *scanner.Result
	Err    error
}

func (ScanCompletedEvent) isEvent() {}

// ExternalDeletionEvent is emitted when a file vanishes from the
// reviewed directory without going through Remove
type ExternalDeletionEvent struct {
	Path string
	Type watcher.EventType
}

func (ExternalDeletionEvent) isEvent() {}
