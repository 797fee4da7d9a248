// Package watcher reports files that disappear from a watched directory.
// Only immediate entries of the directory are reported.
package watcher

import "path/filepath"

// EventType represents the type of filesystem event
type EventType int

const (
	EventDeleted EventType = iota
	EventRenamed           // moved away, including move to trash
)

// String returns a short event name
func (t EventType) String() string {
	switch t {
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event represents a filesystem change event
type Event struct {
	Type EventType
	Path string
}

// bufferSize is the capacity of the event channel
const bufferSize = 100

// immediateChild reports whether path names an entry directly inside dir
func immediateChild(dir, path string) bool {
	return filepath.Clean(filepath.Dir(path)) == filepath.Clean(dir)
}

// send delivers ev without blocking; events are dropped when the
// consumer falls behind
func send(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
