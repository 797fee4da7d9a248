//go:build darwin

package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"
)

// Watcher watches a directory using macOS FSEvents.
// FSEvents streams are recursive; nested paths are filtered out.
type Watcher struct {
	stream  *fsevents.EventStream
	dir     string
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates a new filesystem watcher
func New() (*Watcher, error) {
	return &Watcher{
		eventCh: make(chan Event, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel for receiving filesystem events
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Watch sets the directory to watch
func (w *Watcher) Watch(dir string) error {
	// FSEvents reports real paths, e.g. /private/var for /var
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}
	dev, err := fsevents.DeviceForPath(dir)
	if err != nil {
		return err
	}

	w.dir = dir
	w.stream = &fsevents.EventStream{
		Paths:   []string{dir},
		Latency: 300 * time.Millisecond,
		Device:  dev,
		Flags:   fsevents.FileEvents | fsevents.WatchRoot,
	}
	return nil
}

func (w *Watcher) Start() {
	if w.stream == nil {
		return
	}
	w.stream.Start()
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case events, ok := <-w.stream.Events:
			if !ok {
				return
			}
			for _, event := range events {
				w.handleEvent(event)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsevents.Event) {
	path := event.Path
	if len(path) > 0 && path[0] != '/' {
		path = "/" + path
	}
	if !immediateChild(w.dir, path) {
		return
	}

	switch {
	case event.Flags&fsevents.ItemRemoved != 0:
		send(w.eventCh, Event{Type: EventDeleted, Path: path})
	case event.Flags&fsevents.ItemRenamed != 0:
		// Move to Trash is a rename; a rename into the directory
		// also lands here and is ignored by callers for unknown paths
		send(w.eventCh, Event{Type: EventRenamed, Path: path})
	}
}

// Stop stops the watcher and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	if w.stream != nil {
		w.stream.Stop()
	}
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
