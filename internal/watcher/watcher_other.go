//go:build !darwin && !windows

package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/lumipallolabs/dupedive/internal/logging"
)

// Watcher watches a directory using inotify/kqueue via fsnotify
type Watcher struct {
	fsw     *fsnotify.Watcher
	dir     string
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates a new filesystem watcher
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:     fsw,
		eventCh: make(chan Event, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel for receiving filesystem events
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Watch sets the directory to watch. fsnotify watches are not recursive.
func (w *Watcher) Watch(dir string) error {
	w.dir = dir
	return w.fsw.Add(dir)
}

// Start begins delivering events
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Debug.Printf("[Watcher] %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !immediateChild(w.dir, event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove):
		send(w.eventCh, Event{Type: EventDeleted, Path: event.Name})
	case event.Has(fsnotify.Rename):
		send(w.eventCh, Event{Type: EventRenamed, Path: event.Name})
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
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.eventCh)
	return err
}
