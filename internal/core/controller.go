package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lumipallolabs/dupedive/internal/config"
	"github.com/lumipallolabs/dupedive/internal/hasher"
	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/model"
	"github.com/lumipallolabs/dupedive/internal/review"
	"github.com/lumipallolabs/dupedive/internal/scanner"
	"github.com/lumipallolabs/dupedive/internal/stats"
	"github.com/lumipallolabs/dupedive/internal/watcher"
)

// ErrBusy is returned by StartScan while a scan or review is active
var ErrBusy = errors.New("a scan or review is already in progress")

// Options configures a Controller
type Options struct {
	Workers   int
	Hasher    *hasher.Hasher
	Verify    bool
	SkipEmpty bool
	Watch     bool           // watch the directory for external deletions during review
	Remover   review.Remover // nil deletes from disk
	Stats     *stats.Manager // nil disables persisted stats
}

// OptionsFromConfig builds controller options from loaded settings
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	h, err := cfg.Hasher()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Workers:   cfg.Workers,
		Hasher:    h,
		Verify:    cfg.Verify,
		SkipEmpty: cfg.SkipEmpty,
		Watch:     cfg.Watch,
	}, nil
}

// Controller manages the core application logic without UI dependencies.
// Presenter callbacks are delivered on the goroutine calling into the
// controller, after its lock is released.
type Controller struct {
	mu sync.RWMutex

	opts      Options
	presenter review.Presenter
	session   *review.Session
	outbox    outbox

	// State
	scan  ScanState
	freed FreedState

	// Internal services
	cancel       context.CancelFunc
	watcher      *watcher.Watcher
	statsManager *stats.Manager

	// done is closed by Stop; background sends give up once it is
	done     chan struct{}
	stopOnce sync.Once
	tasks    sync.WaitGroup
}

// NewController creates a new application controller
func NewController(opts Options, p review.Presenter) *Controller {
	if p == nil {
		p = review.NopPresenter{}
	}
	if opts.Hasher == nil {
		opts.Hasher, _ = hasher.New("")
	}

	c := &Controller{
		opts:         opts,
		presenter:    p,
		statsManager: opts.Stats,
		done:         make(chan struct{}),
	}
	c.session = review.NewSession(&c.outbox, opts.Remover)
	if c.statsManager != nil {
		c.freed.Lifetime = c.statsManager.FreedLifetime()
	}
	return c
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cur, _ := c.session.Current()
	return AppState{
		Phase:     c.session.Phase(),
		Scan:      c.scan,
		Freed:     c.freed,
		Current:   cur,
		Pending:   c.session.Pending(),
		Watching:  c.watcher != nil,
		Algorithm: string(c.opts.Hasher.Algorithm()),
		WeakHash:  !c.opts.Hasher.Strong() && !c.opts.Verify,
	}
}

// Phase returns the review session phase
func (c *Controller) Phase() review.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Phase()
}

// CurrentGroup returns a copy of the presented group
func (c *Controller) CurrentGroup() (*model.DuplicateGroup, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Current()
}

// PendingGroups returns copies of the groups queued after the current one
func (c *Controller) PendingGroups() []*model.DuplicateGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Pending()
}

// Remaining returns the number of groups queued after the current one
func (c *Controller) Remaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Remaining()
}

// ScanState returns the current scan state
func (c *Controller) ScanState() ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scan
}

// FreedState returns the current freed space state
func (c *Controller) FreedState() FreedState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}

// StartScan begins scanning dir in the background.
// The returned channel must be drained and each event passed to Dispatch.
func (c *Controller) StartScan(ctx context.Context, dir string) (<-chan Event, error) {
	c.mu.Lock()

	if err := c.session.Begin(); err != nil {
		c.outbox.OnError(review.ScanInProgress, fmt.Sprintf("cannot scan %s while %s", dir, c.session.Phase()))
		c.unlockAndDeliver()
		return nil, ErrBusy
	}

	c.stopWatcherLocked()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.scan = ScanState{
		Dir:       dir,
		Running:   true,
		StartTime: time.Now(),
	}

	sc := scanner.NewDirScanner(scanner.Options{
		Workers:   c.opts.Workers,
		Hasher:    c.opts.Hasher,
		Verify:    c.opts.Verify,
		SkipEmpty: c.opts.SkipEmpty,
	})

	c.mu.Unlock()

	// Create event channel for this scan
	eventCh := make(chan Event, 100)

	c.tasks.Add(1)
	go c.runScan(ctx, sc, dir, eventCh)

	return eventCh, nil
}

// runScan executes the scan in a goroutine. It only reports through
// eventCh and never touches the session.
func (c *Controller) runScan(ctx context.Context, sc scanner.Scanner, dir string, eventCh chan Event) {
	defer c.tasks.Done()
	defer close(eventCh)

	logging.Debug.Printf("[Controller] Starting scan of %s", dir)
	eventCh <- ScanStartedEvent{Path: dir}

	// Listen for progress in separate goroutine
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for progress := range sc.Progress() {
			c.mu.Lock()
			c.scan.FilesSeen = progress.FilesSeen
			c.scan.FilesHashed = progress.FilesHashed
			c.scan.BytesHashed = progress.BytesHashed
			c.scan.Skipped = progress.Skipped
			c.scan.CurrentPath = progress.CurrentPath
			c.mu.Unlock()

			select {
			case eventCh <- ScanProgressEvent{Progress: progress}:
			default:
				// Foreground is behind; state above is still current
			}
		}
	}()

	result, err := sc.Scan(ctx, dir)
	<-progressDone

	if err != nil {
		logging.Debug.Printf("[Controller] Scan of %s failed: %v", dir, err)
	} else {
		logging.Debug.Printf("[Controller] Scan complete: %d groups, %d files, %d skipped",
			len(result.Groups), result.FilesRead, result.Skipped)
	}
	select {
	case eventCh <- ScanCompletedEvent{Result: result, Err: err}:
	case <-c.done:
		logging.Debug.Printf("[Controller] Stopped before scan of %s was delivered", dir)
	}
}

// Dispatch applies an event on the foreground and notifies the presenter.
// It returns the scan error carried by a ScanCompletedEvent.
func (c *Controller) Dispatch(ev Event) error {
	c.mu.Lock()

	var err error
	switch e := ev.(type) {
	case ScanStartedEvent:
		c.outbox.OnScanStarted()

	case ScanProgressEvent:
		// Already reflected in ScanState

	case ScanCompletedEvent:
		err = c.completeScanLocked(e)

	case ExternalDeletionEvent:
		if c.session.Forget(e.Path) {
			logging.Debug.Printf("[Controller] %s %s outside review", e.Path, e.Type)
		}
		c.settleLocked()
	}

	c.unlockAndDeliver()
	return err
}

// completeScanLocked hands the scan result to the session
func (c *Controller) completeScanLocked(e ScanCompletedEvent) error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.scan.Running = false
	c.scan.EndTime = time.Now()
	c.scan.Err = e.Err

	if e.Err != nil {
		c.session.Abort()
		switch {
		case errors.Is(e.Err, context.Canceled), errors.Is(e.Err, context.DeadlineExceeded):
			c.outbox.OnError(review.ScanCancelled, e.Err.Error())
		default:
			c.outbox.OnError(review.DirectoryUnavailable, e.Err.Error())
		}
		return e.Err
	}

	c.scan.Result = e.Result
	c.scan.Dir = e.Result.Dir
	if c.statsManager != nil {
		c.statsManager.SetLastDirectory(e.Result.Dir)
	}

	c.outbox.OnScanComplete(len(e.Result.Groups))
	if err := c.session.Load(e.Result.Groups); err != nil {
		return err
	}
	c.settleLocked()
	return nil
}

// Next discards the presented group without deleting anything
func (c *Controller) Next() error {
	c.mu.Lock()
	err := c.session.Next()
	c.settleLocked()
	c.unlockAndDeliver()
	return err
}

// Remove deletes the file at index of the presented group
func (c *Controller) Remove(index int) (model.FileRecord, error) {
	c.mu.Lock()

	rec, err := c.session.Remove(index)
	if err == nil {
		size := rec.ReclaimableSize()
		c.freed.Session += size
		c.freed.Lifetime += size
		c.freed.Files++
		if c.statsManager != nil {
			c.statsManager.AddFreed(size)
		}
		logging.Debug.Printf("[Controller] freed %d bytes (session: %d, lifetime: %d)",
			size, c.freed.Session, c.freed.Lifetime)
	}
	c.settleLocked()

	c.unlockAndDeliver()
	return rec, err
}

// EndReview finishes the review early, leaving remaining files in place
func (c *Controller) EndReview() error {
	c.mu.Lock()
	err := c.session.End()
	c.settleLocked()
	c.unlockAndDeliver()
	return err
}

// Cancel aborts a running scan. Returns false if no scan is running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return false
	}
	logging.Debug.Printf("[Controller] Cancelling scan of %s", c.scan.Dir)
	c.cancel()
	return true
}

// Run scans dir and applies every event before returning.
// The session is presenting or finished afterwards unless the scan failed.
func (c *Controller) Run(ctx context.Context, dir string) error {
	events, err := c.StartScan(ctx, dir)
	if err != nil {
		return err
	}
	var scanErr error
	for ev := range events {
		if err := c.Dispatch(ev); err != nil {
			scanErr = err
		}
	}
	return scanErr
}

// StartWatching starts the filesystem watcher for the reviewed directory.
// Returns a nil channel when watching is disabled or nothing is under review.
func (c *Controller) StartWatching() (<-chan Event, error) {
	c.mu.Lock()

	if !c.opts.Watch || c.session.Phase() != review.PhasePresenting || c.scan.Result == nil {
		c.mu.Unlock()
		return nil, nil
	}
	watchPath := c.scan.Result.Dir

	// Stop existing watcher
	c.stopWatcherLocked()

	w, err := watcher.New()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if err := w.Watch(watchPath); err != nil {
		_ = w.Stop()
		c.mu.Unlock()
		return nil, err
	}
	c.watcher = w
	c.mu.Unlock()

	w.Start()
	logging.Debug.Printf("Filesystem watcher started for %s", watchPath)

	eventCh := make(chan Event, 100)
	go c.watchLoop(w, eventCh)

	return eventCh, nil
}

// watchLoop forwards watcher events until the watcher stops
func (c *Controller) watchLoop(w *watcher.Watcher, eventCh chan Event) {
	defer close(eventCh)

	for event := range w.Events() {
		select {
		case eventCh <- ExternalDeletionEvent{Path: event.Path, Type: event.Type}:
		case <-c.done:
			return
		}
	}
}

// Stop cleans up resources and waits for a running scan to exit.
// Events not yet drained are abandoned.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.stopWatcherLocked()
	if c.statsManager != nil {
		if err := c.statsManager.Close(); err != nil {
			logging.Debug.Printf("Failed to save stats: %v", err)
		}
	}
	c.stopOnce.Do(func() { close(c.done) })
	c.mu.Unlock()

	// runScan's progress loop takes the lock, so wait outside it
	c.tasks.Wait()
}

// settleLocked releases the watcher once nothing is left to review
func (c *Controller) settleLocked() {
	if c.session.Phase() != review.PhasePresenting {
		c.stopWatcherLocked()
	}
}

func (c *Controller) stopWatcherLocked() {
	if c.watcher == nil {
		return
	}
	_ = c.watcher.Stop()
	c.watcher = nil
	logging.Debug.Printf("Filesystem watcher stopped")
}

// unlockAndDeliver releases the lock and then hands queued
// notifications to the presenter in order
func (c *Controller) unlockAndDeliver() {
	notes := c.outbox.take()
	p := c.presenter
	c.mu.Unlock()

	for _, note := range notes {
		note(p)
	}
}
