package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lumipallolabs/dupedive/internal/hasher"
	"github.com/lumipallolabs/dupedive/internal/model"
	"github.com/lumipallolabs/dupedive/internal/review"
	"github.com/lumipallolabs/dupedive/internal/scanner"
	"github.com/lumipallolabs/dupedive/internal/stats"
)

// recorder captures presenter notifications in call order
type recorder struct {
	calls  []string
	errors []review.ErrorKind

	// onGroup runs inside OnGroupPresented when set
	onGroup func()
}

func (r *recorder) OnScanStarted() { r.calls = append(r.calls, "started") }
func (r *recorder) OnFinished() { r.calls = append(r.calls, "finished") }

func (r *recorder) OnScanComplete(n int) {
	r.calls = append(r.calls, fmt.Sprintf("complete:%d", n))
}

func (r *recorder) OnGroupPresented(names []string, remaining int) {
	r.calls = append(r.calls, fmt.Sprintf("group:%s/%d", strings.Join(names, ","), remaining))
	if r.onGroup != nil {
		r.onGroup()
	}
}

func (r *recorder) OnError(kind review.ErrorKind, detail string) {
	r.errors = append(r.errors, kind)
	r.calls = append(r.calls, "error:"+kind.String())
}

func (r *recorder) last() string {
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

type failingRemover struct{ err error }

func (f failingRemover) Remove(string) error { return f.err }

func populate(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRunRemoveFinishes(t *testing.T) {
	dir := populate(t, map[string]string{"a.txt": "hi", "b.txt": "hi", "c.txt": "bye"})
	rec := &recorder{}
	c := NewController(Options{Workers: 2}, rec)
	defer c.Stop()

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"started", "complete:1", "group:a.txt,b.txt/0"}
	if strings.Join(rec.calls, " ") != strings.Join(want, " ") {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}

	removed, err := c.Remove(0)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.Name != "a.txt" {
		t.Errorf("removed %s, want a.txt", removed.Name)
	}
	if rec.last() != "finished" || c.Phase() != review.PhaseFinished {
		t.Errorf("expected finished, got %v", rec.calls)
	}
	if exists(filepath.Join(dir, "a.txt")) {
		t.Error("a.txt should be deleted")
	}
	if !exists(filepath.Join(dir, "b.txt")) || !exists(filepath.Join(dir, "c.txt")) {
		t.Error("b.txt and c.txt should remain")
	}
}

func TestThreeIdenticalFiles(t *testing.T) {
	dir := populate(t, map[string]string{
		"one": "same", "two": "same", "three": "same", "other": "different",
	})
	rec := &recorder{}
	c := NewController(Options{}, rec)
	defer c.Stop()

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	cur, ok := c.CurrentGroup()
	if !ok || cur.Len() != 3 {
		t.Fatalf("expected one group of 3, got %v", cur)
	}
	if res := c.ScanState().Result; res.FilesRead != 4 || res.Unique != 1 {
		t.Errorf("FilesRead=%d Unique=%d", res.FilesRead, res.Unique)
	}

	if _, err := c.Remove(0); err != nil {
		t.Fatal(err)
	}
	if cur, _ := c.CurrentGroup(); cur.Len() != 2 {
		t.Errorf("expected group of 2 after one removal, got %d", cur.Len())
	}
	if _, err := c.Remove(0); err != nil {
		t.Fatal(err)
	}
	if c.Phase() != review.PhaseFinished {
		t.Errorf("expected finished, got %s", c.Phase())
	}

	freed := c.FreedState()
	if freed.Session != 8 || freed.Files != 2 {
		t.Errorf("freed = %+v, want 8 bytes over 2 files", freed)
	}
}

func TestNoDuplicatesFinishesImmediately(t *testing.T) {
	dir := populate(t, map[string]string{"a": "1", "b": "2"})
	rec := &recorder{}
	c := NewController(Options{}, rec)

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if strings.Join(rec.calls, " ") != "started complete:0 finished" {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestSecondScanRejected(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x"})
	rec := &recorder{}
	c := NewController(Options{}, rec)

	events, err := c.StartScan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.StartScan(context.Background(), dir); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy during scan, got %v", err)
	}
	for ev := range events {
		c.Dispatch(ev)
	}

	// Still busy while the review is open
	if _, err := c.StartScan(context.Background(), dir); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy during review, got %v", err)
	}
	if len(rec.errors) != 2 || rec.errors[0] != review.ScanInProgress {
		t.Errorf("expected ScanInProgress notifications, got %v", rec.errors)
	}

	if err := c.EndReview(); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background(), dir); err != nil {
		t.Errorf("rescan after review should be allowed: %v", err)
	}
}

func TestCancelledScan(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x"})
	rec := &recorder{}
	c := NewController(Options{}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.last() != "error:scan cancelled" {
		t.Errorf("expected ScanCancelled, got %v", rec.calls)
	}
	if c.Phase() != review.PhaseIdle {
		t.Errorf("expected idle after cancel, got %s", c.Phase())
	}
	if c.Cancel() {
		t.Error("Cancel should report no running scan")
	}
}

func TestMissingDirectory(t *testing.T) {
	rec := &recorder{}
	c := NewController(Options{}, rec)

	err := c.Run(context.Background(), filepath.Join(t.TempDir(), "gone"))
	if !scanner.IsDirectoryUnavailable(err) {
		t.Fatalf("expected DirectoryError, got %v", err)
	}
	if len(rec.errors) != 1 || rec.errors[0] != review.DirectoryUnavailable {
		t.Errorf("expected DirectoryUnavailable, got %v", rec.errors)
	}
	if c.Phase() != review.PhaseIdle {
		t.Errorf("expected idle, got %s", c.Phase())
	}
	if c.ScanState().IsScanning() {
		t.Error("scan should not be running")
	}
}

func TestRemoveFailureKeepsGroup(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x"})
	rec := &recorder{}
	c := NewController(Options{Remover: failingRemover{err: fs.ErrPermission}}, rec)

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Remove(0); !review.IsDeletionFailed(err) {
		t.Fatalf("expected DeletionError, got %v", err)
	}
	if rec.last() != "error:deletion failed" {
		t.Errorf("expected DeletionFailed notification, got %v", rec.calls)
	}
	if cur, ok := c.CurrentGroup(); !ok || cur.Len() != 2 {
		t.Errorf("group should be unchanged, got %v", cur)
	}
	if c.FreedState().Session != 0 {
		t.Error("failed removal must not count as freed")
	}
}

func TestExternalDeletion(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x", "c": "y", "d": "y"})
	rec := &recorder{}
	c := NewController(Options{}, rec)

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	cur, _ := c.CurrentGroup()
	c.Dispatch(ExternalDeletionEvent{Path: cur.Files[0].Path})

	next, ok := c.CurrentGroup()
	if !ok || next.Hash == cur.Hash {
		t.Fatalf("expected advance to the other group, got %v", next)
	}
	if rec.last() != fmt.Sprintf("group:%s/0", strings.Join(next.Names(), ",")) {
		t.Errorf("unexpected notification %q", rec.last())
	}

	// Unknown paths are ignored
	c.Dispatch(ExternalDeletionEvent{Path: filepath.Join(dir, "zzz")})
	if c.Phase() != review.PhasePresenting {
		t.Errorf("unknown path changed phase to %s", c.Phase())
	}
}

func TestPresenterMayQueryController(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x"})
	rec := &recorder{}
	c := NewController(Options{}, rec)

	var seen *model.DuplicateGroup
	rec.onGroup = func() {
		seen, _ = c.CurrentGroup()
	}

	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if seen == nil || seen.Len() != 2 {
		t.Errorf("presenter should see the presented group, got %v", seen)
	}
}

func TestStatsPersisted(t *testing.T) {
	dir := populate(t, map[string]string{"a": "12345", "b": "12345"})
	path := filepath.Join(t.TempDir(), "stats.json")
	mgr := stats.NewManagerAt(path)

	c := NewController(Options{Stats: mgr}, nil)
	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Remove(1); err != nil {
		t.Fatal(err)
	}
	c.Stop()

	reloaded := stats.NewManagerAt(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if reloaded.FreedLifetime() != 5 {
		t.Errorf("FreedLifetime = %d, want 5", reloaded.FreedLifetime())
	}
	if reloaded.LastDirectory() == "" {
		t.Error("last directory should be recorded")
	}
}

func TestStartWatchingDisabled(t *testing.T) {
	dir := populate(t, map[string]string{"a": "x", "b": "x"})
	c := NewController(Options{Watch: false}, nil)
	if err := c.Run(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	ch, err := c.StartWatching()
	if ch != nil || err != nil {
		t.Errorf("expected no watcher, got %v, %v", ch, err)
	}
}

func TestStateFlagsWeakHash(t *testing.T) {
	crc, err := hasher.New("crc32")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		opts Options
		weak bool
	}{
		{Options{}, false},
		{Options{Hasher: crc}, true},
		{Options{Hasher: crc, Verify: true}, false},
	}
	for _, tc := range cases {
		c := NewController(tc.opts, nil)
		if got := c.State().WeakHash; got != tc.weak {
			t.Errorf("%s verify=%v: WeakHash = %v, want %v", c.State().Algorithm, tc.opts.Verify, got, tc.weak)
		}
		c.Stop()
	}
}

func TestStopWithUndrainedEvents(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 500; i++ {
		files[fmt.Sprintf("f%03d", i)] = fmt.Sprintf("%d", i%50)
	}
	dir := populate(t, files)

	c := NewController(Options{Workers: 1}, nil)
	events, err := c.StartScan(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	// Let progress fill the buffer while nobody drains it
	deadline := time.Now().Add(5 * time.Second)
	for len(events) < cap(events) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop blocked on an undrained scan")
	}

	// The scan goroutine exited, so the channel is closed once emptied
	for range events {
	}
}
