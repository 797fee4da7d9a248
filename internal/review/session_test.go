package review

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumipallolabs/dupedive/internal/model"
)

// recorder captures presenter notifications in call order
type recorder struct {
	calls     []string
	lastNames []string
	lastLeft  int
	errors    []ErrorKind
}

func (r *recorder) OnScanStarted() { r.calls = append(r.calls, "started") }
func (r *recorder) OnScanComplete(n int) { r.calls = append(r.calls, fmt.Sprintf("complete:%d", n)) }
func (r *recorder) OnFinished() { r.calls = append(r.calls, "finished") }
func (r *recorder) OnGroupPresented(names []string, remaining int) {
	r.lastNames = names
	r.lastLeft = remaining
	r.calls = append(r.calls, fmt.Sprintf("group:%s/%d", strings.Join(names, ","), remaining))
}
func (r *recorder) OnError(kind ErrorKind, detail string) {
	r.errors = append(r.errors, kind)
	r.calls = append(r.calls, "error:"+kind.String())
}

func (r *recorder) last() string {
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

// fakeRemover records removals and fails for configured paths
type fakeRemover struct {
	removed []string
	fail    map[string]error
}

func (f *fakeRemover) Remove(path string) error {
	if err, ok := f.fail[path]; ok {
		return err
	}
	f.removed = append(f.removed, path)
	return nil
}

func group(hash string, names ...string) *model.DuplicateGroup {
	g := &model.DuplicateGroup{Hash: model.ContentHash(hash)}
	for _, n := range names {
		g.Files = append(g.Files, model.FileRecord{Path: "/d/" + n, Name: n, Hash: g.Hash, Size: 10})
	}
	return g
}

func loaded(t *testing.T, groups ...*model.DuplicateGroup) (*Session, *recorder, *fakeRemover) {
	t.Helper()
	rec := &recorder{}
	rm := &fakeRemover{fail: map[string]error{}}
	s := NewSession(rec, rm)
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(groups); err != nil {
		t.Fatal(err)
	}
	return s, rec, rm
}

func TestLoadEmptyFinishes(t *testing.T) {
	s, rec, _ := loaded(t)
	if s.Phase() != PhaseFinished {
		t.Errorf("expected finished, got %s", s.Phase())
	}
	if rec.last() != "finished" {
		t.Errorf("expected finished notification, got %v", rec.calls)
	}
}

func TestLoadPresentsFirstGroup(t *testing.T) {
	s, rec, _ := loaded(t, group("1", "a", "b"), group("2", "c", "d"))

	if s.Phase() != PhasePresenting {
		t.Fatalf("expected presenting, got %s", s.Phase())
	}
	if rec.last() != "group:a,b/1" {
		t.Errorf("unexpected notification %q", rec.last())
	}
	if cur, ok := s.Current(); !ok || cur.Hash != "1" {
		t.Errorf("expected group 1 current, got %v", cur)
	}
}

func TestNextAdvancesThenFinishes(t *testing.T) {
	s, rec, rm := loaded(t, group("1", "a", "b"), group("2", "c", "d"))

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if rec.last() != "group:c,d/0" {
		t.Errorf("expected second group, got %q", rec.last())
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseFinished || rec.last() != "finished" {
		t.Errorf("expected finish, got %s / %v", s.Phase(), rec.calls)
	}
	if len(rm.removed) != 0 {
		t.Errorf("Next must not delete files, removed %v", rm.removed)
	}
}

func TestRemoveFromPairAutoAdvances(t *testing.T) {
	s, rec, rm := loaded(t, group("1", "a", "b"), group("2", "c", "d"))

	removed, err := s.Remove(0)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Name != "a" || len(rm.removed) != 1 || rm.removed[0] != "/d/a" {
		t.Errorf("expected /d/a removed, got %v / %v", removed, rm.removed)
	}
	if rec.last() != "group:c,d/0" {
		t.Errorf("expected auto-advance to next group, got %q", rec.last())
	}
}

func TestRemoveFromLargerGroupStays(t *testing.T) {
	s, rec, _ := loaded(t, group("1", "a", "b", "c"))

	if _, err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhasePresenting {
		t.Fatalf("expected still presenting, got %s", s.Phase())
	}
	if rec.last() != "group:a,c/0" {
		t.Errorf("expected shrunk group, got %q", rec.last())
	}
	cur, _ := s.Current()
	if cur.Hash != "1" || cur.Len() != 2 {
		t.Errorf("expected same group with 2 members, got %v", cur)
	}

	if _, err := s.Remove(0); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseFinished || rec.last() != "finished" {
		t.Errorf("expected finish after group drops to one, got %v", rec.calls)
	}
}

func TestRemoveFailureLeavesGroupUnchanged(t *testing.T) {
	s, rec, rm := loaded(t, group("1", "a", "b"))
	rm.fail["/d/a"] = fs.ErrPermission

	_, err := s.Remove(0)
	if !IsDeletionFailed(err) {
		t.Fatalf("expected DeletionError, got %v", err)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected wrapped permission error, got %v", err)
	}
	if len(rec.errors) != 1 || rec.errors[0] != DeletionFailed {
		t.Errorf("expected DeletionFailed notification, got %v", rec.errors)
	}

	cur, ok := s.Current()
	if !ok || cur.Len() != 2 {
		t.Errorf("group should still hold both files, got %v", cur)
	}
	if s.Phase() != PhasePresenting {
		t.Errorf("expected to stay presenting, got %s", s.Phase())
	}
}

func TestRemoveVanishedFileCountsAsRemoved(t *testing.T) {
	s, _, rm := loaded(t, group("1", "a", "b", "c"))
	rm.fail["/d/b"] = fs.ErrNotExist

	if _, err := s.Remove(1); err != nil {
		t.Fatalf("missing file should not be a failure: %v", err)
	}
	cur, _ := s.Current()
	if cur.Index("/d/b") >= 0 {
		t.Error("vanished file should be dropped from the group")
	}
}

func TestRemoveInvalidIndex(t *testing.T) {
	s, rec, _ := loaded(t, group("1", "a", "b"))

	if _, err := s.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := s.Remove(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if len(rec.errors) != 2 || rec.errors[0] != InvalidOperation {
		t.Errorf("expected InvalidOperation notifications, got %v", rec.errors)
	}
}

func TestOperationsOutsidePresenting(t *testing.T) {
	s := NewSession(&recorder{}, &fakeRemover{})

	if err := s.Next(); !errors.Is(err, ErrNotPresenting) {
		t.Errorf("Next on idle session: expected ErrNotPresenting, got %v", err)
	}
	if _, err := s.Remove(0); !errors.Is(err, ErrNotPresenting) {
		t.Errorf("Remove on idle session: expected ErrNotPresenting, got %v", err)
	}
	if err := s.End(); !errors.Is(err, ErrNotPresenting) {
		t.Errorf("End on idle session: expected ErrNotPresenting, got %v", err)
	}
}

func TestBeginRejectedWhileActive(t *testing.T) {
	s, _, _ := loaded(t, group("1", "a", "b"))
	if err := s.Begin(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase while presenting, got %v", err)
	}

	s.End()
	if err := s.Begin(); err != nil {
		t.Errorf("finished session should accept a new scan: %v", err)
	}
	if s.Remaining() != 0 {
		t.Errorf("new scan should start from an empty queue, got %d", s.Remaining())
	}
}

func TestAbortReturnsToIdle(t *testing.T) {
	s := NewSession(nil, nil)
	s.Begin()
	s.Abort()
	if s.Phase() != PhaseIdle {
		t.Errorf("expected idle after abort, got %s", s.Phase())
	}
}

func TestForgetCurrentAndQueued(t *testing.T) {
	s, rec, rm := loaded(t, group("1", "a", "b", "c"), group("2", "d", "e"), group("3", "f", "g"))

	if !s.Forget("/d/b") {
		t.Fatal("expected /d/b to be known")
	}
	if rec.last() != "group:a,c/2" {
		t.Errorf("expected current group re-presented, got %q", rec.last())
	}

	if !s.Forget("/d/e") {
		t.Fatal("expected /d/e to be known")
	}
	if s.Remaining() != 1 || rec.lastLeft != 1 {
		t.Errorf("queued pair should be retired, remaining %d / notified %d", s.Remaining(), rec.lastLeft)
	}

	if s.Forget("/d/zzz") {
		t.Error("unknown path should be ignored")
	}

	s.Forget("/d/a")
	if rec.last() != "group:f,g/0" {
		t.Errorf("current group without duplicates should advance, got %q", rec.last())
	}
	if len(rm.removed) != 0 {
		t.Errorf("Forget must not delete files, removed %v", rm.removed)
	}
}

func TestEndLeavesFilesInPlace(t *testing.T) {
	s, rec, rm := loaded(t, group("1", "a", "b"), group("2", "c", "d"))

	if err := s.End(); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseFinished || rec.last() != "finished" {
		t.Errorf("expected finished, got %v", rec.calls)
	}
	if len(rm.removed) != 0 {
		t.Errorf("End must not delete files, removed %v", rm.removed)
	}
}

func TestWorkedExampleOnDisk(t *testing.T) {
	tmp := t.TempDir()
	for name, content := range map[string]string{"a.txt": "hi", "b.txt": "hi", "c.txt": "bye"} {
		if err := os.WriteFile(filepath.Join(tmp, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	g := &model.DuplicateGroup{Hash: "hi", Files: []model.FileRecord{
		{Path: filepath.Join(tmp, "a.txt"), Name: "a.txt", Hash: "hi"},
		{Path: filepath.Join(tmp, "b.txt"), Name: "b.txt", Hash: "hi"},
	}}

	rec := &recorder{}
	s := NewSession(rec, OSRemover{})
	s.Begin()
	s.Load([]*model.DuplicateGroup{g})

	if _, err := s.Remove(0); err != nil {
		t.Fatal(err)
	}
	if rec.last() != "finished" {
		t.Errorf("expected finished, got %v", rec.calls)
	}
	if _, err := os.Stat(filepath.Join(tmp, "a.txt")); !os.IsNotExist(err) {
		t.Error("a.txt should be deleted")
	}
	for _, keep := range []string{"b.txt", "c.txt"} {
		if _, err := os.Stat(filepath.Join(tmp, keep)); err != nil {
			t.Errorf("%s should remain: %v", keep, err)
		}
	}
}
