// Package review holds the duplicate review workflow: a queue of groups,
// one of which is presented at a time, with advance and delete operations.
package review

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/model"
)

var (
	// ErrNotPresenting is returned by operations that need a presented group
	ErrNotPresenting = errors.New("no duplicate group is being presented")

	// ErrIndexOutOfRange is returned by Remove for an invalid member index
	ErrIndexOutOfRange = errors.New("file index out of range")

	// ErrWrongPhase is returned by transitions attempted from the wrong phase
	ErrWrongPhase = errors.New("operation not valid in current phase")
)

// Phase is the session lifecycle state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhasePresenting
	PhaseFinished
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhasePresenting:
		return "presenting"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Active reports whether a scan or review is under way
func (p Phase) Active() bool {
	return p == PhaseScanning || p == PhasePresenting
}

// Session presents duplicate groups one at a time.
// It is not safe for concurrent use; the controller serializes access.
type Session struct {
	phase     Phase
	current   *model.DuplicateGroup
	pending   *model.GroupQueue
	presenter Presenter
	remover   Remover
}

// NewSession creates an idle session
func NewSession(p Presenter, r Remover) *Session {
	if p == nil {
		p = NopPresenter{}
	}
	if r == nil {
		r = OSRemover{}
	}
	return &Session{
		presenter: p,
		remover:   r,
		pending:   model.NewGroupQueue(nil),
	}
}

// Phase returns the current phase
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns a copy of the presented group
func (s *Session) Current() (*model.DuplicateGroup, bool) {
	if s.phase != PhasePresenting || s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// Remaining returns the number of groups queued after the current one
func (s *Session) Remaining() int {
	return s.pending.Len()
}

// Pending returns copies of the queued groups
func (s *Session) Pending() []*model.DuplicateGroup {
	return s.pending.Groups()
}

// Begin moves an idle or finished session into scanning
func (s *Session) Begin() error {
	if s.phase.Active() {
		return ErrWrongPhase
	}
	s.phase = PhaseScanning
	s.current = nil
	s.pending = model.NewGroupQueue(nil)
	return nil
}

// Abort returns a scanning session to idle after a failed scan
func (s *Session) Abort() {
	if s.phase == PhaseScanning {
		s.phase = PhaseIdle
	}
}

// Load takes ownership of the groups from a completed scan and presents
// the first one, or finishes straight away when there are none.
func (s *Session) Load(groups []*model.DuplicateGroup) error {
	if s.phase != PhaseScanning && s.phase != PhaseIdle {
		return ErrWrongPhase
	}
	s.pending = model.NewGroupQueue(groups)
	logging.Review.Printf("[Review] loaded %d groups", s.pending.Len())
	s.advance()
	return nil
}

// Next discards the current group without deleting anything
func (s *Session) Next() error {
	if s.phase != PhasePresenting {
		s.presenter.OnError(InvalidOperation, "next: "+ErrNotPresenting.Error())
		return ErrNotPresenting
	}
	s.advance()
	return nil
}

// Remove deletes the file at index of the current group.
// On failure the group is left unchanged and a DeletionError is returned.
func (s *Session) Remove(index int) (model.FileRecord, error) {
	if s.phase != PhasePresenting {
		s.presenter.OnError(InvalidOperation, "remove: "+ErrNotPresenting.Error())
		return model.FileRecord{}, ErrNotPresenting
	}
	if index < 0 || index >= s.current.Len() {
		s.presenter.OnError(InvalidOperation, fmt.Sprintf("remove: index %d of %d", index, s.current.Len()))
		return model.FileRecord{}, ErrIndexOutOfRange
	}

	target := s.current.Files[index]
	if err := s.remover.Remove(target.Path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			derr := &DeletionError{Path: target.Path, Err: err}
			logging.Review.Printf("[Review] %v", derr)
			s.presenter.OnError(DeletionFailed, derr.Error())
			return model.FileRecord{}, derr
		}
		// Already gone; the record is stale either way
		logging.Review.Printf("[Review] %s vanished before removal", target.Path)
	}

	removed := s.current.RemoveAt(index)
	logging.Review.Printf("[Review] removed %s", removed.Path)
	s.settle()
	return removed, nil
}

// Forget drops a file deleted outside the session.
// Returns true if the path belonged to the current or a queued group.
func (s *Session) Forget(path string) bool {
	if s.phase != PhasePresenting {
		return false
	}

	if idx := s.current.Index(path); idx >= 0 {
		s.current.RemoveAt(idx)
		logging.Review.Printf("[Review] forgot %s from current group", path)
		s.settle()
		return true
	}

	if s.pending.Forget(path) {
		logging.Review.Printf("[Review] forgot %s from queued group", path)
		// Remaining count may have changed
		s.present()
		return true
	}
	return false
}

// End finishes the review early, leaving all files in place
func (s *Session) End() error {
	if s.phase != PhasePresenting {
		return ErrNotPresenting
	}
	s.current = nil
	s.pending = model.NewGroupQueue(nil)
	s.finish()
	return nil
}

// settle re-presents the current group, or advances once it no longer
// holds a duplicate
func (s *Session) settle() {
	if s.current.IsDuplicate() {
		s.present()
		return
	}
	s.advance()
}

// advance pops the next group or finishes the session
func (s *Session) advance() {
	next, ok := s.pending.PopFront()
	if !ok {
		s.current = nil
		s.finish()
		return
	}
	s.current = next
	s.phase = PhasePresenting
	s.present()
}

func (s *Session) present() {
	s.presenter.OnGroupPresented(s.current.Names(), s.pending.Len())
}

func (s *Session) finish() {
	s.phase = PhaseFinished
	logging.Review.Printf("[Review] finished")
	s.presenter.OnFinished()
}
