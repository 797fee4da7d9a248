package ui

import (
	"fmt"

	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/review"
)

// reviewState records presenter notifications for rendering.
// The App holds it by pointer so every copy of the model sees the same
// state; callbacks only run inside Update.
type reviewState struct {
	scanning   bool
	groupCount int  // sets found by the last scan
	presented  bool // a set is on screen
	names      []string
	remaining  int
	finished   bool
	generation int // bumped on every presented set, resets the cursor

	errKind review.ErrorKind
	errMsg  string
}

var _ review.Presenter = (*reviewState)(nil)

func (s *reviewState) OnScanStarted() {
	s.scanning = true
	s.finished = false
	s.presented = false
	s.groupCount = 0
	s.names = nil
	s.remaining = 0
	s.clearError()
}

func (s *reviewState) OnScanComplete(groupCount int) {
	s.scanning = false
	s.groupCount = groupCount
	logging.Review.Printf("[UI] scan complete, %d sets", groupCount)
}

func (s *reviewState) OnGroupPresented(filenames []string, remaining int) {
	s.presented = true
	s.names = filenames
	s.remaining = remaining
	s.generation++
}

func (s *reviewState) OnFinished() {
	s.presented = false
	s.finished = true
	s.names = nil
	s.remaining = 0
}

func (s *reviewState) OnError(kind review.ErrorKind, detail string) {
	if kind == review.DirectoryUnavailable || kind == review.ScanCancelled {
		s.scanning = false
	}
	s.errKind = kind
	s.errMsg = detail
	logging.Review.Printf("[UI] %s: %s", kind, detail)
}

func (s *reviewState) clearError() {
	s.errMsg = ""
}

// errorText returns the last error for display, empty if none
func (s *reviewState) errorText() string {
	if s.errMsg == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", s.errKind, s.errMsg)
}

// setsLeft counts the presented set plus those queued after it
func (s *reviewState) setsLeft() int {
	if !s.presented {
		return 0
	}
	return s.remaining + 1
}
