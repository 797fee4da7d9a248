package core

import (
	"time"

	"github.com/lumipallolabs/dupedive/internal/model"
	"github.com/lumipallolabs/dupedive/internal/review"
	"github.com/lumipallolabs/dupedive/internal/scanner"
)

// ScanState holds the state of the most recent scan
type ScanState struct {
	Dir         string
	Running     bool
	StartTime   time.Time
	EndTime     time.Time
	FilesSeen   int64
	FilesHashed int64
	BytesHashed int64
	Skipped     int64
	CurrentPath string
	Result      *scanner.Result // nil until a scan succeeds
	Err         error
}

// IsScanning returns true while the scan task runs
func (s ScanState) IsScanning() bool {
	return s.Running
}

// Elapsed returns the scan duration so far, or in total once done
func (s ScanState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartTime).Truncate(time.Second)
}

// FreedState tracks space recovered from deletions
type FreedState struct {
	Session  int64 // Bytes freed this session
	Lifetime int64 // Bytes freed all time
	Files    int   // Files removed this session
}

// AppState holds the complete application state (read-only view)
type AppState struct {
	Phase     review.Phase
	Scan      ScanState
	Freed     FreedState
	Current   *model.DuplicateGroup // nil unless presenting
	Pending   []*model.DuplicateGroup
	Watching  bool
	Algorithm string
	WeakHash  bool // digest may collide and results are not byte-verified
}
