package model

import "time"

// ContentHash is the hex digest of a file's full content.
// The width depends on the algorithm that produced it.
type ContentHash string

// Short returns an abbreviated form for display
func (h ContentHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// FileID identifies the underlying file object on platforms that expose one.
// Zero on platforms without inode semantics.
type FileID struct {
	Dev   uint64
	Ino   uint64
	Links uint64
}

// IsZero reports whether no identity was recorded
func (id FileID) IsZero() bool {
	return id.Dev == 0 && id.Ino == 0
}

// HardLinked reports whether other directory entries share the same data
func (id FileID) HardLinked() bool {
	return id.Links > 1
}

// FileRecord is one successfully hashed file from a scan pass
type FileRecord struct {
	Path    string
	Name    string
	Hash    ContentHash
	Size    int64
	ModTime time.Time
	Kind    string // detected MIME type, empty if unknown
	ID      FileID
}

// ReclaimableSize returns the bytes freed by deleting this record.
// Hard-linked files keep their data alive through the other links.
func (r FileRecord) ReclaimableSize() int64 {
	if r.ID.HardLinked() {
		return 0
	}
	return r.Size
}
