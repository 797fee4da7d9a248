package model

import "sort"

// DuplicateGroup is an ordered set of files sharing one ContentHash
type DuplicateGroup struct {
	Hash  ContentHash
	Files []FileRecord
}

// Len returns the number of members
func (g *DuplicateGroup) Len() int {
	return len(g.Files)
}

// IsDuplicate reports whether the group still holds at least two members
func (g *DuplicateGroup) IsDuplicate() bool {
	return len(g.Files) >= 2
}

// Paths returns member paths in group order
func (g *DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

// Names returns member file names in group order
func (g *DuplicateGroup) Names() []string {
	names := make([]string, len(g.Files))
	for i, f := range g.Files {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of path in the group, or -1
func (g *DuplicateGroup) Index(path string) int {
	for i, f := range g.Files {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// RemoveAt drops the member at i and returns it
func (g *DuplicateGroup) RemoveAt(i int) FileRecord {
	rec := g.Files[i]
	g.Files = append(g.Files[:i:i], g.Files[i+1:]...)
	return rec
}

// Size returns the size of one copy of the content
func (g *DuplicateGroup) Size() int64 {
	if len(g.Files) == 0 {
		return 0
	}
	return g.Files[0].Size
}

// WastedBytes returns bytes reclaimable by keeping a single member
func (g *DuplicateGroup) WastedBytes() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	var total int64
	for _, f := range g.Files[1:] {
		total += f.ReclaimableSize()
	}
	return total
}

// Clone returns a deep copy that shares nothing with g
func (g *DuplicateGroup) Clone() *DuplicateGroup {
	files := make([]FileRecord, len(g.Files))
	copy(files, g.Files)
	return &DuplicateGroup{Hash: g.Hash, Files: files}
}

// SortByWasted sorts groups by wasted bytes descending, then by hash.
// Groups that tie on both keep their relative order.
func SortByWasted(groups []*DuplicateGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		wi, wj := groups[i].WastedBytes(), groups[j].WastedBytes()
		if wi != wj {
			return wi > wj
		}
		return groups[i].Hash < groups[j].Hash
	})
}
