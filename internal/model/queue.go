package model

// GroupQueue is a FIFO of duplicate groups awaiting review
type GroupQueue struct {
	groups []*DuplicateGroup
}

// NewGroupQueue creates a queue holding groups in the given order
func NewGroupQueue(groups []*DuplicateGroup) *GroupQueue {
	q := &GroupQueue{groups: make([]*DuplicateGroup, 0, len(groups))}
	for _, g := range groups {
		q.Push(g)
	}
	return q
}

// Push appends a group. Groups with fewer than two members are dropped.
func (q *GroupQueue) Push(g *DuplicateGroup) {
	if g == nil || !g.IsDuplicate() {
		return
	}
	q.groups = append(q.groups, g)
}

// PopFront removes and returns the oldest group
func (q *GroupQueue) PopFront() (*DuplicateGroup, bool) {
	if len(q.groups) == 0 {
		return nil, false
	}
	g := q.groups[0]
	q.groups[0] = nil
	q.groups = q.groups[1:]
	return g, true
}

// IsEmpty reports whether no groups are queued
func (q *GroupQueue) IsEmpty() bool {
	return len(q.groups) == 0
}

// Len returns the number of queued groups
func (q *GroupQueue) Len() int {
	return len(q.groups)
}

// Groups returns copies of the queued groups in order
func (q *GroupQueue) Groups() []*DuplicateGroup {
	out := make([]*DuplicateGroup, len(q.groups))
	for i, g := range q.groups {
		out[i] = g.Clone()
	}
	return out
}

// Forget drops path from whichever queued group holds it.
// A group left with fewer than two members is retired.
// Returns true if the queue changed.
func (q *GroupQueue) Forget(path string) bool {
	for i, g := range q.groups {
		idx := g.Index(path)
		if idx < 0 {
			continue
		}
		g.RemoveAt(idx)
		if !g.IsDuplicate() {
			q.groups = append(q.groups[:i], q.groups[i+1:]...)
		}
		return true
	}
	return false
}
