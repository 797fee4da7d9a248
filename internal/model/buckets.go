package model

// Buckets indexes records by content hash.
// Hashes keep the order in which they were first added.
type Buckets struct {
	order   []ContentHash
	records map[ContentHash][]FileRecord
}

// NewBuckets creates an empty index
func NewBuckets() *Buckets {
	return &Buckets{records: make(map[ContentHash][]FileRecord)}
}

// Add appends rec to the bucket for its hash
func (b *Buckets) Add(rec FileRecord) {
	if _, ok := b.records[rec.Hash]; !ok {
		b.order = append(b.order, rec.Hash)
	}
	b.records[rec.Hash] = append(b.records[rec.Hash], rec)
}

// Len returns the number of distinct hashes
func (b *Buckets) Len() int {
	return len(b.order)
}

// Records returns the bucket for h
func (b *Buckets) Records(h ContentHash) []FileRecord {
	return b.records[h]
}

// Total returns the number of indexed records
func (b *Buckets) Total() int {
	n := 0
	for _, recs := range b.records {
		n += len(recs)
	}
	return n
}

// DeriveGroups returns one group per bucket holding at least two records.
// Member order follows insertion order within each bucket.
func DeriveGroups(b *Buckets) []*DuplicateGroup {
	var groups []*DuplicateGroup
	for _, h := range b.order {
		recs := b.Records(h)
		if len(recs) < 2 {
			continue
		}
		files := make([]FileRecord, len(recs))
		copy(files, recs)
		groups = append(groups, &DuplicateGroup{Hash: h, Files: files})
	}
	return groups
}
