package model

import "testing"

func rec(name string, hash ContentHash, size int64) FileRecord {
	return FileRecord{Path: "/d/" + name, Name: name, Hash: hash, Size: size}
}

func TestDeriveGroupsKeepsOnlyDuplicates(t *testing.T) {
	b := NewBuckets()
	b.Add(rec("a.txt", "h1", 2))
	b.Add(rec("c.txt", "h2", 3))
	b.Add(rec("b.txt", "h1", 2))

	groups := DeriveGroups(b)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	names := groups[0].Names()
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Errorf("expected [a.txt b.txt] in insertion order, got %v", names)
	}
	if b.Total() != 3 {
		t.Errorf("expected 3 indexed records, got %d", b.Total())
	}
}

func TestDeriveGroupsDoesNotAliasBuckets(t *testing.T) {
	b := NewBuckets()
	b.Add(rec("a", "h", 1))
	b.Add(rec("b", "h", 1))

	groups := DeriveGroups(b)
	groups[0].RemoveAt(0)

	if len(b.Records("h")) != 2 {
		t.Error("mutating a derived group changed the bucket")
	}
}

func TestDeriveGroupsEmpty(t *testing.T) {
	if groups := DeriveGroups(NewBuckets()); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestWastedBytes(t *testing.T) {
	g := &DuplicateGroup{Hash: "h", Files: []FileRecord{
		rec("a", "h", 100),
		rec("b", "h", 100),
		rec("c", "h", 100),
	}}
	if got := g.WastedBytes(); got != 200 {
		t.Errorf("expected 200 wasted bytes, got %d", got)
	}

	g.Files[2].ID = FileID{Dev: 1, Ino: 9, Links: 2}
	if got := g.WastedBytes(); got != 100 {
		t.Errorf("hard-linked member should not count, got %d", got)
	}
}

func TestRemoveAtAndClone(t *testing.T) {
	g := &DuplicateGroup{Hash: "h", Files: []FileRecord{rec("a", "h", 1), rec("b", "h", 1), rec("c", "h", 1)}}
	clone := g.Clone()

	removed := g.RemoveAt(1)
	if removed.Name != "b" {
		t.Errorf("expected to remove b, got %s", removed.Name)
	}
	if g.Len() != 2 || g.Index("/d/c") != 1 {
		t.Errorf("unexpected group after removal: %v", g.Names())
	}
	if clone.Len() != 3 {
		t.Errorf("clone should be unaffected, got %d members", clone.Len())
	}
}

func TestSortByWasted(t *testing.T) {
	small := &DuplicateGroup{Hash: "s", Files: []FileRecord{rec("a", "s", 1), rec("b", "s", 1)}}
	large := &DuplicateGroup{Hash: "l", Files: []FileRecord{rec("c", "l", 50), rec("d", "l", 50)}}
	groups := []*DuplicateGroup{small, large}

	SortByWasted(groups)

	if groups[0] != large {
		t.Errorf("expected largest group first, got %s", groups[0].Hash)
	}
}
