package hasher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumipallolabs/dupedive/internal/model"
)

func TestKnownDigests(t *testing.T) {
	cases := []struct {
		alg   string
		input string
		want  model.ContentHash
	}{
		{"sha256", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256", "hi", "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"},
		{"crc32", "hello", "3610a686"},
		{"xxh64", "", "ef46db3751d8e999"},
	}

	for _, c := range cases {
		h, err := New(c.alg)
		if err != nil {
			t.Fatalf("New(%q): %v", c.alg, err)
		}
		got, n, err := h.Sum(context.Background(), strings.NewReader(c.input))
		if err != nil {
			t.Fatalf("%s: Sum failed: %v", c.alg, err)
		}
		if got != c.want {
			t.Errorf("%s(%q) = %s, want %s", c.alg, c.input, got, c.want)
		}
		if n != int64(len(c.input)) {
			t.Errorf("%s: expected %d bytes read, got %d", c.alg, len(c.input), n)
		}
	}
}

func TestNewDefaultsAndRejectsUnknown(t *testing.T) {
	h, err := New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if h.Algorithm() != Default || !h.Strong() {
		t.Errorf("expected strong default algorithm, got %s", h.Algorithm())
	}

	if _, err := New("md4"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestSumStopsOnCancelledContext(t *testing.T) {
	h, _ := New("sha256")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := h.Sum(ctx, strings.NewReader("data"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSameContent(t *testing.T) {
	tmp := t.TempDir()
	a := writeFile(t, tmp, "a", "same bytes")
	b := writeFile(t, tmp, "b", "same bytes")
	c := writeFile(t, tmp, "c", "same bytez")
	d := writeFile(t, tmp, "d", "same bytes and more")

	ctx := context.Background()
	if same, err := SameContent(ctx, a, b); err != nil || !same {
		t.Errorf("a and b should match (same=%v err=%v)", same, err)
	}
	if same, _ := SameContent(ctx, a, c); same {
		t.Error("a and c differ in the last byte")
	}
	if same, _ := SameContent(ctx, a, d); same {
		t.Error("a is a prefix of d and must not match")
	}
	if _, err := SameContent(ctx, a, filepath.Join(tmp, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPartitionSplitsCollisions(t *testing.T) {
	tmp := t.TempDir()
	// Pretend all four collided on one weak hash
	group := &model.DuplicateGroup{Hash: "deadbeef"}
	for _, f := range []struct{ name, content string }{
		{"a", "one"}, {"b", "two"}, {"c", "one"}, {"d", "three"},
	} {
		path := writeFile(t, tmp, f.name, f.content)
		group.Files = append(group.Files, model.FileRecord{Path: path, Name: f.name, Hash: group.Hash})
	}

	classes, err := Partition(context.Background(), group)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(classes) != 1 {
		t.Fatalf("expected 1 true duplicate class, got %d", len(classes))
	}
	names := classes[0].Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("expected [a c], got %v", names)
	}
}

func TestPartitionSurvivesVanishedRepresentative(t *testing.T) {
	tmp := t.TempDir()
	group := &model.DuplicateGroup{Hash: "deadbeef"}
	group.Files = append(group.Files, model.FileRecord{Path: filepath.Join(tmp, "a-gone"), Name: "a-gone", Hash: group.Hash})
	for _, name := range []string{"b", "c"} {
		path := writeFile(t, tmp, name, "same")
		group.Files = append(group.Files, model.FileRecord{Path: path, Name: name, Hash: group.Hash})
	}

	classes, err := Partition(context.Background(), group)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	names := classes[0].Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "c" {
		t.Errorf("expected [b c], got %v", names)
	}
}
