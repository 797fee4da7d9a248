package cli

import (
	"fmt"
	"io"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"

	"github.com/lumipallolabs/dupedive/internal/model"
	"github.com/lumipallolabs/dupedive/internal/review"
)

// groupSource is the part of the controller the reporter reads from
type groupSource interface {
	CurrentGroup() (*model.DuplicateGroup, bool)
}

// reporter prints duplicate sets through a mustache template.
// A set re-presented after a removal is printed only once.
type reporter struct {
	out  io.Writer
	tmpl *mustache.Template
	src  groupSource

	names     []string
	remaining int

	number   int
	printed  map[string]bool
	failures int
}

var _ review.Presenter = (*reporter)(nil)

func newReporter(out io.Writer, template string) (*reporter, error) {
	tmpl, err := mustache.ParseString(template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &reporter{out: out, tmpl: tmpl}, nil
}

func (r *reporter) OnScanStarted() {}

func (r *reporter) OnScanComplete(groupCount int) {
	switch groupCount {
	case 0:
		fmt.Fprintln(r.out, "No duplicate files found.")
	case 1:
		fmt.Fprintln(r.out, "Found 1 set of duplicates.")
	default:
		fmt.Fprintf(r.out, "Found %d sets of duplicates.\n", groupCount)
	}
	fmt.Fprintln(r.out)
}

func (r *reporter) OnGroupPresented(filenames []string, remaining int) {
	r.names = filenames
	r.remaining = remaining
}

// flush prints the presented set unless it was already printed
func (r *reporter) flush() {
	if r.src == nil {
		return
	}
	g, ok := r.src.CurrentGroup()
	if !ok || withinSet(r.printed, g) {
		return
	}
	r.printed = pathSet(g)
	r.number++

	text, err := r.tmpl.Render(reportData(r.number, g, r.remaining))
	if err != nil {
		// Fall back to the bare file list if the template fails
		text = fmt.Sprintf("Set %d:\n", r.number)
		for _, name := range r.names {
			text += "  " + name + "\n"
		}
	}
	fmt.Fprint(r.out, text)
}

func (r *reporter) OnFinished() {}

func (r *reporter) OnError(kind review.ErrorKind, detail string) {
	if kind == review.DeletionFailed {
		r.failures++
	}
	fmt.Fprintf(r.out, "error: %s: %s\n", kind, detail)
}

// reportData builds the template context for one set
func reportData(number int, g *model.DuplicateGroup, remaining int) map[string]interface{} {
	files := make([]map[string]interface{}, g.Len())
	for i, f := range g.Files {
		kind := f.Kind
		if kind == "" {
			kind = "unknown"
		}
		files[i] = map[string]interface{}{
			"index":    i,
			"name":     f.Path,
			"kind":     kind,
			"modified": humanize.Time(f.ModTime),
			"hardlink": f.ID.HardLinked(),
		}
	}

	return map[string]interface{}{
		"number":    number,
		"count":     g.Len(),
		"size":      humanize.IBytes(uint64(g.Size())),
		"wasted":    humanize.IBytes(uint64(g.WastedBytes())),
		"more":      remaining > 0,
		"remaining": remaining,
		"files":     files,
	}
}

// pathSet returns the member paths of g.
// Sets never share files, so a set is identified by its members.
func pathSet(g *model.DuplicateGroup) map[string]bool {
	set := make(map[string]bool, g.Len())
	for _, p := range g.Paths() {
		set[p] = true
	}
	return set
}

// withinSet reports whether every member of g is in set, which is the
// case when g is a set re-presented after a removal
func withinSet(set map[string]bool, g *model.DuplicateGroup) bool {
	if len(set) == 0 {
		return false
	}
	for _, p := range g.Paths() {
		if !set[p] {
			return false
		}
	}
	return true
}
