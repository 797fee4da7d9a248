package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/dupedive/internal/model"
)

// GroupPanel lists the members of the presented duplicate set
type GroupPanel struct {
	group    *model.DuplicateGroup
	cursor   int
	offset   int
	width    int
	height   int
	focused  bool
	position int // 1-based index of the set in this review
	total    int
}

// NewGroupPanel creates a new group panel
func NewGroupPanel() GroupPanel {
	return GroupPanel{focused: true}
}

// SetGroup replaces the shown set. resetCursor moves the cursor to the top.
func (g *GroupPanel) SetGroup(group *model.DuplicateGroup, resetCursor bool) {
	g.group = group
	if resetCursor {
		g.cursor = 0
		g.offset = 0
	}
	g.clamp()
}

// SetPosition sets which set this is out of the total found
func (g *GroupPanel) SetPosition(position, total int) {
	g.position = position
	g.total = total
}

// SetSize sets the panel dimensions
func (g *GroupPanel) SetSize(w, h int) {
	g.width = w
	g.height = h
	g.clamp()
}

// SetFocused sets focus state
func (g *GroupPanel) SetFocused(focused bool) {
	g.focused = focused
}

// Cursor returns the selected member index
func (g GroupPanel) Cursor() int {
	return g.cursor
}

// Selected returns the selected member
func (g GroupPanel) Selected() (model.FileRecord, bool) {
	if g.group == nil || g.cursor >= g.group.Len() {
		return model.FileRecord{}, false
	}
	return g.group.Files[g.cursor], true
}

// MoveUp moves the cursor up
func (g *GroupPanel) MoveUp() {
	if g.cursor > 0 {
		g.cursor--
	}
	g.clamp()
}

// MoveDown moves the cursor down
func (g *GroupPanel) MoveDown() {
	g.cursor++
	g.clamp()
}

// GoToTop moves the cursor to the first member
func (g *GroupPanel) GoToTop() {
	g.cursor = 0
	g.clamp()
}

// GoToBottom moves the cursor to the last member
func (g *GroupPanel) GoToBottom() {
	if g.group != nil {
		g.cursor = g.group.Len() - 1
	}
	g.clamp()
}

// visibleRows is the number of member rows that fit, two lines each
func (g GroupPanel) visibleRows() int {
	rows := (g.height - 5) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// clamp keeps cursor and scroll offset inside the member list
func (g *GroupPanel) clamp() {
	n := 0
	if g.group != nil {
		n = g.group.Len()
	}
	if g.cursor >= n {
		g.cursor = n - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	rows := g.visibleRows()
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+rows {
		g.offset = g.cursor - rows + 1
	}
}

// View renders the panel
func (g GroupPanel) View() string {
	style := GroupPanelStyle.Width(g.width - 2).Height(g.height - 2)
	if g.focused {
		style = style.BorderForeground(ColorPrimary)
	}
	if g.group == nil {
		return style.Render(FileMetaStyle.Render("No duplicate set"))
	}

	innerW := g.width - 6
	if innerW < 10 {
		innerW = 10
	}

	var lines []string
	title := fmt.Sprintf("Set %d of %d", g.position, g.total)
	lines = append(lines,
		lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render(title)+
			FileMetaStyle.Render(fmt.Sprintf("  %d copies of %s, %s reclaimable",
				g.group.Len(), FormatSize(g.group.Size()), FormatSize(g.group.WastedBytes()))))
	lines = append(lines, FileMetaStyle.Render(g.group.Hash.Short()))

	end := g.offset + g.visibleRows()
	if end > g.group.Len() {
		end = g.group.Len()
	}
	for i := g.offset; i < end; i++ {
		lines = append(lines, g.renderMember(i, innerW)...)
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderMember renders the name line and the metadata line of one member
func (g GroupPanel) renderMember(i, width int) []string {
	rec := g.group.Files[i]

	name := truncate(rec.Name, width-4)
	nameLine := fmt.Sprintf("%2d  %s", i+1, name)
	if i == g.cursor && g.focused {
		nameLine = FileItemSelected.Width(width).Render(nameLine)
	} else {
		nameLine = FileItemStyle.Render(nameLine)
	}

	meta := []string{FormatSize(rec.Size)}
	if rec.Kind != "" {
		meta = append(meta, rec.Kind)
	}
	if age := FormatAge(rec.ModTime); age != "" {
		meta = append(meta, "modified "+age)
	}
	metaLine := "    " + FileMetaStyle.Render(truncate(strings.Join(meta, " · "), width-4))
	if rec.ID.HardLinked() {
		metaLine += " " + HardLinkBadge.Render(fmt.Sprintf("%d links", rec.ID.Links))
	}

	return []string{nameLine, metaLine}
}

// truncate shortens s to at most n display cells with an ellipsis
func truncate(s string, n int) string {
	if n < 1 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
