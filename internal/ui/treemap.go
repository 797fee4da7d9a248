package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"

	"github.com/lumipallolabs/dupedive/internal/model"
)

// Block represents a rectangle in the treemap
type Block struct {
	Group         *model.DuplicateGroup
	Current       bool // the set under review
	X, Y          int
	Width, Height int
	// For grouped items (when Group is nil)
	IsGrouped  bool
	GroupCount int
	GroupSize  int64
}

// TreemapPanel shows the reclaimable space of every remaining set.
// The set under review is highlighted.
type TreemapPanel struct {
	current *model.DuplicateGroup
	pending []*model.DuplicateGroup
	blocks  []Block
	width   int
	height  int
}

const (
	minBlockWidth   = 8  // minimum width for any block (fits short label)
	minBlockHeight  = 3  // minimum height for any block (border + 1 line text)
	maxVisibleItems = 15 // max items before grouping remainder into "N more"
)

// NewTreemapPanel creates a new treemap panel
func NewTreemapPanel() TreemapPanel {
	return TreemapPanel{}
}

// SetGroups sets the set under review and the queued sets
func (t *TreemapPanel) SetGroups(current *model.DuplicateGroup, pending []*model.DuplicateGroup) {
	t.current = current
	t.pending = pending
	t.layout()
}

// SetSize sets the panel dimensions
func (t *TreemapPanel) SetSize(w, h int) {
	if t.width != w || t.height != h {
		t.width = w
		t.height = h
		t.layout()
	}
}

// Blocks returns the laid out blocks
func (t TreemapPanel) Blocks() []Block {
	return t.blocks
}

// treemapItem wraps a group for the squarify algorithm
type treemapItem struct {
	group    *model.DuplicateGroup
	current  bool
	size     float64
	children []*treemapItem
}

// Size implements squarify.TreeSizer
func (t *treemapItem) Size() float64 {
	return t.size
}

// NumChildren implements squarify.TreeSizer
func (t *treemapItem) NumChildren() int {
	return len(t.children)
}

// Child implements squarify.TreeSizer
func (t *treemapItem) Child(i int) squarify.TreeSizer {
	return t.children[i]
}

// contentSize returns the drawable area inside the panel border
func (t TreemapPanel) contentSize() (int, int) {
	w := t.width - 4
	h := t.height - 2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// layout calculates block positions using the squarify library
func (t *TreemapPanel) layout() {
	t.blocks = nil
	if t.current == nil || t.width <= 4 || t.height <= 2 {
		return
	}
	contentW, contentH := t.contentSize()

	// The current set always stays visible, the rest are sorted by size
	pending := make([]*model.DuplicateGroup, len(t.pending))
	copy(pending, t.pending)
	model.SortByWasted(pending)

	items := make([]*treemapItem, 0, len(pending)+1)
	for i, g := range append([]*model.DuplicateGroup{t.current}, pending...) {
		size := float64(g.WastedBytes())
		if size < 1 {
			size = 1 // Empty files still show up
		}
		items = append(items, &treemapItem{group: g, current: i == 0, size: size})
	}

	visible := items
	var grouped []*treemapItem
	if len(items) > maxVisibleItems {
		visible = items[:maxVisibleItems-1]
		grouped = items[maxVisibleItems-1:]
	}

	mainRect := squarify.Rect{W: float64(contentW), H: float64(contentH)}
	if len(grouped) > 0 && contentH > 2*minBlockHeight {
		mainRect.H = float64(contentH - minBlockHeight)
	}

	root := &treemapItem{children: visible}
	for _, child := range visible {
		root.size += child.size
	}

	// Give a tiny current set enough area to be seen
	if minSize := root.size / float64(2*len(visible)); visible[0].size < minSize {
		root.size += minSize - visible[0].size
		visible[0].size = minSize
	}

	blocks, metas := squarify.Squarify(root, mainRect, squarify.Options{
		MaxDepth: 1,
		Sort:     true,
	})

	for i, block := range blocks {
		item, ok := block.TreeSizer.(*treemapItem)
		if !ok || i >= len(metas) || metas[i].Depth != 0 {
			continue
		}

		// Round both edges so adjacent blocks share a boundary
		x := int(math.Round(block.X))
		y := int(math.Round(block.Y))
		w := int(math.Round(block.X+block.W)) - x
		h := int(math.Round(block.Y+block.H)) - y
		if x+w > contentW {
			w = contentW - x
		}
		if y+h > contentH {
			h = contentH - y
		}
		if w < 1 || h < 1 {
			continue
		}

		t.blocks = append(t.blocks, Block{
			Group:   item.group,
			Current: item.current,
			X:       x,
			Y:       y,
			Width:   w,
			Height:  h,
		})
	}

	if len(grouped) > 0 && int(mainRect.H) < contentH {
		var size int64
		for _, item := range grouped {
			size += item.group.WastedBytes()
		}
		t.blocks = append(t.blocks, Block{
			X:          0,
			Y:          int(mainRect.H),
			Width:      contentW,
			Height:     contentH - int(mainRect.H),
			IsGrouped:  true,
			GroupCount: len(grouped),
			GroupSize:  size,
		})
	}
}

// View renders the treemap
func (t TreemapPanel) View() string {
	style := TreemapPanelStyle.Width(t.width - 2).Height(t.height - 2)
	if t.current == nil {
		return style.Render(FileMetaStyle.Render("No data"))
	}

	contentW, contentH := t.contentSize()

	// Create a 2D grid
	grid := make([][]rune, contentH)
	colors := make([][]lipgloss.Style, contentH)
	for i := range grid {
		grid[i] = make([]rune, contentW)
		colors[i] = make([]lipgloss.Style, contentW)
		for j := range grid[i] {
			grid[i][j] = ' '
			colors[i][j] = lipgloss.NewStyle()
		}
	}

	for _, block := range t.blocks {
		drawBlock(grid, colors, block)
	}

	lines := make([]string, contentH)
	for y := range grid {
		var line strings.Builder
		for x := range grid[y] {
			line.WriteString(colors[y][x].Render(string(grid[y][x])))
		}
		lines[y] = line.String()
	}

	return style.Render(strings.Join(lines, "\n"))
}

// drawBlock draws a single block onto the grid
func drawBlock(grid [][]rune, colors [][]lipgloss.Style, block Block) {
	gridH := len(grid)
	if gridH == 0 || block.Width < 1 || block.Height < 1 {
		return
	}
	gridW := len(grid[0])

	bg := lipgloss.Color("#2D2D2D")
	fg := lipgloss.Color("#E4E4E7")
	switch {
	case block.Current:
		bg = ColorPrimary
		fg = lipgloss.Color("#FFFFFF")
	case block.IsGrouped:
		bg = lipgloss.Color("#1F2937")
		fg = ColorMuted
	}
	fill := lipgloss.NewStyle().Background(bg).Foreground(fg)
	border := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("#4B5563"))
	if block.Current {
		fill = fill.Bold(true)
		border = border.Foreground(lipgloss.Color("#FFFFFF"))
	}

	set := func(x, y int, ch rune, st lipgloss.Style) {
		if x >= 0 && y >= 0 && x < gridW && y < gridH {
			grid[y][x] = ch
			colors[y][x] = st
		}
	}

	right := block.X + block.Width - 1
	bottom := block.Y + block.Height - 1
	for y := block.Y; y <= bottom; y++ {
		for x := block.X; x <= right; x++ {
			ch, st := ' ', fill
			switch {
			case y == block.Y || y == bottom:
				ch, st = '─', border
			case x == block.X || x == right:
				ch, st = '│', border
			}
			set(x, y, ch, st)
		}
	}
	set(block.X, block.Y, '┌', border)
	set(right, block.Y, '┐', border)
	set(block.X, bottom, '└', border)
	set(right, bottom, '┘', border)

	// Labels if space permits
	if block.Width <= 4 || block.Height <= 2 {
		return
	}
	var label, size string
	if block.IsGrouped {
		label = fmt.Sprintf("%d more sets", block.GroupCount)
		size = FormatSize(block.GroupSize)
	} else {
		label = block.Group.Files[0].Name
		size = FormatSize(block.Group.WastedBytes())
	}
	maxLen := block.Width - 4
	for i, ch := range []rune(truncate(label, maxLen)) {
		set(block.X+2+i, block.Y+1, ch, fill)
	}
	if block.Height > 3 {
		for i, ch := range []rune(truncate(size, maxLen)) {
			set(block.X+2+i, block.Y+2, ch, fill)
		}
	}
}
