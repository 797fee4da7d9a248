package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header displays the scanned directory, review status and freed stats
type Header struct {
	version      string
	dir          string
	status       string
	summary      string
	width        int
	freedSession int64
	freedTotal   int64
}

// NewHeader creates a new header component
func NewHeader(version string) Header {
	return Header{version: version}
}

// SetDir sets the directory being reviewed
func (h *Header) SetDir(dir string) {
	h.dir = dir
}

// SetStatus sets the review status text, such as "3 sets left"
func (h *Header) SetStatus(status string) {
	h.status = status
}

// SetSummary sets the scan summary shown on the right
func (h *Header) SetSummary(summary string) {
	h.summary = summary
}

// SetFreedStats sets the freed space statistics
func (h *Header) SetFreedStats(session, total int64) {
	h.freedSession = session
	h.freedTotal = total
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render("DUPEDIVE")
	if h.version != "" {
		appName += lipgloss.NewStyle().Foreground(ColorMuted).Render(" " + h.version)
	}

	dir := ""
	if h.dir != "" {
		dir = DirStyle.Render(h.dir)
	}

	status := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true).Render(h.status)

	// Freed stats (show when either counter > 0)
	var freedStats string
	if h.freedSession > 0 || h.freedTotal > 0 {
		dim := lipgloss.NewStyle().Foreground(ColorMuted)
		freedStats = dim.Render("Freed: ") +
			FreedStyle.Render(FormatSize(h.freedSession)+" session") +
			dim.Render(" | ") +
			dim.Render(FormatSize(h.freedTotal)+" total")
	}

	summary := StatsStyle.Render(h.summary)

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")

	left := appName + sep + dir
	if h.status != "" {
		left += sep + status
	}

	leftWidth := lipgloss.Width(left)
	freedWidth := lipgloss.Width(freedStats)
	summaryWidth := lipgloss.Width(summary)

	// For narrow terminals, progressively hide elements
	if h.width < leftWidth+freedWidth+summaryWidth+4 {
		summary = ""
		summaryWidth = 0
	}
	if h.width < leftWidth+freedWidth+summaryWidth+2 {
		freedStats = ""
		freedWidth = 0
	}

	remainingSpace := h.width - leftWidth - freedWidth - summaryWidth - 2
	if remainingSpace < 2 {
		remainingSpace = 2
	}
	leftGap := remainingSpace / 2
	rightGap := remainingSpace - leftGap

	line := left + strings.Repeat(" ", leftGap) + freedStats + strings.Repeat(" ", rightGap) + summary

	return HeaderStyle.MaxHeight(1).Render(line)
}

// setsLabel formats a count of remaining sets
func setsLabel(n int) string {
	if n == 1 {
		return "1 set left"
	}
	return fmt.Sprintf("%d sets left", n)
}
