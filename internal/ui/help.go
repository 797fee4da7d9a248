package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpKeyColumnWidth = 12 // Width for key column in help text

// HelpOverlay displays keyboard shortcuts in a centered overlay
type HelpOverlay struct {
	visible bool
	version string
	width   int
	height  int
}

// NewHelpOverlay creates a new help overlay component
func NewHelpOverlay(version string) HelpOverlay {
	return HelpOverlay{version: version}
}

// Toggle toggles the visibility of the help overlay
func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

// SetVisible sets the visibility of the help overlay
func (h *HelpOverlay) SetVisible(visible bool) {
	h.visible = visible
}

// IsVisible returns whether the help overlay is visible
func (h HelpOverlay) IsVisible() bool {
	return h.visible
}

// SetSize sets the dimensions of the help overlay
func (ho *HelpOverlay) SetSize(w, h int) {
	ho.width = w
	ho.height = h
}

// View renders the help overlay
func (h HelpOverlay) View() string {
	if !h.visible {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Bold(true).
		MarginTop(1)

	keyStyle := HelpOverlayKey
	descStyle := lipgloss.NewStyle().Foreground(ColorText)

	var content strings.Builder

	title := "Keyboard Shortcuts"
	if h.version != "" {
		title += "  " + h.version
	}
	content.WriteString(titleStyle.Render(title))
	content.WriteString("\n")

	content.WriteString(sectionStyle.Render("NAVIGATION"))
	content.WriteString("\n")
	content.WriteString(formatHelpLine(keyStyle, descStyle, "↑↓/jk", "Select file in set"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "g/G", "Jump to first/last file"))

	content.WriteString(sectionStyle.Render("REVIEW"))
	content.WriteString("\n")
	content.WriteString(formatHelpLine(keyStyle, descStyle, "d/x", "Delete selected file"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "n/Tab", "Keep all, go to next set"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "e", "End review, keep the rest"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "r", "Rescan directory"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "c", "Cancel running scan"))

	content.WriteString(sectionStyle.Render("FILES"))
	content.WriteString("\n")
	content.WriteString(formatHelpLine(keyStyle, descStyle, "Space", "Preview file"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "o", "Reveal in file manager"))
	content.WriteString(formatHelpLine(keyStyle, descStyle, "y", "Copy path to clipboard"))

	content.WriteString(sectionStyle.Render("OTHER"))
	content.WriteString("\n")
	content.WriteString(formatHelpLine(keyStyle, descStyle, "?/Esc", "Toggle this help"))
	content.WriteString(strings.TrimSuffix(formatHelpLine(keyStyle, descStyle, "q", "Quit"), "\n"))

	box := boxStyle.Render(content.String())

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

// formatHelpLine formats a single help line with key and description
func formatHelpLine(keyStyle, descStyle lipgloss.Style, key, desc string) string {
	return keyStyle.Width(helpKeyColumnWidth).Render(key) + descStyle.Render(desc) + "\n"
}

// HelpBar renders a bottom help bar with key hints for the current phase
func HelpBar(width int, reviewing bool) string {
	type hint struct {
		key  string
		desc string
	}

	hints := []hint{{"r", "rescan"}, {"?", "help"}, {"q", "quit"}}
	if reviewing {
		hints = []hint{
			{"↑↓", "select"},
			{"d", "delete"},
			{"n", "next set"},
			{"e", "end"},
			{"space", "preview"},
			{"?", "help"},
			{"q", "quit"},
		}
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts, HelpKey.Render(h.key)+HelpStyle.Render(h.desc))
	}

	return HelpStyle.Width(width).Render(strings.Join(parts, " "))
}
