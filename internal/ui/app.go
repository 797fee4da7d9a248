package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/dupedive/internal/core"
	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/review"
)

// Message types for Bubble Tea
type (
	scanStartMsg   struct{}
	spinnerTickMsg struct{}
	scanEventMsg   struct{ event core.Event }
	watchEventMsg  struct{ event core.Event }
	statusClearMsg struct{ version int }
)

// Spinner frames - braille dots spinner
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Timing constants
const (
	spinnerTickInterval = 80 * time.Millisecond
	borderRotationSpeed = 33 // milliseconds per frame
	statusTimeout       = 4 * time.Second
	detailsHeight       = 6
)

// App is the main TUI application model
type App struct {
	// Core controller (business logic)
	ctrl  *core.Controller
	state *reviewState

	// UI Components
	header  Header
	group   GroupPanel
	treemap TreemapPanel
	help    HelpOverlay
	keys    KeyMap
	version string
	dir     string

	// UI state (TUI-specific)
	status        string
	statusVersion int
	generation    int

	// Event channels (for continuing to listen after each event)
	scanEventCh  <-chan core.Event
	watchEventCh <-chan core.Event

	// Dimensions
	width      int
	height     int
	groupWidth int
}

// NewApp creates the application for reviewing dir
func NewApp(opts core.Options, dir, version string) App {
	state := &reviewState{}
	ctrl := core.NewController(opts, state)

	app := App{
		ctrl:    ctrl,
		state:   state,
		header:  NewHeader(version),
		group:   NewGroupPanel(),
		treemap: NewTreemapPanel(),
		help:    NewHelpOverlay(version),
		keys:    DefaultKeyMap(),
		version: version,
		dir:     dir,
	}
	app.header.SetDir(dir)

	freed := ctrl.FreedState()
	app.header.SetFreedStats(freed.Session, freed.Lifetime)

	return app
}

// Controller returns the core controller driving the app
func (a App) Controller() *core.Controller {
	return a.ctrl
}

// Run starts the TUI on the alternate screen and blocks until it exits
func Run(opts core.Options, dir, version string) error {
	app := NewApp(opts, dir, version)
	defer app.ctrl.Stop()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("DUPEDIVE"),
		func() tea.Msg { return scanStartMsg{} },
	)
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case scanStartMsg:
		return a.startScan()

	case scanEventMsg:
		return a.handleScanEvent(msg.event)

	case watchEventMsg:
		_ = a.ctrl.Dispatch(msg.event)
		a.refresh()
		return a, a.listenForWatchEvents()

	case statusClearMsg:
		if msg.version == a.statusVersion {
			a.status = ""
		}
		return a, nil

	case spinnerTickMsg:
		if a.ctrl.ScanState().IsScanning() {
			return a, tickSpinner()
		}
		return a, nil
	}

	return a, nil
}

func tickSpinner() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// startScan begins the scanning process
func (a App) startScan() (tea.Model, tea.Cmd) {
	eventCh, err := a.ctrl.StartScan(context.Background(), a.dir)
	if err != nil {
		// The presenter has already been told why
		logging.Debug.Printf("[TUI] StartScan: %v", err)
		return a, nil
	}
	a.scanEventCh = eventCh
	a.watchEventCh = nil
	a.refresh()

	return a, tea.Batch(a.listenForScanEvents(), tickSpinner())
}

// handleScanEvent applies a scan event and continues listening
func (a App) handleScanEvent(event core.Event) (tea.Model, tea.Cmd) {
	_ = a.ctrl.Dispatch(event)
	a.refresh()

	if _, done := event.(core.ScanCompletedEvent); done {
		a.scanEventCh = nil
		return a, a.startWatcher()
	}
	return a, a.listenForScanEvents()
}

// listenForScanEvents creates a command that waits for the next scan event
func (a App) listenForScanEvents() tea.Cmd {
	if a.scanEventCh == nil {
		return nil
	}
	eventCh := a.scanEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil // Channel closed
		}
		return scanEventMsg{event: event}
	}
}

// startWatcher starts watching the reviewed directory for deletions
func (a *App) startWatcher() tea.Cmd {
	eventCh, err := a.ctrl.StartWatching()
	if err != nil {
		logging.Debug.Printf("[TUI] watcher unavailable: %v", err)
		return nil
	}
	if eventCh == nil {
		return nil
	}
	a.watchEventCh = eventCh
	return a.listenForWatchEvents()
}

// listenForWatchEvents creates a command that waits for the next watcher event
func (a App) listenForWatchEvents() tea.Cmd {
	if a.watchEventCh == nil {
		return nil
	}
	eventCh := a.watchEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil // Watcher stopped
		}
		return watchEventMsg{event: event}
	}
}

// refresh pulls the controller state into the components
func (a *App) refresh() {
	st := a.ctrl.State()

	if st.Scan.Result != nil {
		a.dir = st.Scan.Result.Dir
		a.header.SetDir(a.dir)
	}
	a.header.SetFreedStats(st.Freed.Session, st.Freed.Lifetime)

	switch st.Phase {
	case review.PhaseScanning:
		a.header.SetStatus("Scanning")
	case review.PhasePresenting:
		a.header.SetStatus(setsLabel(a.state.setsLeft()))
	case review.PhaseFinished:
		a.header.SetStatus("Review finished")
	default:
		a.header.SetStatus("")
	}

	summary := st.Algorithm
	if res := st.Scan.Result; res != nil && !st.Scan.IsScanning() {
		summary = fmt.Sprintf("%s · %d files · %d unique", st.Algorithm, res.FilesRead, res.Unique)
		if res.Skipped > 0 {
			summary += fmt.Sprintf(" · %d skipped", res.Skipped)
		}
		if res.Verified {
			summary += " · verified"
		}
	}
	if st.WeakHash {
		summary += " · weak hash, not verified"
	}
	a.header.SetSummary(summary)

	newSet := a.state.generation != a.generation
	a.generation = a.state.generation
	a.group.SetGroup(st.Current, newSet)
	position := a.state.groupCount - a.state.setsLeft() + 1
	if position < 1 {
		position = 1
	}
	a.group.SetPosition(position, a.state.groupCount)
	a.treemap.SetGroups(st.Current, st.Pending)
}

// setStatus shows a transient message below the header
func (a *App) setStatus(format string, args ...any) tea.Cmd {
	a.status = fmt.Sprintf(format, args...)
	a.statusVersion++
	version := a.statusVersion
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{version: version}
	})
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay takes precedence
	if a.help.IsVisible() {
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Back) {
			a.help.SetVisible(false)
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.ctrl.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.group.MoveUp()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.group.MoveDown()
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.group.GoToTop()
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		a.group.GoToBottom()
		return a, nil

	case key.Matches(msg, a.keys.Remove):
		if a.ctrl.Phase() != review.PhasePresenting {
			return a, nil
		}
		rec, err := a.ctrl.Remove(a.group.Cursor())
		a.refresh()
		if err != nil {
			return a, nil
		}
		a.state.clearError()
		return a, a.setStatus("Deleted %s (%s)", rec.Name, FormatSize(rec.Size))

	case key.Matches(msg, a.keys.Next):
		if a.ctrl.Phase() == review.PhasePresenting {
			_ = a.ctrl.Next()
			a.refresh()
		}
		return a, nil

	case key.Matches(msg, a.keys.End):
		if a.ctrl.Phase() == review.PhasePresenting {
			_ = a.ctrl.EndReview()
			a.refresh()
		}
		return a, nil

	case key.Matches(msg, a.keys.Rescan):
		if !a.ctrl.Phase().Active() {
			return a.startScan()
		}
		return a, nil

	case key.Matches(msg, a.keys.Cancel):
		if a.ctrl.Cancel() {
			return a, a.setStatus("Cancelling scan")
		}
		return a, nil

	case key.Matches(msg, a.keys.Copy):
		rec, ok := a.group.Selected()
		if !ok {
			return a, nil
		}
		if err := clipboard.WriteAll(rec.Path); err != nil {
			logging.Debug.Printf("[TUI] clipboard: %v", err)
			return a, a.setStatus("Clipboard unavailable")
		}
		return a, a.setStatus("Copied %s", rec.Path)

	case key.Matches(msg, a.keys.Reveal):
		if rec, ok := a.group.Selected(); ok {
			logging.Debug.Printf("openInFileManager: revealing %s", rec.Path)
			if err := openInFileManager(rec.Path); err != nil {
				logging.Debug.Printf("openInFileManager: error: %v", err)
			}
		}
		return a, nil

	case key.Matches(msg, a.keys.Preview):
		if rec, ok := a.group.Selected(); ok {
			logging.Debug.Printf("previewFile: previewing %s", rec.Path)
			if err := previewFile(rec.Path); err != nil {
				logging.Debug.Printf("previewFile: error: %v", err)
			}
		}
		return a, nil
	}

	return a, nil
}

// updateLayout calculates component sizes
func (a *App) updateLayout() {
	headerHeight := 2 // header + status line
	helpBarHeight := 1

	panelHeight := a.height - headerHeight - helpBarHeight
	if panelHeight < 4 {
		panelHeight = 4
	}

	a.groupWidth = a.width / 2
	if a.groupWidth < 40 {
		a.groupWidth = 40
	}
	if a.groupWidth > a.width-20 {
		a.groupWidth = a.width - 20
	}
	if a.groupWidth < 10 {
		a.groupWidth = a.width
	}

	a.header.SetWidth(a.width)
	a.group.SetSize(a.groupWidth, panelHeight)
	a.treemap.SetSize(a.width-a.groupWidth, panelHeight-detailsHeight)
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	phase := a.ctrl.Phase()

	var sections []string
	sections = append(sections, a.header.View())

	switch {
	case a.state.errorText() != "":
		sections = append(sections, ErrorStyle.Render("Error: "+a.state.errorText()))
	case a.status != "":
		sections = append(sections, StatusStyle.Render(a.status))
	default:
		sections = append(sections, "")
	}

	panelHeight := a.height - 3
	switch phase {
	case review.PhaseScanning:
		sections = append(sections, a.renderScanningPanel(panelHeight))
	case review.PhasePresenting:
		sections = append(sections, a.renderMainPanels())
	default:
		sections = append(sections, a.renderIdlePanel(panelHeight, phase))
	}

	sections = append(sections, HelpBar(a.width, phase == review.PhasePresenting))
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if a.help.IsVisible() {
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.help.View(),
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(ColorBackground),
		)
	}

	return content
}

// renderMainPanels renders the group list and the details and treemap panels
func (a App) renderMainPanels() string {
	right := lipgloss.JoinVertical(lipgloss.Left, a.fileDetailsPanel(), a.treemap.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, a.group.View(), right)
}

// fileDetailsPanel renders details of the selected file
func (a App) fileDetailsPanel() string {
	width := a.width - a.groupWidth - 2
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(width).
		Height(detailsHeight - 2)

	rec, ok := a.group.Selected()
	if !ok {
		return style.Render("")
	}

	labelStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	pathStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	lines = append(lines, pathStyle.Render(truncate(rec.Path, width-2)))
	lines = append(lines, labelStyle.Render("Modified: ")+valueStyle.Render(FormatTime(rec.ModTime)))
	if info, err := os.Stat(rec.Path); err == nil {
		if created := FormatTime(creationTime(info)); created != "" {
			lines = append(lines, labelStyle.Render("Created: ")+valueStyle.Render(created))
		}
		lines = append(lines, labelStyle.Render("Permissions: ")+valueStyle.Render(info.Mode().String()))
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorWarning).Render("No longer on disk"))
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderIdlePanel shows the outcome of the last scan or review
func (a App) renderIdlePanel(height int, phase review.Phase) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var lines []string
	st := a.ctrl.State()
	switch {
	case phase == review.PhaseFinished && a.state.groupCount == 0:
		lines = append(lines, titleStyle.Render("No duplicates found"))
	case phase == review.PhaseFinished:
		lines = append(lines, titleStyle.Render("Review finished"))
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%d files deleted, %s freed",
			st.Freed.Files, FormatSize(st.Freed.Session))))
	default:
		lines = append(lines, titleStyle.Render("Nothing to review"))
	}
	if res := st.Scan.Result; res != nil {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%d files read, %s hashed in %s",
			res.FilesRead, FormatSize(res.BytesRead), st.Scan.Elapsed())))
	}
	lines = append(lines, "", dimStyle.Render("r rescan · q quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderScanningPanel renders the scanning progress panel
func (a App) renderScanningPanel(height int) string {
	state := a.ctrl.ScanState()

	spinnerIdx := int(time.Now().UnixMilli()/spinnerTickInterval.Milliseconds()) % len(spinnerFrames)
	spinnerStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	fileStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	dataStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)

	logLines := []string{
		fmt.Sprintf("  %s %s", spinnerStyle.Render(spinnerFrames[spinnerIdx]), spinnerStyle.Render("Hashing files")),
		"",
		fmt.Sprintf("    %s %s", labelStyle.Render("FILES"), fileStyle.Render(fmt.Sprintf("%d / %d", state.FilesHashed, state.FilesSeen))),
		fmt.Sprintf("    %s  %s", labelStyle.Render("DATA"), dataStyle.Render(FormatSize(state.BytesHashed))),
		fmt.Sprintf("    %s  %s", labelStyle.Render("TIME"), timeStyle.Render(state.Elapsed().String())),
	}
	if state.CurrentPath != "" {
		logLines = append(logLines, "    "+labelStyle.Render(truncate(state.CurrentPath, 38)))
	}

	innerContent := lipgloss.NewStyle().
		Padding(0, 1).
		Width(48).
		Render(strings.Join(logLines, "\n"))

	boxHeight := 10
	scanningBox := renderSpinningBorder(
		lipgloss.Place(48, boxHeight-2, lipgloss.Left, lipgloss.Center, innerContent),
		50, boxHeight, time.Now())

	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, scanningBox)
}

// renderSpinningBorder draws a box with a gradient border that spins over time
func renderSpinningBorder(content string, width, height int, t time.Time) string {
	shades := []string{
		"#00FFFF", "#00D4FF", "#00AAFF", "#0080FF", "#4060FF", "#8040FF",
		"#A020F0", "#C020C0", "#E040A0", "#FF60B0", "#E040A0", "#C020C0",
		"#A020F0", "#8040FF", "#4060FF", "#0080FF", "#00AAFF", "#00D4FF",
	}

	innerW := width - 2
	innerH := height - 2
	perimeter := 2*innerW + 2*innerH + 4
	offset := int(t.UnixMilli()/borderRotationSpeed) % perimeter

	color := func(pos int) lipgloss.Style {
		adjusted := (pos - offset + perimeter) % perimeter
		shade := (adjusted * len(shades) / perimeter) % len(shades)
		return lipgloss.NewStyle().Foreground(lipgloss.Color(shades[shade]))
	}

	var b strings.Builder
	pos := 0

	b.WriteString(color(pos).Render("╭"))
	pos++
	for i := 0; i < innerW; i++ {
		b.WriteString(color(pos).Render("─"))
		pos++
	}
	b.WriteString(color(pos).Render("╮"))
	pos++
	b.WriteString("\n")

	lines := strings.Split(content, "\n")
	for i := 0; i < innerH; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w < innerW {
			line += strings.Repeat(" ", innerW-w)
		}
		b.WriteString(color(perimeter - 1 - i).Render("│"))
		b.WriteString(line)
		b.WriteString(color(pos).Render("│"))
		pos++
		b.WriteString("\n")
	}

	bottomStart := pos
	b.WriteString(color(perimeter - innerH - 1).Render("╰"))
	for i := 0; i < innerW; i++ {
		b.WriteString(color(bottomStart + innerW - i).Render("─"))
	}
	b.WriteString(color(bottomStart).Render("╯"))

	return b.String()
}
