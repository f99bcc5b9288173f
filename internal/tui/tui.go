// Package tui provides a Bubble Tea timeline view over the tracker journal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/autosnap/internal/journal"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	kindCommitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	kindBranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	kindPruneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	kindErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	kindRunStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
)

// ReloadFunc fetches a fresh set of journal entries, newest first.
type ReloadFunc func() ([]journal.Entry, error)

// Model is the root Bubble Tea model for the journal timeline.
type Model struct {
	repoPath string
	entries  []journal.Entry
	reload   ReloadFunc
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	err      error
}

// New creates a TUI model for the given repository's journal entries.
func New(repoPath string, entries []journal.Entry, reload ReloadFunc) Model {
	return Model{repoPath: repoPath, entries: entries, reload: reload}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.reload != nil {
				entries, err := m.reload()
				if err != nil {
					m.err = err
				} else {
					m.entries = entries
					m.err = nil
					m.viewport.SetContent(m.renderTimeline())
				}
			}
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := 3 // title + status bar + hint
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.viewport.SetContent(m.renderTimeline())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title := titleStyle.Render("autosnap · " + m.repoPath)

	status := fmt.Sprintf("%d entries · %3.f%%", len(m.entries), m.viewport.ScrollPercent()*100)
	if m.err != nil {
		status = "reload failed: " + m.err.Error()
	}
	bar := statusBarStyle.Width(m.width).Render(status)
	hint := hintStyle.Render("  ↑/↓ scroll · g/G top/bottom · r reload · q quit")

	return strings.Join([]string{title, m.viewport.View(), bar, hint}, "\n")
}

// renderTimeline renders the journal entries newest-first, one line each.
func (m Model) renderTimeline() string {
	if len(m.entries) == 0 {
		return dimStyle.Render("\n  no activity recorded yet")
	}

	var b strings.Builder
	for _, e := range m.entries {
		ts := timeStyle.Render(e.Time.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "%s  %s  %s\n", ts, kindBadge(e.Kind), e.Detail)
	}
	return b.String()
}

// kindBadge renders a fixed-width, colored label for an entry kind.
func kindBadge(kind string) string {
	pad := func(s string) string { return fmt.Sprintf("%-14s", s) }
	switch kind {
	case journal.KindCommit:
		return kindCommitStyle.Render(pad("COMMIT"))
	case journal.KindBranchCreated:
		return kindBranchStyle.Render(pad("BRANCH"))
	case journal.KindBranchPruned:
		return kindPruneStyle.Render(pad("PRUNED"))
	case journal.KindError:
		return kindErrorStyle.Render(pad("ERROR"))
	case journal.KindStart, journal.KindStop:
		return kindRunStyle.Render(pad(strings.ToUpper(kind)))
	}
	return dimStyle.Render(pad(strings.ToUpper(kind)))
}
