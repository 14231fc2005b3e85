package statusbar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

const hints = "Ctrl+S: Grade │ F5: Run │ Tab: Switch pane │ ?: Help"

// Model is the status bar component.
type Model struct {
	width      int
	target     string
	activePane string
	message    string
	verdict    string
	attempts   int
}

// New creates a new status bar model.
func New() Model {
	return Model{
		activePane: "editor",
	}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetTarget shows the database answers are graded against.
func (m *Model) SetTarget(name string) {
	m.target = name
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// RecordVerdict counts a graded attempt and remembers its category.
func (m *Model) RecordVerdict(category string) {
	m.attempts++
	m.verdict = category
}

// Attempts returns how many answers were graded this session.
func (m Model) Attempts() int {
	return m.attempts
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var left string
	if m.target != "" {
		left = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") + " " + m.target
	} else {
		left = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " no database"
	}
	if m.verdict != "" {
		left += fmt.Sprintf("  #%d ", m.attempts) + theme.VerdictStyle(m.verdict).Render(m.verdict)
	}

	right := hints
	if m.message != "" {
		right = m.message
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
