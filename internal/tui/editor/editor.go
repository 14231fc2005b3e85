package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

// SubmitMsg asks the app to grade the answer.
type SubmitMsg struct {
	Query string
}

// RunMsg asks the app to run the answer without grading it.
type RunMsg struct {
	Query string
}

// Keywords uppercased by the formatter. Only read-side SQL is listed since
// anything else is rejected before it reaches the database.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"join": true, "inner": true, "outer": true, "full": true,
	"left": true, "right": true, "cross": true, "on": true, "using": true,
	"not": true, "in": true, "is": true, "null": true, "like": true,
	"order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "as": true, "distinct": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"between": true, "exists": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "with": true,
	"union": true, "intersect": true, "except": true, "all": true,
	"asc": true, "desc": true, "nulls": true, "first": true, "last": true,
	"over": true, "partition": true, "rows": true, "range": true,
	"coalesce": true, "cast": true, "true": true, "false": true, "ilike": true,
}

// Model is the answer editor component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	tableNames  []string
	completing  bool
	completions []string
	compIndex   int
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Write your SELECT here..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{
		textarea: ta,
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(w - 2)
	m.textarea.SetHeight(h - 2)
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Value returns the current editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
}

// SetTableNames sets the table names offered by Tab completion.
func (m *Model) SetTableNames(names []string) {
	m.tableNames = names
}

// Clear empties the editor.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		switch key {
		case "ctrl+s":
			// Empty answers are graded too; the grader reports them.
			query := m.textarea.Value()
			m.cancelCompletion()
			return m, func() tea.Msg { return SubmitMsg{Query: query} }

		case "ctrl+e", "f5":
			query := strings.TrimSpace(m.textarea.Value())
			if query == "" {
				return m, nil
			}
			m.cancelCompletion()
			return m, func() tea.Msg { return RunMsg{Query: query} }

		case "ctrl+k":
			m.Clear()
			return m, nil

		case "ctrl+l":
			m.textarea.SetValue(FormatKeywords(m.textarea.Value()))
			return m, nil

		case "tab":
			if m.tryCompletion() {
				return m, nil
			}

		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		}

		if m.completing && key != "tab" {
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// CompletionActive reports whether Tab is cycling completion candidates.
func (m Model) CompletionActive() bool {
	return m.completing
}

// FormatKeywords uppercases SQL keywords outside string literals and
// quoted identifiers.
func FormatKeywords(sql string) string {
	if sql == "" {
		return sql
	}

	var out, word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if sqlKeywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		out.WriteString(w)
		word.Reset()
	}

	var quote rune
	for _, ch := range sql {
		switch {
		case quote != 0:
			out.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			flush()
			quote = ch
			out.WriteRune(ch)
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_':
			word.WriteRune(ch)
		default:
			flush()
			out.WriteRune(ch)
		}
	}
	flush()
	return out.String()
}

// tryCompletion completes the trailing word to a table name after FROM or
// JOIN, cycling through candidates on repeated Tab.
func (m *Model) tryCompletion() bool {
	if len(m.tableNames) == 0 {
		return false
	}

	val := m.textarea.Value()
	if m.completing && len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion(val)
		return true
	}

	partial := lastWord(val)
	if partial == "" {
		return false
	}
	upper := strings.ToUpper(val)
	if !strings.Contains(upper, "FROM") && !strings.Contains(upper, "JOIN") {
		return false
	}

	m.completions = Complete(m.tableNames, partial)
	if len(m.completions) == 0 {
		return false
	}
	m.completing = true
	m.compIndex = 0
	m.applyCompletion(val)
	return true
}

// Complete returns the names starting with partial, case-insensitively.
func Complete(names []string, partial string) []string {
	lower := strings.ToLower(partial)
	var matches []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, name)
		}
	}
	return matches
}

func (m *Model) applyCompletion(val string) {
	base := strings.TrimSuffix(val, lastWord(val))
	m.textarea.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

// lastWord returns the trailing identifier of s, or "" if s ends in space.
func lastWord(s string) string {
	i := len(s)
	for i > 0 && isIdentChar(rune(s[i-1])) {
		i--
	}
	return s[i:]
}

func isIdentChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '.'
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Your Answer")

	var completionHint string
	if m.completing && len(m.completions) > 1 {
		hint := make([]string, 0, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				hint = append(hint, theme.StyleSelected.Render(c))
			} else {
				hint = append(hint, theme.StyleMuted.Render(c))
			}
		}
		completionHint = "\n" + lipgloss.NewStyle().Padding(0, 1).Render(
			theme.StyleMuted.Render("Tab: ")+strings.Join(hint, " │ "),
		)
	}

	return title + "\n" + m.textarea.View() + completionHint
}
