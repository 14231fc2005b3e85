package results

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

const maxColWidth = 40

// Model shows the verdict for the last graded answer and the rows the
// answer returned.
type Model struct {
	verdict *evaluation.EvaluationResult
	result  *evaluation.QueryResult
	err     error
	loading string

	header    []string
	cells     [][]string
	colWidths []int

	width   int
	height  int
	focused bool
	scrollY int
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// SetLoading shows msg until the next result arrives.
func (m *Model) SetLoading(msg string) {
	m.loading = msg
}

// SetReport shows a graded answer. The student's rows are listed when the
// answer executed.
func (m *Model) SetReport(r evaluation.Report) {
	verdict := r.Result
	m.verdict = &verdict
	m.err = nil
	m.setResult(r.Student)
}

// SetPreview shows an ungraded run.
func (m *Model) SetPreview(res *evaluation.QueryResult) {
	m.verdict = nil
	m.err = nil
	m.setResult(res)
}

// SetError shows a failed run.
func (m *Model) SetError(err error) {
	m.verdict = nil
	m.err = err
	m.setResult(nil)
}

func (m *Model) setResult(res *evaluation.QueryResult) {
	m.result = res
	m.loading = ""
	m.scrollY = 0
	m.header, m.cells, m.colWidths = nil, nil, nil
	if res == nil {
		return
	}

	m.header = res.Columns
	m.cells = make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		line := make([]string, len(res.Columns))
		for j, col := range res.Columns {
			line[j] = FormatCell(row[col])
		}
		m.cells[i] = line
	}
	m.colWidths = columnWidths(m.header, m.cells)
}

// FormatCell renders a result value for the grid.
func FormatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strings.ReplaceAll(v, "\n", "⏎")
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func columnWidths(header []string, cells [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 1), maxColWidth)
	}
	return widths
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		last := max(0, len(m.cells)-1)
		switch msg.String() {
		case "up", "k":
			m.scrollY = max(0, m.scrollY-1)
		case "down", "j":
			m.scrollY = min(last, m.scrollY+1)
		case "pgup":
			m.scrollY = max(0, m.scrollY-m.height/2)
		case "pgdown":
			m.scrollY = min(last, m.scrollY+m.height/2)
		case "home", "g":
			m.scrollY = 0
		case "end", "G":
			m.scrollY = last
		}
	}

	return m, nil
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Verdict")
	if m.verdict == nil {
		title = theme.StyleTitle.Render("Results")
	}

	switch {
	case m.loading != "":
		return title + "\n" + theme.StyleMuted.Render("  "+m.loading)
	case m.err != nil:
		return title + "\n" + theme.StyleError.Render("  "+m.err.Error())
	case m.verdict == nil && m.result == nil:
		return title + "\n" + theme.StyleMuted.Render("  Ctrl+S grades your answer, F5 just runs it")
	}

	var b strings.Builder
	b.WriteString(title)
	used := 1

	if m.verdict != nil {
		for _, line := range m.verdictLines() {
			b.WriteString("\n")
			b.WriteString(line)
			used++
		}
	}

	if m.result == nil {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(theme.StyleMuted.Render(fmt.Sprintf("  %d row(s) | %d ms", m.result.RowCount, m.result.ExecutionTimeMs)))
	used++

	if len(m.header) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.renderRow(m.header, true))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	used += 2

	visible := max(1, m.height-used)
	for i := m.scrollY; i < len(m.cells) && i < m.scrollY+visible; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.cells[i], false))
	}

	return b.String()
}

func (m Model) verdictLines() []string {
	v := m.verdict
	lines := []string{
		"  " + theme.VerdictStyle(string(v.Category)).Render(string(v.Category)),
		"  " + wrap(v.Feedback, m.width-4),
	}
	if d := firstDifference(v); d != nil && d.Position != nil {
		lines = append(lines, "  "+theme.StyleMuted.Render(fmt.Sprintf("row %d, column %s", d.Position.Row, d.Position.Column)))
	}
	return lines
}

func firstDifference(v *evaluation.EvaluationResult) *evaluation.ComparisonDifference {
	if v.TechnicalDetails == nil || len(v.TechnicalDetails.Differences) == 0 {
		return nil
	}
	return &v.TechnicalDetails.Differences[0]
}

func wrap(s string, width int) string {
	if width <= 10 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (m Model) renderRow(cells []string, isHeader bool) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := m.colWidths[i]
		display := truncate(cell, width)
		if pad := width - lipgloss.Width(display); pad > 0 {
			display += strings.Repeat(" ", pad)
		}
		if isHeader {
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		}
		parts[i] = display
	}
	return "  " + strings.Join(parts, " │ ")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func (m Model) renderSeparator() string {
	parts := make([]string, len(m.colWidths))
	for i, w := range m.colWidths {
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
