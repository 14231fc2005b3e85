package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/tui/editor"
	"github.com/joacominatel/sqlgrader/internal/tui/explorer"
	"github.com/joacominatel/sqlgrader/internal/tui/results"
	"github.com/joacominatel/sqlgrader/internal/tui/statusbar"
	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneExplorer Pane = iota
	PaneEditor
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneExplorer:
		return "tables"
	case PaneEditor:
		return "answer"
	case PaneResults:
		return "verdict"
	default:
		return "unknown"
	}
}

// AppMode tracks the current UI state.
type AppMode int

const (
	ModeSelectDatabase AppMode = iota
	ModeMain
)

// Grader is what the console needs from app.Service.
type Grader interface {
	Databases() []database.Target
	LoadSchemaTree(ctx context.Context, databaseID int64) (*app.SchemaTree, error)
	LoadColumns(ctx context.Context, databaseID int64, schema, table string) ([]database.Column, error)
	EvaluateDetailed(ctx context.Context, studentQuery, solutionQuery string, databaseID int64) evaluation.Report
	RunQuery(ctx context.Context, query string, databaseID int64) (*evaluation.QueryResult, error)
}

// Exercise is the question being practised: its reference solution and,
// optionally, the database it runs on.
type Exercise struct {
	Title      string
	Solution   string
	DatabaseID int64
}

// Async results.
type (
	schemaLoadedMsg struct {
		tree *app.SchemaTree
		err  error
	}
	columnsLoadedMsg struct {
		schema  string
		table   string
		columns []database.Column
		err     error
	}
	gradedMsg struct {
		report evaluation.Report
	}
	ranMsg struct {
		result *evaluation.QueryResult
		err    error
	}
)

// commandTimeout bounds every background call. Query limits are enforced
// by the service; this only guards metadata lookups.
const commandTimeout = time.Minute

// Model is the top-level bubbletea model orchestrating all components.
type Model struct {
	grader     Grader
	exercise   Exercise
	targets    []database.Target
	target     database.Target
	explorer   explorer.Model
	editor     editor.Model
	results    results.Model
	statusbar  statusbar.Model
	activePane Pane
	mode       AppMode
	width      int
	height     int
	showHelp   bool
	cursor     int
}

// NewModel creates the console. When the exercise names a registered
// database the selection screen is skipped.
func NewModel(grader Grader, exercise Exercise) Model {
	m := Model{
		grader:    grader,
		exercise:  exercise,
		targets:   grader.Databases(),
		explorer:  explorer.New(),
		editor:    editor.New(),
		results:   results.New(),
		statusbar: statusbar.New(),
		mode:      ModeSelectDatabase,
	}
	for i, t := range m.targets {
		if t.ID == exercise.DatabaseID {
			m.cursor = i
			m.selectTarget(t)
		}
	}
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	if m.mode == ModeMain {
		return tea.Batch(m.editor.Init(), m.loadSchemaCmd())
	}
	return nil
}

func (m *Model) selectTarget(t database.Target) {
	m.target = t
	m.mode = ModeMain
	m.explorer.SetLoading(true)
	m.statusbar.SetTarget(fmt.Sprintf("%s (#%d)", t.Name, t.ID))
	m.setFocus(PaneEditor)
	m.layout()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if msg.String() == "?" && m.mode == ModeMain && m.activePane != PaneEditor {
			m.showHelp = true
			return m, nil
		}
		if m.mode == ModeSelectDatabase {
			return m.updateSelectDatabase(msg)
		}
		return m.updateMain(msg)

	case schemaLoadedMsg:
		m.explorer.SetLoading(false)
		if msg.err != nil {
			m.statusbar.SetMessage("Failed to load tables: " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetTree(msg.tree)
		m.editor.SetTableNames(m.explorer.TableNames())
		return m, nil

	case columnsLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Failed to load columns: " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetColumns(msg.schema, msg.table, msg.columns)
		return m, nil

	case explorer.RequestColumnsMsg:
		return m, m.loadColumnsCmd(msg.Schema, msg.Table)

	case explorer.PeekMsg:
		m.results.SetLoading("Running...")
		return m, m.runCmd(msg.Query)

	case editor.SubmitMsg:
		m.results.SetLoading("Grading...")
		m.statusbar.SetMessage("")
		return m, m.gradeCmd(msg.Query)

	case editor.RunMsg:
		m.results.SetLoading("Running...")
		return m, m.runCmd(msg.Query)

	case gradedMsg:
		m.results.SetReport(msg.report)
		m.statusbar.RecordVerdict(string(msg.report.Result.Category))
		return m, nil

	case ranMsg:
		if msg.err != nil {
			m.results.SetError(msg.err)
			return m, nil
		}
		m.results.SetPreview(msg.result)
		return m, nil
	}

	if m.mode == ModeMain {
		return m.updateComponents(msg)
	}
	return m, nil
}

func (m Model) updateSelectDatabase(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.targets)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.targets) == 0 {
			return m, nil
		}
		m.selectTarget(m.targets[m.cursor])
		return m, tea.Batch(m.editor.Init(), m.loadSchemaCmd())
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.activePane != PaneEditor {
			return m, tea.Quit
		}
	case "tab":
		if m.activePane == PaneEditor && m.editor.CompletionActive() {
			return m.updateComponents(msg)
		}
		m.setFocus((m.activePane + 1) % 3)
		return m, nil
	case "shift+tab":
		m.setFocus((m.activePane + 2) % 3)
		return m, nil
	case "ctrl+s":
		// Grading works from any pane.
		if m.activePane != PaneEditor {
			query := m.editor.Value()
			return m, func() tea.Msg { return editor.SubmitMsg{Query: query} }
		}
	}
	return m.updateComponents(msg)
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activePane {
	case PaneExplorer:
		m.explorer, cmd = m.explorer.Update(msg)
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.explorer.SetFocused(pane == PaneExplorer)
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

type paneSizes struct {
	explorerWidth, rightWidth, editorHeight, resultsHeight, height int
}

func (m Model) sizes() paneSizes {
	avail := m.height - 1 - 2
	explorerWidth := min(max(m.width/4, 22), 35)
	editorHeight := max(avail*40/100, 5)
	return paneSizes{
		explorerWidth: explorerWidth,
		rightWidth:    m.width - explorerWidth - 1,
		editorHeight:  editorHeight,
		resultsHeight: avail - editorHeight - 2,
		height:        avail,
	}
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	s := m.sizes()
	m.explorer.SetSize(s.explorerWidth, s.height)
	m.editor.SetSize(s.rightWidth, s.editorHeight)
	m.results.SetSize(s.rightWidth, s.resultsHeight)
	m.statusbar.SetWidth(m.width)
}

// Async commands

func (m Model) loadSchemaCmd() tea.Cmd {
	grader, id := m.grader, m.target.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		tree, err := grader.LoadSchemaTree(ctx, id)
		return schemaLoadedMsg{tree: tree, err: err}
	}
}

func (m Model) loadColumnsCmd(schema, table string) tea.Cmd {
	grader, id := m.grader, m.target.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		columns, err := grader.LoadColumns(ctx, id, schema, table)
		return columnsLoadedMsg{schema: schema, table: table, columns: columns, err: err}
	}
}

func (m Model) gradeCmd(query string) tea.Cmd {
	grader, id, solution := m.grader, m.target.ID, m.exercise.Solution
	return func() tea.Msg {
		return gradedMsg{report: grader.EvaluateDetailed(context.Background(), query, solution, id)}
	}
}

func (m Model) runCmd(query string) tea.Cmd {
	grader, id := m.grader, m.target.ID
	return func() tea.Msg {
		result, err := grader.RunQuery(context.Background(), query, id)
		return ranMsg{result: result, err: err}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	if m.mode == ModeSelectDatabase {
		return m.viewSelectDatabase()
	}
	return m.viewMain()
}

func (m Model) header() []string {
	title := lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true).Padding(1, 0).Render("sqlgrader")
	subtitle := m.exercise.Title
	if subtitle == "" {
		subtitle = "Write a query, get it graded."
	}
	return []string{"", title, theme.StyleMuted.Render(subtitle), ""}
}

func (m Model) viewSelectDatabase() string {
	parts := m.header()
	parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true).Render("Exercise databases"))

	if len(m.targets) == 0 {
		parts = append(parts, theme.StyleError.Render("  No databases configured. Add one under databases: in the config file."))
	}
	for i, t := range m.targets {
		label := fmt.Sprintf("%s (#%d, %s)", t.Name, t.ID, t.Driver)
		if i == m.cursor {
			parts = append(parts, theme.StyleSelected.Render("> "+label))
		} else {
			parts = append(parts, "  "+label)
		}
	}

	parts = append(parts, "", theme.StyleMuted.Render("  ↑/↓: Navigate  Enter: Select  q: Quit"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) border(p Pane) lipgloss.Style {
	if m.activePane == p {
		return theme.StyleActiveBorder
	}
	return theme.StyleBorder
}

func (m Model) viewMain() string {
	s := m.sizes()

	explorerView := m.border(PaneExplorer).
		Width(s.explorerWidth - 2).
		Height(s.height).
		Render(m.explorer.View())

	editorView := m.border(PaneEditor).
		Width(s.rightWidth - 2).
		Height(s.editorHeight).
		Render(m.editor.View())

	resultsView := m.border(PaneResults).
		Width(s.rightWidth - 2).
		Height(s.resultsHeight).
		Render(m.results.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		explorerView,
		lipgloss.JoinVertical(lipgloss.Left, editorView, resultsView),
	)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusbar.View())
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Global", [][2]string{
		{"Ctrl+S", "Grade your answer"},
		{"Tab / Shift+Tab", "Switch pane"},
		{"?", "Toggle this help"},
		{"q / Ctrl+C", "Quit"},
	}},
	{"Tables", [][2]string{
		{"↑/k  ↓/j", "Navigate"},
		{"Enter/→/l", "Expand"},
		{"←/h", "Collapse"},
		{"s", "Preview first rows"},
	}},
	{"Answer", [][2]string{
		{"F5 / Ctrl+E", "Run without grading"},
		{"Ctrl+K", "Clear"},
		{"Ctrl+L", "Uppercase keywords"},
		{"Tab", "Complete table name"},
	}},
	{"Verdict", [][2]string{
		{"↑/k  ↓/j", "Scroll rows"},
		{"PgUp/PgDn", "Page"},
		{"g / G", "Top / bottom"},
	}},
}

func (m Model) viewHelp() string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(18)
	sectionStyle := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)

	lines := []string{theme.StyleTitle.Render("sqlgrader - Keyboard Shortcuts")}
	for _, sec := range helpSections {
		lines = append(lines, "", sectionStyle.Render(sec.title))
		for _, k := range sec.keys {
			lines = append(lines, "  "+keyStyle.Render(k[0])+theme.StyleMuted.Render(k[1]))
		}
	}
	lines = append(lines, "", theme.StyleMuted.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		strings.Join(lines, "\n"),
	)
}
