package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/evaluation"
	"github.com/joacominatel/sqlgrader/internal/tui/editor"
)

type fakeGrader struct {
	graded []string
}

func (f *fakeGrader) Databases() []database.Target {
	return []database.Target{{ID: 1, Name: "hr", Driver: "postgres"}, {ID: 2, Name: "shop", Driver: "sqlite"}}
}

func (f *fakeGrader) LoadSchemaTree(context.Context, int64) (*app.SchemaTree, error) {
	return &app.SchemaTree{Database: "shop", Schemas: []app.SchemaNode{{Name: "main", Tables: []string{"customers"}}}}, nil
}

func (f *fakeGrader) LoadColumns(context.Context, int64, string, string) ([]database.Column, error) {
	return nil, nil
}

func (f *fakeGrader) EvaluateDetailed(_ context.Context, student, solution string, id int64) evaluation.Report {
	f.graded = append(f.graded, student)
	return evaluation.Report{Result: evaluation.EvaluationResult{IsCorrect: true, Category: evaluation.CategoryCorrect, Feedback: "ok"}}
}

func (f *fakeGrader) RunQuery(context.Context, string, int64) (*evaluation.QueryResult, error) {
	return &evaluation.QueryResult{Columns: []string{"n"}, Rows: []evaluation.Row{{"n": int64(1)}}, RowCount: 1}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewModelSkipsSelectionForKnownDatabase(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeGrader{}, Exercise{Solution: "SELECT 1", DatabaseID: 2})
	require.Equal(t, ModeMain, m.mode)
	require.Equal(t, int64(2), m.target.ID)
	require.Equal(t, PaneEditor, m.activePane)
	require.NotNil(t, m.Init())

	m = NewModel(&fakeGrader{}, Exercise{Solution: "SELECT 1", DatabaseID: 9})
	require.Equal(t, ModeSelectDatabase, m.mode)
	require.Nil(t, m.Init())
}

func TestSelectDatabase(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeGrader{}, Exercise{Solution: "SELECT 1"})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, ModeMain, m.mode)
	require.Equal(t, "shop", m.target.Name)

	m, _ = update(t, m, m.loadSchemaCmd()())
	require.Equal(t, []string{"customers"}, m.explorer.TableNames())
}

func TestSubmitGradesAgainstSolution(t *testing.T) {
	t.Parallel()

	g := &fakeGrader{}
	m := NewModel(g, Exercise{Solution: "SELECT 1", DatabaseID: 1})
	m, cmd := update(t, m, editor.SubmitMsg{Query: "SELECT 2"})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Equal(t, []string{"SELECT 2"}, g.graded)
	require.Equal(t, 1, m.statusbar.Attempts())
	require.Contains(t, m.results.View(), "CORRECT")
}

func TestRunShowsPreview(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeGrader{}, Exercise{DatabaseID: 1})
	m.width, m.height = 120, 40
	m.layout()

	m, cmd := update(t, m, editor.RunMsg{Query: "SELECT 1 AS n"})
	m, _ = update(t, m, cmd())
	require.Contains(t, m.results.View(), "1 row(s)")
	require.Equal(t, 0, m.statusbar.Attempts())
	require.NotEmpty(t, m.View())
}

func TestPaneCycling(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeGrader{}, Exercise{DatabaseID: 1})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, PaneResults, m.activePane)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, PaneExplorer, m.activePane)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, PaneResults, m.activePane)
}
