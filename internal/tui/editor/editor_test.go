package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestFormatKeywords(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                                      "",
		"select name from users":                "SELECT name FROM users",
		"select 'select from' as x":             "SELECT 'select from' AS x",
		`select "order" from t order by 1`:      `SELECT "order" FROM t ORDER BY 1`,
		"select count(*) from t group by city2": "SELECT COUNT(*) FROM t GROUP BY city2",
		"with x as (select 1) select * from x":  "WITH x AS (SELECT 1) SELECT * FROM x",
	}
	for in, want := range tests {
		require.Equal(t, want, FormatKeywords(in), in)
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	names := []string{"customers", "Cities", "orders"}
	require.Equal(t, []string{"customers", "Cities"}, Complete(names, "c"))
	require.Equal(t, []string{"orders"}, Complete(names, "OR"))
	require.Empty(t, Complete(names, "x"))
}

func TestLastWord(t *testing.T) {
	t.Parallel()

	require.Equal(t, "cust", lastWord("SELECT * FROM cust"))
	require.Equal(t, "main.cu", lastWord("SELECT * FROM main.cu"))
	require.Equal(t, "", lastWord("SELECT * FROM "))
}

func TestSubmitAndRunMessages(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetFocused(true)
	m.SetQuery("  SELECT 1  ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	require.Equal(t, SubmitMsg{Query: "  SELECT 1  "}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyF5})
	require.NotNil(t, cmd)
	require.Equal(t, RunMsg{Query: "SELECT 1"}, cmd())

	m.Clear()
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyF5})
	require.Nil(t, cmd)
}

func TestTabCompletesTableNames(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetFocused(true)
	m.SetTableNames([]string{"customers", "cities"})
	m.SetQuery("SELECT * FROM c")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, m.CompletionActive())
	require.Equal(t, "SELECT * FROM customers", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "SELECT * FROM cities", m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.CompletionActive())
}

func TestUnfocusedEditorIgnoresKeys(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetQuery("SELECT 1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Nil(t, cmd)
}
