package explorer

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/sqlgrader/internal/app"
	"github.com/joacominatel/sqlgrader/internal/database"
	"github.com/joacominatel/sqlgrader/internal/tui/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeSchema
	NodeTable
	NodeColumn
)

// TreeNode is a single node in the schema tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool
	Loaded   bool

	Schema   string
	Table    string
	DataType string
	Primary  bool
}

type flatItem struct {
	node  *TreeNode
	depth int
}

// RequestColumnsMsg is emitted when a table is expanded before its columns
// were fetched.
type RequestColumnsMsg struct {
	Schema string
	Table  string
}

// PeekMsg asks the app to preview the first rows of a table.
type PeekMsg struct {
	Query string
}

// PeekLimit bounds the preview query built for a table.
const PeekLimit = 20

// Model is the schema explorer. Students use it to see which tables and
// columns the exercise database offers.
type Model struct {
	tree    *TreeNode
	items   []flatItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
}

// New creates a new explorer model.
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

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTree populates the explorer from a schema tree. A single schema is
// expanded right away.
func (m *Model) SetTree(schema *app.SchemaTree) {
	root := &TreeNode{
		Kind:     NodeDatabase,
		Name:     schema.Database,
		Expanded: true,
		Loaded:   true,
	}

	for _, s := range schema.Schemas {
		schemaNode := &TreeNode{
			Kind:     NodeSchema,
			Name:     s.Name,
			Expanded: len(schema.Schemas) == 1,
			Loaded:   true,
		}
		for _, t := range s.Tables {
			schemaNode.Children = append(schemaNode.Children, &TreeNode{
				Kind:   NodeTable,
				Name:   t,
				Schema: s.Name,
			})
		}
		root.Children = append(root.Children, schemaNode)
	}

	m.tree = root
	m.cursor = 0
	m.flatten()
	m.loading = false
}

// TableNames lists every table in the tree, for editor completion.
func (m Model) TableNames() []string {
	if m.tree == nil {
		return nil
	}
	var names []string
	for _, s := range m.tree.Children {
		for _, t := range s.Children {
			names = append(names, t.Name)
		}
	}
	return names
}

// SetColumns attaches column nodes to a table node.
func (m *Model) SetColumns(schema, table string, columns []database.Column) {
	node := m.findTable(schema, table)
	if node == nil {
		return
	}
	node.Children = nil
	for _, col := range columns {
		node.Children = append(node.Children, &TreeNode{
			Kind:     NodeColumn,
			Name:     col.Name,
			Schema:   schema,
			Table:    table,
			DataType: col.DataType,
			Primary:  col.IsPrimary,
		})
	}
	node.Loaded = true
	m.flatten()
}

func (m *Model) findTable(schema, table string) *TreeNode {
	if m.tree == nil {
		return nil
	}
	for _, s := range m.tree.Children {
		if s.Name != schema {
			continue
		}
		for _, t := range s.Children {
			if t.Name == table {
				return t
			}
		}
	}
	return nil
}

// Selected returns the node under the cursor.
func (m Model) Selected() *TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor].node
}

func (m *Model) flatten() {
	m.items = nil
	if m.tree != nil {
		m.flattenNode(m.tree, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) flattenNode(node *TreeNode, depth int) {
	m.items = append(m.items, flatItem{node: node, depth: depth})
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child, depth+1)
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			return m, m.expand()
		case "left", "h":
			if node := m.Selected(); node != nil && node.Expanded {
				node.Expanded = false
				m.flatten()
			}
		case "s":
			return m, m.peek()
		}
	}

	return m, nil
}

func (m *Model) expand() tea.Cmd {
	node := m.Selected()
	if node == nil || node.Kind == NodeColumn {
		return nil
	}

	node.Expanded = !node.Expanded
	m.flatten()

	if node.Expanded && node.Kind == NodeTable && !node.Loaded {
		req := RequestColumnsMsg{Schema: node.Schema, Table: node.Name}
		return func() tea.Msg { return req }
	}
	return nil
}

func (m *Model) peek() tea.Cmd {
	node := m.Selected()
	if node == nil {
		return nil
	}
	var query string
	switch node.Kind {
	case NodeTable:
		query = PeekQuery(node.Schema, node.Name)
	case NodeColumn:
		query = PeekQuery(node.Schema, node.Table)
	default:
		return nil
	}
	return func() tea.Msg { return PeekMsg{Query: query} }
}

// PeekQuery builds the preview query for a table. The "main" and "public"
// schemas are left implicit.
func PeekQuery(schema, table string) string {
	name := table
	if schema != "" && schema != "main" && schema != "public" {
		name = schema + "." + table
	}
	return "SELECT * FROM " + name + " LIMIT " + strconv.Itoa(PeekLimit)
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Tables")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.tree == nil {
		return title + "\n" + theme.StyleMuted.Render("  No database selected")
	}

	var b strings.Builder
	b.WriteString(title)

	visible := max(1, m.height-2)
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	for i := offset; i < len(m.items) && i < offset+visible; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node

	icon := "  "
	if node.Kind != NodeColumn {
		icon = "▶ "
		if node.Expanded {
			icon = "▼ "
		}
	}

	name := node.Name
	if node.Kind == NodeColumn {
		if node.Primary {
			name += " *"
		}
		if node.DataType != "" {
			name += " " + lipgloss.NewStyle().Foreground(theme.ColorMuted).Render(strings.ToLower(node.DataType))
		}
	}

	line := strings.Repeat("  ", item.depth) + icon + name
	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(line)
		for len(runes) > 0 && lipgloss.Width(string(runes)) > m.width-4 {
			runes = runes[:len(runes)-1]
		}
		line = string(runes) + ".."
	}

	if selected {
		return theme.StyleSelected.Render(line)
	}
	return line
}
