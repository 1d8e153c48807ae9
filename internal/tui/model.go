// Package tui implements the interactive selection browser: the scanned tree
// with local and recursive sizes, toggled entry by entry until the selection
// matches exactly what should be backed up.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/selection"
)

type row struct {
	e     *entry.Entry
	path  string
	depth int
}

// Model is the bubbletea model for the browser.
type Model struct {
	tree      *entry.Entry
	sel       *selection.Selection
	rootLabel string
	savePath  string

	rows     []row
	expanded map[string]bool
	cursor   int
	offset   int
	width    int
	height   int

	keys   KeyMap
	help   help.Model
	styles Styles
	status string
}

// New creates a browser over a scanned tree. savePath is where the selection
// is written when the user saves.
func New(tree *entry.Entry, sel *selection.Selection, rootLabel, savePath string) Model {
	m := Model{
		tree:      tree,
		sel:       sel,
		rootLabel: rootLabel,
		savePath:  savePath,
		expanded:  map[string]bool{".": true},
		keys:      DefaultKeyMap(),
		help:      help.New(),
		styles:    DefaultStyles(),
		width:     80,
		height:    24,
	}
	m.rebuildRows()
	return m
}

// Selection returns the selection being edited.
func (m Model) Selection() *selection.Selection { return m.sel }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// rebuildRows flattens the expanded portion of the tree into visible rows.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	var visit func(e *entry.Entry, depth int)
	visit = func(e *entry.Entry, depth int) {
		for _, c := range e.Children {
			m.rows = append(m.rows, row{e: c, path: c.Path(), depth: depth})
			if c.IsDir() && m.expanded[c.Path()] {
				visit(c, depth+1)
			}
		}
	}
	visit(m.tree, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.PageUp):
			m.cursor -= m.pageSize()
			if m.cursor < 0 {
				m.cursor = 0
			}
		case key.Matches(msg, m.keys.PageDown):
			m.cursor += m.pageSize()
			if m.cursor > len(m.rows)-1 {
				m.cursor = len(m.rows) - 1
			}
		case key.Matches(msg, m.keys.Toggle):
			if r, ok := m.current(); ok {
				m.sel.Toggle(r.path)
				m.status = ""
			}
		case key.Matches(msg, m.keys.Expand):
			if r, ok := m.current(); ok && r.e.IsDir() {
				m.expanded[r.path] = true
				m.rebuildRows()
			}
		case key.Matches(msg, m.keys.Collapse):
			if r, ok := m.current(); ok && r.e.IsDir() && m.expanded[r.path] {
				delete(m.expanded, r.path)
				m.rebuildRows()
			}
		case key.Matches(msg, m.keys.Save):
			if err := selection.Save(m.savePath, m.rootLabel, m.sel); err != nil {
				m.status = "save failed: " + err.Error()
			} else {
				m.status = "saved " + m.savePath
			}
		}
		m.clampOffset()
		return m, nil
	}
	return m, nil
}

func (m Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) pageSize() int {
	n := m.listHeight()
	if n < 1 {
		return 1
	}
	return n
}

// listHeight is the number of rows visible between header and footer.
func (m Model) listHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) headerLine() string {
	selected := m.sel.SelectedSize(m.tree)
	return fmt.Sprintf("qap %s - selected %s of %s",
		m.rootLabel, entry.HumanSize(selected), entry.HumanSize(m.tree.FullSize))
}
