package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/selection"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.headerLine()))
	b.WriteByte('\n')

	h := m.listHeight()
	end := m.offset + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = m.styles.Cursor.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i := end - m.offset; i < h; i++ {
		b.WriteByte('\n')
	}

	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRow(r row) string {
	included := m.sel.Effective(r.path)
	marker := "[ ]"
	switch m.sel.Mark(r.path) {
	case selection.Include:
		marker = "[x]"
	case selection.Exclude:
		marker = "[-]"
	default:
		if included {
			// selected through an ancestor mark
			marker = "[~]"
		}
	}

	name := r.e.Name
	size := r.e.Size
	if r.e.IsDir() {
		name += "/"
		size = r.e.FullSize
		name = m.styles.Dir.Render(name)
	}

	indent := strings.Repeat("  ", r.depth)
	left := fmt.Sprintf("%s %s%s", marker, indent, name)
	right := m.styles.Size.Render(entry.HumanSize(size))

	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if pad < 1 {
		pad = 1
	}
	line := left + strings.Repeat(" ", pad) + right
	if included {
		return m.styles.Included.Render(line)
	}
	return m.styles.Excluded.Render(line)
}
