package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/selection"
)

func browserTree() *entry.Entry {
	root := entry.NewDir(".", ".")
	docs := entry.NewDir(".", "docs")
	docs.Append(entry.NewFile("docs", "cv.pdf", 100))
	docs.Append(entry.NewFile("docs", "notes.txt", 10))
	root.Append(docs)
	root.Append(entry.NewFile(".", "top.txt", 1))
	return root
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func TestNewShowsTopLevelRows(t *testing.T) {
	m := New(browserTree(), selection.New(), "/data", "sel.yaml")
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want docs and top.txt", len(m.rows))
	}
	if m.rows[0].path != "docs" || m.rows[1].path != "top.txt" {
		t.Fatalf("rows = %v", m.rows)
	}
}

func TestExpandAndCollapse(t *testing.T) {
	m := New(browserTree(), selection.New(), "/data", "sel.yaml")
	m = press(t, m, "right")
	if len(m.rows) != 4 {
		t.Fatalf("expanded rows = %d, want 4", len(m.rows))
	}
	if m.rows[1].path != "docs/cv.pdf" || m.rows[1].depth != 1 {
		t.Fatalf("row 1 = %+v", m.rows[1])
	}
	m = press(t, m, "left")
	if len(m.rows) != 2 {
		t.Fatalf("collapsed rows = %d, want 2", len(m.rows))
	}
}

func TestToggleMarksSelection(t *testing.T) {
	sel := selection.New()
	m := New(browserTree(), sel, "/data", "sel.yaml")
	m = press(t, m, " ")
	if sel.Mark("docs") != selection.Include {
		t.Fatalf("docs mark = %v", sel.Mark("docs"))
	}
	m = press(t, m, " ")
	if sel.Mark("docs") != selection.Exclude {
		t.Fatalf("docs mark after second toggle = %v", sel.Mark("docs"))
	}
	_ = m
}

func TestCursorMovementIsClamped(t *testing.T) {
	m := New(browserTree(), selection.New(), "/data", "sel.yaml")
	m = press(t, m, "up")
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after up at top", m.cursor)
	}
	m = press(t, m, "down", "down", "down", "down")
	if m.cursor != len(m.rows)-1 {
		t.Fatalf("cursor = %d, want last row", m.cursor)
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := New(browserTree(), selection.New(), "/data", "sel.yaml")
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit command should produce tea.QuitMsg")
	}
}

func TestWindowSizeUpdatesViewport(t *testing.T) {
	m := New(browserTree(), selection.New(), "/data", "sel.yaml")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.width != 120 || m.height != 40 {
		t.Fatalf("size = %dx%d", m.width, m.height)
	}
}

func TestViewContent(t *testing.T) {
	sel := selection.New()
	sel.Set("docs", selection.Include)
	m := New(browserTree(), sel, "/data", "sel.yaml")
	m = press(t, m, "right")

	out := m.View()
	if !strings.Contains(out, "/data") {
		t.Fatalf("header missing root label:\n%s", out)
	}
	if !strings.Contains(out, "110 B of 111 B") {
		t.Fatalf("header missing sizes:\n%s", out)
	}
	if !strings.Contains(out, "[x]") {
		t.Fatalf("explicit include marker missing:\n%s", out)
	}
	if !strings.Contains(out, "[~]") {
		t.Fatalf("inherited marker missing:\n%s", out)
	}
	if !strings.Contains(out, "docs/") {
		t.Fatalf("directory suffix missing:\n%s", out)
	}
}

func TestRowAlignmentWithWideRunes(t *testing.T) {
	root := entry.NewDir(".", ".")
	root.Append(entry.NewFile(".", "日本語メモ.txt", 100))
	root.Append(entry.NewFile(".", "ascii.txt", 100))
	m := New(root, selection.New(), "/data", "sel.yaml")

	wide := lipgloss.Width(m.renderRow(m.rows[0]))
	narrow := lipgloss.Width(m.renderRow(m.rows[1]))
	if wide != narrow {
		t.Fatalf("size column misaligned: wide row %d cells, ascii row %d cells", wide, narrow)
	}
	if wide != m.width-1 {
		t.Fatalf("row width = %d cells, want %d", wide, m.width-1)
	}
}

func TestSaveKeyWritesSelection(t *testing.T) {
	sel := selection.New()
	sel.Set("top.txt", selection.Include)
	path := filepath.Join(t.TempDir(), "sel.yaml")
	m := New(browserTree(), sel, "/data", path)
	m = press(t, m, "s")
	if !strings.Contains(m.status, "saved") {
		t.Fatalf("status = %q", m.status)
	}
	loaded, root, err := selection.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if root != "/data" || loaded.Mark("top.txt") != selection.Include {
		t.Fatalf("saved selection wrong: root=%q mark=%v", root, loaded.Mark("top.txt"))
	}
}
