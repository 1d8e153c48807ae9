package selection

import (
	"sort"

	"github.com/goqap/qap/internal/entry"
)

// State is the per-path mark. Inherit defers to the nearest marked ancestor;
// the selection default applies when no ancestor is marked.
type State int

const (
	Inherit State = iota
	Include
	Exclude
)

func (s State) String() string {
	switch s {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "inherit"
	}
}

// ParseState converts the YAML vocabulary back into a State.
func ParseState(s string) (State, bool) {
	switch s {
	case "include":
		return Include, true
	case "exclude":
		return Exclude, true
	case "inherit":
		return Inherit, true
	}
	return Inherit, false
}

// Selection holds explicit marks over slash-separated paths below a scan
// root. Unmarked paths inherit from their nearest marked ancestor, falling
// back to Default.
type Selection struct {
	Default State
	marks   map[string]State
}

// New returns an empty selection: nothing is backed up until marked.
func New() *Selection {
	return &Selection{Default: Exclude, marks: map[string]State{}}
}

// Set marks a path. Setting Inherit removes the mark.
func (s *Selection) Set(path string, st State) {
	if st == Inherit {
		delete(s.marks, path)
		return
	}
	s.marks[path] = st
}

// Mark returns the explicit mark on path, or Inherit.
func (s *Selection) Mark(path string) State {
	return s.marks[path]
}

// Toggle flips a path between Include and Exclude. An unmarked path whose
// effective state is excluded becomes Include, and vice versa.
func (s *Selection) Toggle(path string) {
	if s.Effective(path) {
		s.marks[path] = Exclude
	} else {
		s.marks[path] = Include
	}
}

// Effective reports whether path is selected, resolving marks from the path
// itself up through its ancestors.
func (s *Selection) Effective(path string) bool {
	for p := path; ; p = parentOf(p) {
		if st, ok := s.marks[p]; ok && st != Inherit {
			return st == Include
		}
		if p == "." || p == "" {
			break
		}
	}
	return s.Default == Include
}

func parentOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

// Paths returns the marked paths in sorted order.
func (s *Selection) Paths() []string {
	out := make([]string, 0, len(s.marks))
	for p := range s.marks {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IncludedFiles returns the sorted relative paths of all files in the tree
// whose effective state is selected.
func (s *Selection) IncludedFiles(root *entry.Entry) []string {
	var out []string
	root.Walk(func(e *entry.Entry) bool {
		if e.IsDir() {
			return true
		}
		if s.Effective(e.Path()) {
			out = append(out, e.Path())
		}
		return true
	})
	sort.Strings(out)
	return out
}

// SelectedSize sums the sizes of all selected files in the tree.
func (s *Selection) SelectedSize(root *entry.Entry) int64 {
	var total int64
	root.Walk(func(e *entry.Entry) bool {
		if !e.IsDir() && s.Effective(e.Path()) {
			total += e.Size
		}
		return true
	})
	return total
}
