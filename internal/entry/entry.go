package entry

import (
	"path"
	"sort"
)

// Entry is one node of the scanned tree. Files carry their own byte size and a
// nil Children slice. Directories aggregate two sizes: Size is the sum of the
// direct child file sizes, FullSize is the recursive total of the subtree.
type Entry struct {
	Root     string   `json:"root"`
	Name     string   `json:"name"`
	Size     int64    `json:"size"`
	FullSize int64    `json:"fullSize"`
	Children []*Entry `json:"children,omitempty"`
}

// NewDir returns an empty directory entry rooted at root.
func NewDir(root, name string) *Entry {
	return &Entry{Root: root, Name: name, Children: []*Entry{}}
}

// NewFile returns a file entry. For files FullSize always equals Size.
func NewFile(root, name string, size int64) *Entry {
	return &Entry{Root: root, Name: name, Size: size, FullSize: size}
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.Children != nil }

// Path returns the slash-joined location of the entry below the scan root.
func (e *Entry) Path() string {
	if e.Name == "." {
		return "."
	}
	if e.Root == "" || e.Root == "." {
		return e.Name
	}
	return path.Join(e.Root, e.Name)
}

// Append adds a child and updates the size aggregates: a file contributes its
// size to both Size and FullSize, a directory only to FullSize.
func (e *Entry) Append(child *Entry) {
	e.Children = append(e.Children, child)
	if child.IsDir() {
		e.FullSize += child.FullSize
	} else {
		e.Size += child.Size
		e.FullSize += child.Size
	}
}

// SortChildren orders the whole subtree by name, directories first, so that
// serialized trees are deterministic regardless of walk order.
func (e *Entry) SortChildren() {
	if e.Children == nil {
		return
	}
	sort.Slice(e.Children, func(i, j int) bool {
		ci, cj := e.Children[i], e.Children[j]
		if ci.IsDir() != cj.IsDir() {
			return ci.IsDir()
		}
		return ci.Name < cj.Name
	})
	for _, c := range e.Children {
		c.SortChildren()
	}
}

// Walk visits the entry and its subtree depth-first in child order.
// Returning false from fn prunes the subtree below the current entry.
func (e *Entry) Walk(fn func(e *Entry) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Count returns the number of directories and files in the subtree,
// excluding the entry itself.
func (e *Entry) Count() (dirs, files int) {
	e.Walk(func(n *Entry) bool {
		if n == e {
			return true
		}
		if n.IsDir() {
			dirs++
		} else {
			files++
		}
		return true
	})
	return
}

// Find returns the entry at the given slash-separated path below e, or nil.
func (e *Entry) Find(rel string) *Entry {
	if rel == "" || rel == "." {
		return e
	}
	var found *Entry
	e.Walk(func(n *Entry) bool {
		if found != nil {
			return false
		}
		if n != e && n.Path() == rel {
			found = n
			return false
		}
		return true
	})
	return found
}
