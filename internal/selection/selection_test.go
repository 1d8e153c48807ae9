package selection

import (
	"testing"

	"github.com/goqap/qap/internal/entry"
)

func buildTree() *entry.Entry {
	root := entry.NewDir(".", ".")
	docs := entry.NewDir(".", "docs")
	docs.Append(entry.NewFile("docs", "cv.pdf", 100))
	docs.Append(entry.NewFile("docs", "notes.txt", 10))
	cache := entry.NewDir("docs", "cache")
	cache.Append(entry.NewFile("docs/cache", "tmp.bin", 1000))
	docs.Append(cache)
	root.Append(docs)
	root.Append(entry.NewFile(".", "top.txt", 1))
	return root
}

func TestEffectiveDefaultExclude(t *testing.T) {
	sel := New()
	if sel.Effective("anything") {
		t.Fatal("fresh selection should select nothing")
	}
}

func TestEffectiveInheritsFromAncestor(t *testing.T) {
	sel := New()
	sel.Set("docs", Include)
	if !sel.Effective("docs/cache/tmp.bin") {
		t.Fatal("descendant should inherit include")
	}
	sel.Set("docs/cache", Exclude)
	if sel.Effective("docs/cache/tmp.bin") {
		t.Fatal("nearer ancestor exclude should win")
	}
	if !sel.Effective("docs/cv.pdf") {
		t.Fatal("sibling should stay included")
	}
}

func TestSetInheritRemovesMark(t *testing.T) {
	sel := New()
	sel.Set("docs", Include)
	sel.Set("docs", Inherit)
	if sel.Mark("docs") != Inherit {
		t.Fatal("mark should be cleared")
	}
	if sel.Effective("docs") {
		t.Fatal("cleared mark should fall back to default")
	}
}

func TestToggle(t *testing.T) {
	sel := New()
	sel.Toggle("top.txt")
	if !sel.Effective("top.txt") {
		t.Fatal("first toggle should include")
	}
	sel.Toggle("top.txt")
	if sel.Effective("top.txt") {
		t.Fatal("second toggle should exclude")
	}
}

func TestIncludedFilesAndSelectedSize(t *testing.T) {
	tree := buildTree()
	sel := New()
	sel.Set("docs", Include)
	sel.Set("docs/cache", Exclude)

	got := sel.IncludedFiles(tree)
	want := []string{"docs/cv.pdf", "docs/notes.txt"}
	if len(got) != len(want) {
		t.Fatalf("included = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("included = %v, want %v", got, want)
		}
	}
	if size := sel.SelectedSize(tree); size != 110 {
		t.Fatalf("SelectedSize = %d, want 110", size)
	}
}

func TestParseState(t *testing.T) {
	for _, s := range []State{Inherit, Include, Exclude} {
		got, ok := ParseState(s.String())
		if !ok || got != s {
			t.Fatalf("ParseState(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseState("bogus"); ok {
		t.Fatal("bogus state should be rejected")
	}
}
