package entry

import "testing"

func TestAppendFileUpdatesBothSizes(t *testing.T) {
	root := NewDir(".", ".")
	root.Append(NewFile(".", "first_file", 10))

	if root.Size != 10 {
		t.Fatalf("Size = %d, want 10", root.Size)
	}
	if root.FullSize != 10 {
		t.Fatalf("FullSize = %d, want 10", root.FullSize)
	}
}

func TestAppendDirUpdatesOnlyFullSize(t *testing.T) {
	root := NewDir(".", ".")
	root.Append(NewFile(".", "first_file", 10))

	subdir := NewDir(".", "first_subdir")
	subdir.Append(NewFile("first_subdir", "second_file", 100))
	if subdir.Size != 100 || subdir.FullSize != 100 {
		t.Fatalf("subdir sizes = %d/%d, want 100/100", subdir.Size, subdir.FullSize)
	}

	root.Append(subdir)
	if root.Size != 10 {
		t.Fatalf("root Size = %d after dir append, want 10", root.Size)
	}
	if root.FullSize != 110 {
		t.Fatalf("root FullSize = %d, want 110", root.FullSize)
	}
}

func TestIsDir(t *testing.T) {
	if !NewDir(".", "d").IsDir() {
		t.Fatal("NewDir should be a directory")
	}
	if NewFile(".", "f", 0).IsDir() {
		t.Fatal("NewFile should not be a directory")
	}
}

func TestPath(t *testing.T) {
	cases := []struct {
		root, name, want string
	}{
		{".", ".", "."},
		{".", "top.txt", "top.txt"},
		{"docs", "readme.md", "docs/readme.md"},
		{"a/b", "c", "a/b/c"},
	}
	for _, c := range cases {
		e := &Entry{Root: c.root, Name: c.name}
		if got := e.Path(); got != c.want {
			t.Errorf("Path(%q,%q) = %q, want %q", c.root, c.name, got, c.want)
		}
	}
}

func buildTree() *Entry {
	root := NewDir(".", ".")
	docs := NewDir(".", "docs")
	docs.Append(NewFile("docs", "b.md", 2))
	docs.Append(NewFile("docs", "a.md", 1))
	root.Append(NewFile(".", "zz.txt", 5))
	root.Append(docs)
	return root
}

func TestSortChildrenDirsFirstThenName(t *testing.T) {
	root := buildTree()
	root.SortChildren()

	if got := root.Children[0].Name; got != "docs" {
		t.Fatalf("first child = %s, want docs", got)
	}
	if got := root.Children[1].Name; got != "zz.txt" {
		t.Fatalf("second child = %s, want zz.txt", got)
	}
	docs := root.Children[0]
	if docs.Children[0].Name != "a.md" || docs.Children[1].Name != "b.md" {
		t.Fatalf("docs children not sorted: %s, %s", docs.Children[0].Name, docs.Children[1].Name)
	}
}

func TestCount(t *testing.T) {
	root := buildTree()
	dirs, files := root.Count()
	if dirs != 1 || files != 3 {
		t.Fatalf("Count = %d dirs, %d files, want 1/3", dirs, files)
	}
}

func TestFind(t *testing.T) {
	root := buildTree()
	e := root.Find("docs/a.md")
	if e == nil || e.Size != 1 {
		t.Fatalf("Find(docs/a.md) = %+v", e)
	}
	if root.Find("missing") != nil {
		t.Fatal("Find(missing) should be nil")
	}
	if root.Find(".") != root {
		t.Fatal("Find(.) should return the receiver")
	}
}

func TestWalkPrune(t *testing.T) {
	root := buildTree()
	var visited []string
	root.Walk(func(e *Entry) bool {
		visited = append(visited, e.Name)
		return !e.IsDir() || e == root
	})
	for _, name := range visited {
		if name == "a.md" || name == "b.md" {
			t.Fatalf("pruned subtree was visited: %s", name)
		}
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, c := range cases {
		if got := HumanSize(c.in); got != c.want {
			t.Errorf("HumanSize(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
