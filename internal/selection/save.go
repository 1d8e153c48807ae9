package selection

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Marshal returns canonical YAML bytes for a selection file: fixed key order,
// marks sorted by path, two-space indent, single trailing newline.
func Marshal(root string, sel *Selection) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	top.Content = append(top.Content, scalarNode("root"), scalarNode(root))
	top.Content = append(top.Content, scalarNode("default"), scalarNode(sel.Default.String()))

	marks := &yaml.Node{Kind: yaml.MappingNode}
	paths := make([]string, 0, len(sel.marks))
	for p := range sel.marks {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		marks.Content = append(marks.Content, scalarNode(p), scalarNode(sel.marks[p].String()))
	}
	top.Content = append(top.Content, scalarNode("marks"), marks)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Save writes the selection to path, creating parent directories.
func Save(path, root string, sel *Selection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := Marshal(root, sel)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

type selectionFile struct {
	Root    string            `yaml:"root"`
	Default string            `yaml:"default"`
	Marks   map[string]string `yaml:"marks"`
}

// Load reads a selection file and returns the selection and its scan root.
func Load(path string) (*Selection, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read selection: %w", err)
	}
	var f selectionFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, "", fmt.Errorf("invalid selection file: %v", err)
	}
	sel := New()
	if f.Default != "" {
		st, ok := ParseState(f.Default)
		if !ok {
			return nil, "", fmt.Errorf("invalid default state: %s", f.Default)
		}
		sel.Default = st
	}
	for p, v := range f.Marks {
		st, ok := ParseState(v)
		if !ok {
			return nil, "", fmt.Errorf("invalid mark for %s: %s", p, v)
		}
		sel.Set(p, st)
	}
	return sel, f.Root, nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
