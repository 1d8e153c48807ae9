package report

import (
	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/selection"
)

// EntryRecord is the per-file record used in NDJSON output.
type EntryRecord struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Dir      bool   `json:"dir,omitempty"`
	FullSize int64  `json:"fullSize,omitempty"`
}

// FlattenFiles lists every file of the tree as a record, in tree order.
func FlattenFiles(tree *entry.Entry) []any {
	var out []any
	tree.Walk(func(e *entry.Entry) bool {
		if e == tree {
			return true
		}
		rec := EntryRecord{Path: e.Path(), Size: e.Size}
		if e.IsDir() {
			rec.Dir = true
			rec.FullSize = e.FullSize
		}
		out = append(out, rec)
		return true
	})
	return out
}

// BuildPlan resolves a selection over a scanned tree into the backup plan.
func BuildPlan(root string, tree *entry.Entry, sel *selection.Selection, destination string) Plan {
	p := Plan{
		Root:        root,
		Destination: destination,
		Included:    []PlanEntry{},
		FilterRules: selection.FilterRules(sel, tree),
	}
	sizes := map[string]int64{}
	tree.Walk(func(e *entry.Entry) bool {
		if !e.IsDir() {
			sizes[e.Path()] = e.Size
		}
		return true
	})
	for _, path := range sel.IncludedFiles(tree) {
		size := sizes[path]
		p.Included = append(p.Included, PlanEntry{Path: path, Size: size})
		p.TotalSize += size
	}
	return p
}
