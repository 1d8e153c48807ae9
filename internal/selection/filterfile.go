package selection

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goqap/qap/internal/entry"
)

// FilterRules renders the selection as an rsync filter rule list: one include
// per selected file, one per ancestor directory so rsync descends into them,
// and a trailing exclude-all. First match wins on the rsync side.
func FilterRules(sel *Selection, root *entry.Entry) []string {
	files := sel.IncludedFiles(root)
	dirs := map[string]struct{}{}
	for _, f := range files {
		for d := parentOf(f); d != "." && d != ""; d = parentOf(d) {
			dirs[d] = struct{}{}
		}
	}

	type inc struct {
		path  string
		isDir bool
	}
	all := make([]inc, 0, len(files)+len(dirs))
	for d := range dirs {
		all = append(all, inc{path: d, isDir: true})
	}
	for _, f := range files {
		all = append(all, inc{path: f})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].path < all[j].path })

	rules := make([]string, 0, len(all)+1)
	for _, in := range all {
		r := "+ /" + in.path
		if in.isDir {
			r += "/"
		}
		rules = append(rules, r)
	}
	rules = append(rules, "- *")
	return rules
}

// WriteFilterFile writes the rules to path, one per line, creating parent
// directories as needed.
func WriteFilterFile(path string, rules []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(rules, "\n")+"\n"), 0o644)
}
