package selfcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goqap/qap/internal/config"
	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/scan"
	"github.com/goqap/qap/internal/selection"
)

// Checks returns the full suite in execution order.
func Checks() []Check {
	return []Check{
		{Name: "entry-arithmetic", Run: checkEntryArithmetic},
		{Name: "scan-fixture", Run: checkScanFixture},
		{Name: "rule-eval", Run: checkRuleEval},
		{Name: "filter-render", Run: checkFilterRender},
		{Name: "config-parse", Run: checkConfigParse},
		{Name: "selection-roundtrip", Run: checkSelectionRoundtrip},
	}
}

// checkEntryArithmetic verifies the size aggregation contract: a file child
// contributes to both aggregates, a populated subdirectory only to the
// recursive total.
func checkEntryArithmetic(_ context.Context, d *Diag) error {
	root := entry.NewDir(".", ".")
	root.Append(entry.NewFile(".", "first_file", 10))
	if root.Size != 10 || root.FullSize != 10 {
		return fmt.Errorf("after file append: size=%d fullSize=%d, want 10/10", root.Size, root.FullSize)
	}

	subdir := entry.NewDir(".", "first_subdir")
	subdir.Append(entry.NewFile("first_subdir", "second_file", 100))
	if subdir.Size != 100 || subdir.FullSize != 100 {
		return fmt.Errorf("subdir: size=%d fullSize=%d, want 100/100", subdir.Size, subdir.FullSize)
	}

	root.Append(subdir)
	if root.Size != 10 {
		return fmt.Errorf("root local size changed to %d after dir append, want 10", root.Size)
	}
	if root.FullSize != 110 {
		return fmt.Errorf("root fullSize=%d, want 110", root.FullSize)
	}
	d.Logf("root size=%d fullSize=%d", root.Size, root.FullSize)
	return nil
}

// fixtureFiles is the scan fixture: two top-level directories, five
// top-level files, plus nested content.
var fixtureFiles = map[string]string{
	"a.txt":          "alpha",
	"b.txt":          "bravo!",
	"c.log":          "c",
	"d.dat":          "dd",
	"e.cfg":          "eeeee",
	"notes/f.txt":    "delta-delta",
	"notes/g.bin":    "ggg",
	"pics/h.raw":     "ffff",
	"pics/i.raw":     "",
	"pics/deep/j.md": "hh",
}

func writeFixture(dir string) error {
	for rel, content := range fixtureFiles {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func scanFixture(ctx context.Context) (scan.Result, string, func(), error) {
	dir, err := os.MkdirTemp("", "qap-selfcheck-*")
	if err != nil {
		return scan.Result{}, "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	if err := writeFixture(dir); err != nil {
		cleanup()
		return scan.Result{}, "", nil, err
	}
	res, err := scan.Tree(ctx, scan.Options{Root: dir})
	if err != nil {
		cleanup()
		return scan.Result{}, "", nil, err
	}
	return res, dir, cleanup, nil
}

// checkScanFixture scans a synthesized tree and verifies structure, sizes
// and determinism.
func checkScanFixture(ctx context.Context, d *Diag) error {
	res, dir, cleanup, err := scanFixture(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var dirs, files int
	for _, c := range res.Tree.Children {
		if c.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	if dirs != 2 {
		return fmt.Errorf("top-level dirs=%d, want 2", dirs)
	}
	if files != 5 {
		return fmt.Errorf("top-level files=%d, want 5", files)
	}
	allDirs, allFiles := res.Tree.Count()
	if allFiles != len(fixtureFiles) {
		return fmt.Errorf("total files=%d, want %d", allFiles, len(fixtureFiles))
	}
	d.Logf("dirs=%d files=%d", allDirs, allFiles)

	var want int64
	for _, content := range fixtureFiles {
		want += int64(len(content))
	}
	if res.Tree.FullSize != want {
		return fmt.Errorf("fullSize=%d, want %d", res.Tree.FullSize, want)
	}
	d.Logf("fullSize=%d", res.Tree.FullSize)

	again, err := scan.Tree(ctx, scan.Options{Root: dir})
	if err != nil {
		return err
	}
	b1, err := json.Marshal(res.Tree)
	if err != nil {
		return err
	}
	b2, err := json.Marshal(again.Tree)
	if err != nil {
		return err
	}
	if !bytes.Equal(b1, b2) {
		return fmt.Errorf("repeated scan produced a different tree")
	}
	return nil
}

// checkRuleEval applies an inline rule and verifies the resulting selection.
func checkRuleEval(ctx context.Context, d *Diag) error {
	res, _, cleanup, err := scanFixture(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	rule, err := selection.CompileRule(`string.sub(name, -4) == ".txt"`)
	if err != nil {
		return err
	}
	sel, ruleErrs, err := selection.Apply(rule, res.Tree, selection.ApplyOptions{Workers: 2})
	if err != nil {
		return err
	}
	if len(ruleErrs) != 0 {
		return fmt.Errorf("unexpected rule errors: %v", ruleErrs)
	}
	got := sel.IncludedFiles(res.Tree)
	want := []string{"a.txt", "b.txt", "notes/f.txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("included=%v, want %v", got, want)
	}
	d.Logf("included=%v selectedSize=%d", got, sel.SelectedSize(res.Tree))

	if _, err := selection.CompileRule("this is not lua"); err == nil {
		return fmt.Errorf("invalid rule was accepted")
	}
	return nil
}

// checkFilterRender verifies the rsync filter rule rendering.
func checkFilterRender(_ context.Context, _ *Diag) error {
	root := entry.NewDir(".", ".")
	sub := entry.NewDir(".", "docs")
	sub.Append(entry.NewFile("docs", "readme.md", 5))
	root.Append(sub)
	root.Append(entry.NewFile(".", "top.txt", 3))

	sel := selection.New()
	sel.Set("docs/readme.md", selection.Include)
	sel.Set("top.txt", selection.Include)

	got := selection.FilterRules(sel, root)
	want := []string{"+ /docs/", "+ /docs/readme.md", "+ /top.txt", "- *"}
	if len(got) != len(want) {
		return fmt.Errorf("rules=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("rule[%d]=%q, want %q", i, got[i], want[i])
		}
	}
	return nil
}

// checkConfigParse compiles a config and verifies field extraction plus
// rejection of a broken one.
func checkConfigParse(_ context.Context, d *Diag) error {
	dir, err := os.MkdirTemp("", "qap-selfcheck-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	good := filepath.Join(dir, "backup.cue")
	body := `configVersion: "1"
root: "/srv/data"
destination: "backup:/vault"
rules: inline: "size < 1000000"
workers: 4
`
	if err := os.WriteFile(good, []byte(body), 0o644); err != nil {
		return err
	}
	c, err := config.Parse(good)
	if err != nil {
		return err
	}
	if c.ConfigVersion != "1" || !c.Root.HasPath || c.Root.Path != "/srv/data" {
		return fmt.Errorf("unexpected root: %+v", c.Root)
	}
	if !c.Destination.HasSpec || c.Destination.Spec != "backup:/vault" {
		return fmt.Errorf("unexpected destination: %+v", c.Destination)
	}
	if !c.Rules.HasInline || !c.Workers.HasCount || c.Workers.Count != 4 {
		return fmt.Errorf("rules/workers not decoded: %+v %+v", c.Rules, c.Workers)
	}
	d.Logf("parsed %s", filepath.Base(good))

	bad := filepath.Join(dir, "bad.cue")
	if err := os.WriteFile(bad, []byte(`root: "/x"`), 0o644); err != nil {
		return err
	}
	if _, err := config.Parse(bad); err == nil {
		return fmt.Errorf("config without configVersion was accepted")
	}
	return nil
}

// checkSelectionRoundtrip saves a selection and loads it back unchanged.
func checkSelectionRoundtrip(_ context.Context, d *Diag) error {
	dir, err := os.MkdirTemp("", "qap-selfcheck-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	sel := selection.New()
	sel.Set("music", selection.Include)
	sel.Set("music/cache", selection.Exclude)
	sel.Set("docs/cv.pdf", selection.Include)

	path := filepath.Join(dir, "sel.qap.yaml")
	if err := selection.Save(path, "/home/u", sel); err != nil {
		return err
	}
	loaded, root, err := selection.Load(path)
	if err != nil {
		return err
	}
	if root != "/home/u" {
		return fmt.Errorf("root=%q, want /home/u", root)
	}
	for _, p := range []string{"music", "music/cache", "docs/cv.pdf"} {
		if loaded.Mark(p) != sel.Mark(p) {
			return fmt.Errorf("mark %s changed across roundtrip", p)
		}
	}
	if !loaded.Effective("music/song.mp3") {
		return fmt.Errorf("music subtree should be selected")
	}
	if loaded.Effective("music/cache/x") {
		return fmt.Errorf("excluded subtree leaked into selection")
	}
	d.Logf("marks=%d", len(sel.Paths()))
	return nil
}
