package selection

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/goqap/qap/internal/entry"
)

// Rule is a compiled inline Lua predicate evaluated once per file. The script
// sees the globals path, name, size and dir and must yield a boolean:
// true selects the file for backup.
type Rule struct {
	code    string
	sandbox ruleSandbox
}

// RuleError is a per-path rule evaluation problem.
type RuleError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// CompileRule wraps an inline expression into a predicate body and verifies
// it parses. Expressions without an explicit return are wrapped.
func CompileRule(inline string) (*Rule, error) {
	code := strings.TrimSpace(inline)
	if code == "" {
		return nil, fmt.Errorf("empty rule")
	}
	if !strings.Contains(code, "return") {
		code = "return (" + code + ")"
	}
	L := newRuleState()
	defer L.Close()
	if _, err := L.LoadString(code); err != nil {
		return nil, fmt.Errorf("invalid rule: %v", err)
	}
	return &Rule{code: code, sandbox: defaultSandbox()}, nil
}

// Match evaluates the rule against one file entry.
func (r *Rule) Match(path string, e *entry.Entry) (bool, error) {
	globals := map[string]lua.LValue{
		"path": lua.LString(path),
		"name": lua.LString(e.Name),
		"size": lua.LNumber(float64(e.Size)),
		"dir":  lua.LBool(e.IsDir()),
	}
	ret, violation, err := r.sandbox.evalRuleScript(globals, r.code)
	if err != nil {
		return false, err
	}
	if violation != "" {
		return false, fmt.Errorf("%s", violation)
	}
	keep := ret == lua.LTrue
	return keep, nil
}

// ApplyOptions control rule application over a scanned tree.
type ApplyOptions struct {
	Workers   int
	KeepGoing bool
}

// Apply evaluates the rule against every file in the tree and returns a
// selection including the matches. In keep-going mode evaluation errors are
// collected per path and the affected files stay unselected; otherwise the
// first error aborts.
func Apply(rule *Rule, root *entry.Entry, opts ApplyOptions) (*Selection, []RuleError, error) {
	type fileRef struct {
		path string
		e    *entry.Entry
	}
	var files []fileRef
	root.Walk(func(e *entry.Entry) bool {
		if !e.IsDir() {
			files = append(files, fileRef{path: e.Path(), e: e})
		}
		return true
	})

	type res struct {
		idx  int
		keep bool
		err  error
	}
	workers := workerCount(opts.Workers)
	results := runIndexedParallel(len(files), workers, func(idx int) res {
		keep, err := rule.Match(files[idx].path, files[idx].e)
		return res{idx: idx, keep: keep, err: err}
	})

	sel := New()
	var ruleErrs []RuleError
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			if !opts.KeepGoing {
				if firstErr == nil {
					firstErr = fmt.Errorf("rule: %s: %v", files[r.idx].path, r.err)
				}
				continue
			}
			ruleErrs = append(ruleErrs, RuleError{Path: files[r.idx].path, Message: r.err.Error()})
			continue
		}
		if r.keep {
			sel.Set(files[r.idx].path, Include)
		}
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}
	sortRuleErrors(ruleErrs)
	return sel, ruleErrs, nil
}

// sortRuleErrors orders errors by (path, message) deterministically.
func sortRuleErrors(errs []RuleError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Message < errs[j].Message
	})
}
