package scan

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreSet accumulates .gitignore patterns while the walk descends so each
// file is only matched against patterns from its own ancestor directories.
type ignoreSet struct {
	absRoot  string
	disabled bool
	patterns []gitignore.Pattern
}

func newIgnoreSet(absRoot string, disabled bool) *ignoreSet {
	s := &ignoreSet{absRoot: absRoot, disabled: disabled}
	if !disabled {
		s.patterns = loadPatterns(absRoot, ".")
	}
	return s
}

// enter returns the pattern set extended with the .gitignore of relDir, if
// any. The receiver is not mutated so sibling directories stay independent.
func (s *ignoreSet) enter(relDir string) *ignoreSet {
	if s.disabled || relDir == "." || relDir == "" {
		return s
	}
	extra := loadPatterns(s.absRoot, relDir)
	if len(extra) == 0 {
		return s
	}
	next := &ignoreSet{absRoot: s.absRoot, patterns: s.patterns}
	next.patterns = append(next.patterns[:len(next.patterns):len(next.patterns)], extra...)
	return next
}

// match reports whether the relative path should be skipped.
func (s *ignoreSet) match(rel string, isDir bool) bool {
	if s.disabled || len(s.patterns) == 0 {
		return false
	}
	comps := []string{}
	if rel != "." && rel != "" {
		comps = strings.Split(filepath.ToSlash(rel), "/")
	}
	return gitignore.NewMatcher(s.patterns).Match(comps, isDir)
}

// loadPatterns reads the .gitignore in relDir under absRoot, if present.
func loadPatterns(absRoot, relDir string) []gitignore.Pattern {
	b, err := os.ReadFile(filepath.Join(absRoot, filepath.FromSlash(relDir), ".gitignore"))
	if err != nil {
		return nil
	}
	var base []string
	if relDir != "." && relDir != "" {
		base = strings.Split(filepath.ToSlash(relDir), "/")
	}
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, base))
	}
	return patterns
}
