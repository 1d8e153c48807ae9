package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/goqap/qap/internal/entry"
)

// Error modes mirror the config vocabulary: fail-fast aborts the walk on the
// first problem, keep-going records the problem and continues.
const (
	ModeFailFast  = "fail-fast"
	ModeKeepGoing = "keep-going"
)

// Options control a tree scan.
type Options struct {
	Root           string
	NoGitignore    bool
	FollowSymlinks bool
	ErrorMode      string
}

// Error is a per-path scan problem collected in keep-going mode.
type Error struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result holds the scanned tree and any non-fatal errors.
type Result struct {
	Tree   *entry.Entry `json:"tree"`
	Errors []Error      `json:"errors,omitempty"`
}

// SortErrors orders errors by (path, message) so output is deterministic.
func SortErrors(errs []Error) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Message < errs[j].Message
	})
}

// Tree walks opts.Root and returns the entry tree with sizes aggregated.
// Children are sorted by name (directories first) and .gitignore patterns are
// honored unless disabled, so repeated scans of an unchanged tree are
// identical.
func Tree(ctx context.Context, opts Options) (Result, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("scan: %v", err)
	}
	if fi, err := os.Stat(absRoot); err != nil {
		return Result{}, fmt.Errorf("scan: %v", err)
	} else if !fi.IsDir() {
		return Result{}, fmt.Errorf("scan: not a directory: %s", root)
	}

	w := &walker{
		absRoot:     absRoot,
		opts:        opts,
		visitedDirs: map[string]struct{}{},
	}
	rootEntry := entry.NewDir(".", ".")
	if err := w.walkDir(ctx, rootEntry, absRoot, ".", newIgnoreSet(absRoot, opts.NoGitignore)); err != nil {
		return Result{}, err
	}
	rootEntry.SortChildren()
	SortErrors(w.errs)
	return Result{Tree: rootEntry, Errors: w.errs}, nil
}

type walker struct {
	absRoot     string
	opts        Options
	errs        []Error
	visitedDirs map[string]struct{}
}

func (w *walker) fail(rel string, err error) error {
	if w.opts.ErrorMode == ModeKeepGoing {
		w.errs = append(w.errs, Error{Path: filepath.ToSlash(rel), Message: err.Error()})
		return nil
	}
	return fmt.Errorf("scan: %s: %v", filepath.ToSlash(rel), err)
}

func (w *walker) walkDir(ctx context.Context, parent *entry.Entry, absDir, relDir string, ign *ignoreSet) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan: %v", err)
	}

	// Symlink cycle protection: each canonical directory is visited once.
	canon, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return w.fail(relDir, err)
	}
	if _, seen := w.visitedDirs[canon]; seen {
		return nil
	}
	w.visitedDirs[canon] = struct{}{}

	dirents, err := os.ReadDir(absDir)
	if err != nil {
		return w.fail(relDir, err)
	}
	ign = ign.enter(relDir)

	for _, d := range dirents {
		name := d.Name()
		relChild := name
		if relDir != "." {
			relChild = path.Join(relDir, name)
		}
		absChild := filepath.Join(absDir, name)

		info, err := d.Info()
		if err != nil {
			if err := w.fail(relChild, err); err != nil {
				return err
			}
			continue
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		isDir := d.IsDir()
		size := info.Size()
		if isSymlink {
			target, err := os.Stat(absChild)
			if err != nil {
				if err := w.fail(relChild, err); err != nil {
					return err
				}
				continue
			}
			if target.IsDir() {
				if !w.opts.FollowSymlinks {
					continue
				}
				isDir = true
			} else {
				size = target.Size()
			}
		}

		if ign.match(relChild, isDir) {
			continue
		}

		if isDir {
			child := entry.NewDir(relDir, name)
			if err := w.walkDir(ctx, child, absChild, relChild, ign); err != nil {
				return err
			}
			parent.Append(child)
			continue
		}
		parent.Append(entry.NewFile(relDir, name, size))
	}
	return nil
}
