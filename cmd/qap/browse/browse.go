package browse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	scanner "github.com/goqap/qap/internal/scan"
	"github.com/goqap/qap/internal/selection"
	"github.com/goqap/qap/internal/tui"
)

// DefaultSelectionFile is where browse saves the selection unless overridden.
const DefaultSelectionFile = ".qap.yaml"

var (
	flagRoot      string
	flagSelection string
)

// Cmd implements `qap browse`, which is also the default mode of the bare
// `qap` invocation.
var Cmd = &cobra.Command{
	Use:           "browse",
	Short:         "Browse the tree interactively and pick what to back up",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), flagRoot, flagSelection)
	},
}

// Run scans root and opens the interactive browser, loading an existing
// selection file when present.
func Run(ctx context.Context, root, selectionPath string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("interactive browse requires a terminal (use scan/plan for scripted output)")
	}
	if selectionPath == "" {
		selectionPath = DefaultSelectionFile
	}

	res, err := scanner.Tree(ctx, scanner.Options{Root: root, ErrorMode: scanner.ModeKeepGoing})
	if err != nil {
		return err
	}

	sel, err := loadSelectionFor(root, selectionPath)
	if err != nil {
		return err
	}

	m := tui.New(res.Tree, sel, root, selectionPath)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// loadSelectionFor loads the selection file if it exists, rejecting one that
// records a different scan root: marks are relative paths and would silently
// apply to the wrong files.
func loadSelectionFor(root, selectionPath string) (*selection.Selection, error) {
	if _, err := os.Stat(selectionPath); err != nil {
		return selection.New(), nil
	}
	sel, savedRoot, err := selection.Load(selectionPath)
	if err != nil {
		return nil, err
	}
	if savedRoot != "" && !sameRoot(savedRoot, root) {
		return nil, fmt.Errorf("selection %s was saved for root %s, not %s", selectionPath, savedRoot, root)
	}
	return sel, nil
}

func sameRoot(a, b string) bool {
	if a == b {
		return true
	}
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == bb
}

func init() {
	Cmd.Flags().StringVar(&flagRoot, "root", ".", "Scan root")
	Cmd.Flags().StringVar(&flagSelection, "selection", DefaultSelectionFile, "Selection file to load and save")
}
