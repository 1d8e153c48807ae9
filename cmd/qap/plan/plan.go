package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goqap/qap/internal/config"
	"github.com/goqap/qap/internal/report"
	scanner "github.com/goqap/qap/internal/scan"
	"github.com/goqap/qap/internal/selection"
)

var (
	cfgPath    string
	flagOut    string
	flagPretty bool
)

// Cmd implements `qap plan`: resolve the configured selection against the
// tree and print what would be backed up.
var Cmd = &cobra.Command{
	Use:           "plan",
	Short:         "Resolve the backup selection and print the plan",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		cfg, err := config.Parse(cfgPath)
		if err != nil {
			return err
		}
		p, err := Resolve(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return report.Write(report.Settings{Out: flagOut, Pretty: flagPretty}, p)
	},
}

// Resolve scans the configured root and applies the configured selection
// source: a saved selection file or an inline rule.
func Resolve(ctx context.Context, cfg config.Config) (report.Plan, error) {
	root := "."
	if cfg.Root.HasPath {
		root = cfg.Root.Path
	}
	mode := scanner.ModeFailFast
	if cfg.Errors.HasMode {
		mode = cfg.Errors.Mode
	}
	res, err := scanner.Tree(ctx, scanner.Options{
		Root:           root,
		NoGitignore:    cfg.Discovery.NoGitignore,
		FollowSymlinks: cfg.Discovery.FollowSymlinks,
		ErrorMode:      mode,
	})
	if err != nil {
		return report.Plan{}, err
	}

	var sel *selection.Selection
	switch {
	case cfg.Selection.HasPath:
		sel, _, err = selection.Load(cfg.Selection.Path)
		if err != nil {
			return report.Plan{}, err
		}
	case cfg.Rules.HasInline:
		rule, err := selection.CompileRule(cfg.Rules.Inline)
		if err != nil {
			return report.Plan{}, err
		}
		var ruleErrs []selection.RuleError
		sel, ruleErrs, err = selection.Apply(rule, res.Tree, selection.ApplyOptions{
			Workers:   cfg.Workers.Count,
			KeepGoing: mode == scanner.ModeKeepGoing,
		})
		if err != nil {
			return report.Plan{}, err
		}
		// Rule errors only surface in keep-going mode; the affected files
		// simply stay unselected.
		p := report.BuildPlan(root, res.Tree, sel, cfg.Destination.Spec)
		p.RuleErrors = ruleErrs
		return p, nil
	default:
		return report.Plan{}, errors.New("config needs rules.inline or selectionFile")
	}

	return report.BuildPlan(root, res.Tree, sel, cfg.Destination.Spec), nil
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&flagOut, "out", "-", "Output path, - for stdout")
	Cmd.Flags().BoolVar(&flagPretty, "pretty", false, "Pretty JSON output")
}
