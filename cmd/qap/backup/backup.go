package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	planpkg "github.com/goqap/qap/cmd/qap/plan"
	"github.com/goqap/qap/internal/config"
	"github.com/goqap/qap/internal/logging"
	"github.com/goqap/qap/internal/report"
	"github.com/goqap/qap/internal/rsync"
	"github.com/goqap/qap/internal/selection"
)

var (
	cfgPath     string
	flagDryRun  bool
	flagLogFile string
)

// Cmd implements `qap backup`: resolve the plan and hand it to rsync.
var Cmd = &cobra.Command{
	Use:           "backup",
	Short:         "Run rsync over the resolved selection",
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
		if !cfg.Destination.HasSpec {
			return errors.New("config needs a destination for backup")
		}
		log, err := logging.New(flagLogFile)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		p, err := planpkg.Resolve(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if len(p.Included) == 0 {
			return errors.New("nothing selected for backup")
		}

		tmpDir, err := os.MkdirTemp("", "qap-backup-*")
		if err != nil {
			return err
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()
		filterFile := filepath.Join(tmpDir, "filter.rules")
		if err := selection.WriteFilterFile(filterFile, p.FilterRules); err != nil {
			return err
		}

		opts := rsync.Options{
			Source:      p.Root,
			Destination: p.Destination,
			FilterFile:  filterFile,
			DryRun:      flagDryRun || cfg.Rsync.DryRun,
		}
		if cfg.Rsync.HasProgram {
			opts.Program = cfg.Rsync.Program
		}
		if cfg.Rsync.HasExtraArgs {
			opts.ExtraArgs = cfg.Rsync.ExtraArgs
		}
		if cfg.Rsync.HasTimeout {
			opts.TimeoutMs = cfg.Rsync.TimeoutMs
		}

		log.Info("starting rsync",
			zap.String("destination", p.Destination),
			zap.Int("files", len(p.Included)),
			zap.Int64("totalSize", p.TotalSize),
			zap.Bool("dryRun", opts.DryRun))

		res, err := rsync.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		log.Info("rsync finished",
			zap.Int("exitCode", res.ExitCode),
			zap.Bool("timedOut", res.TimedOut))

		if !res.Ok() {
			msg := res.ErrorMsg
			if msg == "" && res.TimedOut {
				msg = "timeout"
			}
			if msg == "" {
				msg = lastLine(res.Stderr)
			}
			return fmt.Errorf("rsync failed (exit %d): %s", res.ExitCode, msg)
		}

		// Success output is a single JSON line.
		return report.Write(report.Settings{}, map[string]any{
			"ok":        true,
			"files":     len(p.Included),
			"totalSize": p.TotalSize,
			"dryRun":    opts.DryRun,
		})
	},
}

// lastLine returns the last non-empty line of s, for compact error messages.
func lastLine(s string) string {
	last := ""
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				last = s[start:i]
			}
			start = i + 1
		}
	}
	if last == "" {
		return "no output"
	}
	return last
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Ask rsync to simulate the transfer")
	Cmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write debug logs to this file")
}
