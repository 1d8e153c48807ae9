package scan

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goqap/qap/internal/logging"
	"github.com/goqap/qap/internal/report"
	scanner "github.com/goqap/qap/internal/scan"
)

var (
	flagRoot           string
	flagNoGitignore    bool
	flagFollowSymlinks bool
	flagKeepGoing      bool
	flagOut            string
	flagPretty         bool
	flagLines          bool
	flagLogFile        string
)

// Cmd implements `qap scan`: walk the root and print the sized tree.
var Cmd = &cobra.Command{
	Use:           "scan",
	Short:         "Scan a directory tree and report entry sizes",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(flagLogFile)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		mode := scanner.ModeFailFast
		if flagKeepGoing {
			mode = scanner.ModeKeepGoing
		}
		res, err := scanner.Tree(cmd.Context(), scanner.Options{
			Root:           flagRoot,
			NoGitignore:    flagNoGitignore,
			FollowSymlinks: flagFollowSymlinks,
			ErrorMode:      mode,
		})
		if err != nil {
			return err
		}
		dirs, files := res.Tree.Count()
		log.Info("scan complete",
			zap.String("root", flagRoot),
			zap.Int("dirs", dirs),
			zap.Int("files", files),
			zap.Int64("fullSize", res.Tree.FullSize),
			zap.Int("errors", len(res.Errors)))

		settings := report.Settings{Out: flagOut, Pretty: flagPretty, Lines: flagLines}
		if flagLines {
			return report.Write(settings, report.FlattenFiles(res.Tree))
		}
		return report.Write(settings, report.Scan{
			Root:      flagRoot,
			Dirs:      dirs,
			Files:     files,
			TotalSize: res.Tree.FullSize,
			Tree:      res.Tree,
			Errors:    res.Errors,
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&flagRoot, "root", ".", "Scan root")
	Cmd.Flags().BoolVar(&flagNoGitignore, "no-gitignore", false, "Disable .gitignore handling")
	Cmd.Flags().BoolVar(&flagFollowSymlinks, "follow-symlinks", false, "Descend into symlinked directories")
	Cmd.Flags().BoolVar(&flagKeepGoing, "keep-going", false, "Collect per-path errors instead of aborting")
	Cmd.Flags().StringVar(&flagOut, "out", "-", "Output path, - for stdout")
	Cmd.Flags().BoolVar(&flagPretty, "pretty", false, "Pretty JSON output")
	Cmd.Flags().BoolVar(&flagLines, "lines", false, "NDJSON output, one entry per line")
	Cmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write debug logs to this file")
}
