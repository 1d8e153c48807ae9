package root

import (
	"github.com/spf13/cobra"

	"github.com/goqap/qap/cmd/qap/backup"
	"github.com/goqap/qap/cmd/qap/browse"
	"github.com/goqap/qap/cmd/qap/plan"
	"github.com/goqap/qap/cmd/qap/scan"
	"github.com/goqap/qap/cmd/qap/selftest"
	"github.com/goqap/qap/cmd/qap/version"
)

var (
	flagRoot      string
	flagSelection string
)

// NewRootCmd creates the root command for qap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qap",
		Short: "CLI: back up with rsync by selecting exactly what and what not to back up, with dir/file sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation is the interactive browser.
			return browse.Run(cmd.Context(), flagRoot, flagSelection)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVar(&flagRoot, "root", ".", "Scan root")
	cmd.Flags().StringVar(&flagSelection, "selection", browse.DefaultSelectionFile, "Selection file to load and save")

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(selftest.Cmd)
	cmd.AddCommand(scan.Cmd)
	cmd.AddCommand(plan.Cmd)
	cmd.AddCommand(backup.Cmd)
	cmd.AddCommand(browse.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
