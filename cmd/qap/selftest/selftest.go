package selftest

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goqap/qap/internal/selfcheck"
)

var flagVerbose bool

// Cmd implements `qap test`: the binary checks itself and exits non-zero on
// any failing check. The verbose flag only adds diagnostic detail, it never
// changes an outcome.
var Cmd = &cobra.Command{
	Use:           "test",
	Short:         "Run the embedded self-test suite",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := selfcheck.RunAll(cmd.Context())
		if failed := selfcheck.Report(os.Stdout, results, flagVerbose); failed > 0 {
			return selfcheck.FailError{Count: failed}
		}
		return nil
	},
}

func init() {
	Cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print per-check diagnostic detail")
}
