// Package cli implements the lspinstall command-line interface.
//
// Commands resolve the tool home, load config.yaml, open a per-run log file
// and then hand the work to the pip backend. Receipts of installed servers
// are kept in a JSON index next to the packages directory.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	homeDir    string
	outputJSON bool
	verbose    bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lspinstall",
		Short:         "Install and inspect pip-based language servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&homeDir, "home", "", "Path to the lspinstall home directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Echo debug logs to stderr")

	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newOutdatedCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
