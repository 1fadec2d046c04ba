package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lspinstall/internal/pip"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version <name>",
		Short: "Print the installed version of a server's primary package",
		Args:  cobra.ExactArgs(1),
		RunE:  runVersion,
	}
}

type versionReport struct {
	Name    string `json:"name"`
	Package string `json:"package"`
	Version string `json:"version"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	entry, err := env.store.Get(args[0])
	if err != nil {
		return err
	}

	version, err := pip.GetInstalledPrimaryPackageVersion(cmd.Context(), env.spawner, entry.Receipt, entry.InstallDir).Unwrap()
	if err != nil {
		return fmt.Errorf("%s: %w", entry.Name, err)
	}

	report := versionReport{
		Name:    entry.Name,
		Package: entry.Receipt.PrimarySource.Package,
		Version: version,
	}
	if outputJSON {
		return printJSON(cmd, report)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", report.Name, faintStyle.Render(report.Package), report.Version)
	return nil
}
