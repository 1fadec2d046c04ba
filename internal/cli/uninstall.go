package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lspinstall/internal/logx"
)

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed server and its receipt",
		Args:  cobra.ExactArgs(1),
		RunE:  runUninstall,
	}
}

func runUninstall(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	entry, err := env.store.Get(args[0])
	if err != nil {
		return err
	}
	if err := os.RemoveAll(entry.InstallDir); err != nil {
		return fmt.Errorf("remove %s: %w", entry.InstallDir, err)
	}
	if err := env.store.Delete(entry.Name); err != nil {
		return err
	}
	logx.FromContext(cmd.Context()).Info("uninstalled", "server", entry.Name, "dir", entry.InstallDir)

	if outputJSON {
		return printJSON(cmd, map[string]string{"removed": entry.Name})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Removed"), entry.Name)
	return nil
}
