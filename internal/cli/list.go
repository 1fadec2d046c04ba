package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lspinstall/internal/receipts"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed servers and their receipts",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	entries, err := env.store.List()
	if err != nil {
		return err
	}

	if outputJSON {
		if entries == nil {
			entries = []receipts.Entry{}
		}
		return printJSON(cmd, entries)
	}
	printReceiptTable(cmd, entries)
	return nil
}

func printReceiptTable(cmd *cobra.Command, entries []receipts.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "(no servers installed)")
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-20s %-28s %-10s %s", "NAME", "PACKAGE", "PIN", "SUPPORTING")))
	for _, e := range entries {
		secondary := make([]string, 0, len(e.Receipt.SecondarySources))
		for _, s := range e.Receipt.SecondarySources {
			secondary = append(secondary, s.Package)
		}
		fmt.Fprintf(out, "%-20s %-28s %-10s %s\n",
			e.Name, e.Receipt.PrimarySource.Package, dash(e.RequestedVersion), dash(strings.Join(secondary, ", ")))
		fmt.Fprintf(out, "  %s\n", faintStyle.Render(e.InstallDir))
	}
}
