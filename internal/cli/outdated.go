package cli

import (
	"context"
	"errors"
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lspinstall/internal/logx"
	"lspinstall/internal/pip"
	"lspinstall/internal/process"
	"lspinstall/internal/receipts"
)

func newOutdatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outdated [name...]",
		Short: "Check installed servers for newer primary package releases",
		RunE:  runOutdated,
	}
}

type outdatedRow struct {
	Name     string `json:"name"`
	Package  string `json:"package"`
	Outdated bool   `json:"outdated"`
	Current  string `json:"current_version,omitempty"`
	Latest   string `json:"latest_version,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runOutdated(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	entries, err := selectEntries(env.store, args)
	if err != nil {
		return err
	}

	rows, errs := checkOutdated(cmd.Context(), env.spawner, entries, env.cfg.Concurrency())
	logger := logx.FromContext(cmd.Context())
	for _, err := range errs {
		logger.Warn("outdated check failed", "err", err)
	}

	if outputJSON {
		if err := printJSON(cmd, rows); err != nil {
			return err
		}
	} else {
		printOutdatedTable(cmd, rows)
	}
	return errors.Join(errs...)
}

func selectEntries(store *receipts.Store, names []string) ([]receipts.Entry, error) {
	if len(names) == 0 {
		return store.List()
	}
	entries := make([]receipts.Entry, 0, len(names))
	for _, name := range names {
		entry, err := store.Get(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// checkOutdated runs one check per entry with at most limit in flight. Rows
// keep the order of entries. A not-outdated package is not an error. A pip
// that ran and exited non-zero is told apart from one that never started.
func checkOutdated(ctx context.Context, spawner process.Spawner, entries []receipts.Entry, limit int) ([]outdatedRow, []error) {
	rows := make([]outdatedRow, len(entries))
	failures := make([]error, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, entry := range entries {
		g.Go(func() error {
			row := outdatedRow{Name: entry.Name, Package: entry.Receipt.PrimarySource.Package}
			if err := gctx.Err(); err != nil {
				row.Error = err.Error()
				rows[i] = row
				return err
			}
			pkg, err := pip.CheckOutdatedPrimaryPackage(gctx, spawner, entry.Receipt, entry.InstallDir).Unwrap()
			switch {
			case errors.Is(err, pip.ErrNotOutdated):
			case process.IsExitError(err):
				row.Error = "pip failed: " + err.Error()
				failures[i] = fmt.Errorf("%s: pip failed: %w", entry.Name, err)
			case err != nil:
				row.Error = err.Error()
				failures[i] = fmt.Errorf("%s: %w", entry.Name, err)
			default:
				row.Outdated = true
				row.Current = pkg.CurrentVersion
				row.Latest = pkg.LatestVersion
				row.Kind = upgradeKind(pkg.CurrentVersion, pkg.LatestVersion)
			}
			rows[i] = row
			return nil
		})
	}
	waitErr := g.Wait()

	var errs []error
	for _, err := range failures {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if waitErr != nil {
		errs = append(errs, waitErr)
	}
	return rows, errs
}

// upgradeKind classifies the step between two versions as major, minor or
// patch. Unparseable versions yield an empty kind.
func upgradeKind(current, latest string) string {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return ""
	}
	next, err := goversion.NewVersion(latest)
	if err != nil || !next.GreaterThan(cur) {
		return ""
	}
	a, b := cur.Segments(), next.Segments()
	switch {
	case a[0] != b[0]:
		return "major"
	case a[1] != b[1]:
		return "minor"
	default:
		return "patch"
	}
}

func printOutdatedTable(cmd *cobra.Command, rows []outdatedRow) {
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "(no servers installed)")
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-20s %-28s %-12s %-12s %s", "NAME", "PACKAGE", "CURRENT", "LATEST", "STATUS")))
	for _, r := range rows {
		var status string
		switch {
		case r.Error != "":
			status = errStyle.Render("error: " + r.Error)
		case r.Outdated:
			status = warnStyle.Render("outdated")
			if r.Kind != "" {
				status += faintStyle.Render(" (" + r.Kind + ")")
			}
		default:
			status = okStyle.Render("up to date")
		}
		fmt.Fprintf(out, "%-20s %-28s %-12s %-12s %s\n", r.Name, r.Package, dash(r.Current), dash(r.Latest), status)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
