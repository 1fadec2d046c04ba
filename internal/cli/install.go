package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lspinstall/internal/logx"
	"lspinstall/internal/paths"
	"lspinstall/internal/pip"
	"lspinstall/internal/receipts"
)

var (
	installVersion string
	installForce   bool
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <name> <package> [supporting-package...]",
		Short: "Install a language server and its supporting packages into a virtual environment",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runInstall,
	}

	cmd.Flags().StringVar(&installVersion, "version", "", "Version to pin the primary package to")
	cmd.Flags().BoolVar(&installForce, "force", false, "Reinstall even if the server is already installed")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if err := validateServerName(name); err != nil {
		return err
	}
	packages := args[1:]

	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	dir := env.paths.PackageDir(name)
	logger := logx.FromContext(cmd.Context()).With("attempt", uuid.NewString(), "server", name)

	exists, err := paths.DirExists(dir)
	if err != nil {
		return fmt.Errorf("stat install dir: %w", err)
	}
	backup := ""
	if exists {
		if !installForce {
			return fmt.Errorf("%s is already installed in %s (use --force to reinstall)", name, dir)
		}
		if backup, err = setAside(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		restore(logger, dir, backup)
		return fmt.Errorf("create install dir: %w", err)
	}

	logger.Info("install requested", "packages", packages, "version", installVersion)

	ic := pip.NewInstallContext(env.spawner, dir, env.cfg.PipSettings()).WithVersion(installVersion)
	ic.Logger = logger
	if verbose {
		ic.Output = logx.Writer(logger, log.DebugLevel)
	}

	started := time.Now()
	receipt, err := pip.Install(cmd.Context(), ic, packages).Unwrap()
	if err != nil {
		logger.Error("install failed", "err", err)
		restore(logger, dir, backup)
		return fmt.Errorf("install %s: %w", name, err)
	}
	logger.Info("install finished", "elapsed", time.Since(started).Round(time.Millisecond))

	entry := receipts.Entry{
		Name:             name,
		InstallDir:       dir,
		Receipt:          receipt,
		RequestedVersion: installVersion,
		InstalledAt:      time.Now().UTC(),
	}
	if err := env.store.Put(entry); err != nil {
		restore(logger, dir, backup)
		return err
	}
	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			logger.Warn("remove previous install failed", "dir", backup, "err", err)
		}
	}

	if outputJSON {
		return printJSON(cmd, entry)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) into %s\n",
		okStyle.Render("Installed"), name, receipt.PrimarySource.Package, dir)
	return nil
}

// setAside renames an existing install next to itself so a failed reinstall
// can put it back. The venv is renamed back before use, so the absolute
// paths baked into its scripts stay valid.
func setAside(dir string) (string, error) {
	backup, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+".old-")
	if err != nil {
		return "", fmt.Errorf("set aside previous install: %w", err)
	}
	// MkdirTemp only reserves the name.
	if err := os.Remove(backup); err != nil {
		return "", fmt.Errorf("set aside previous install: %w", err)
	}
	if err := os.Rename(dir, backup); err != nil {
		return "", fmt.Errorf("set aside previous install: %w", err)
	}
	return backup, nil
}

// restore removes a failed install in dir and moves backup, if any, back.
func restore(logger *log.Logger, dir, backup string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn("cleanup failed", "dir", dir, "err", err)
		return
	}
	if backup == "" {
		return
	}
	if err := os.Rename(backup, dir); err != nil {
		logger.Warn("restore previous install failed", "dir", dir, "backup", backup, "err", err)
		return
	}
	logger.Info("restored previous install", "dir", dir)
}

func validateServerName(name string) error {
	switch {
	case name == "":
		return errors.New("server name is required")
	case name == "." || name == "..":
		return fmt.Errorf("invalid server name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("server name %q must not contain path separators", name)
	}
	return nil
}
