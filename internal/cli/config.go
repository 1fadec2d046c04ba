package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lspinstall/internal/config"
	"lspinstall/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the installer configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config.yaml with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for mistakes",
		RunE:  runConfigValidate,
	}
}

func loadConfig() (config.Config, error) {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(pp.ConfigFile)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return err
	}
	exists, err := paths.FileExists(pp.ConfigFile)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if exists {
		return fmt.Errorf("%s already exists", pp.ConfigFile)
	}
	if err := os.MkdirAll(pp.Root, 0o755); err != nil {
		return fmt.Errorf("create home: %w", err)
	}
	if err := config.Default().Save(pp.ConfigFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Wrote"), pp.ConfigFile)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, cfg)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results := cfg.Validate()
	if outputJSON {
		if results == nil {
			results = []config.ValidationResult{}
		}
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, okStyle.Render("config OK"))
		}
		for _, r := range results {
			label := warnStyle.Render(r.Level)
			if r.Level == "error" {
				label = errStyle.Render(r.Level)
			}
			fmt.Fprintf(out, "%s: %s\n", label, r.Message)
		}
	}

	if config.HasErrors(results) {
		return errors.New("configuration has errors")
	}
	return nil
}
