package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lspinstall/internal/config"
	"lspinstall/internal/logx"
	"lspinstall/internal/paths"
	"lspinstall/internal/process"
	"lspinstall/internal/receipts"
)

// newSpawner builds the process spawner used by commands. Tests replace it
// with a scripted spawner.
var newSpawner = func(logger process.Logger) process.Spawner {
	return process.NewSpawner(nil, logger)
}

// runEnv is the per-invocation state shared by commands. Its logger travels
// on the command context.
type runEnv struct {
	paths   paths.Paths
	cfg     config.Config
	store   *receipts.Store
	spawner process.Spawner
	closer  io.Closer
}

func setupEnv(cmd *cobra.Command) (*runEnv, error) {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	opts := logx.Options{Level: cfg.Log.Level}
	if verbose {
		opts.Level = "debug"
		opts.Echo = cmd.ErrOrStderr()
	}
	logger, closer, err := logx.New(pp.LogsDir, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved home", "root", pp.Root, "packages", pp.PackagesDir)
	cmd.SetContext(logx.WithLogger(cmd.Context(), logger))

	return &runEnv{
		paths:   pp,
		cfg:     cfg,
		store:   receipts.NewStore(pp.ReceiptsFile),
		spawner: newSpawner(logger),
		closer:  closer,
	}, nil
}

func (e *runEnv) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
