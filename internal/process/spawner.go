// Package process spawns external programs and reports their outcome as a
// result.Result instead of a bare error.
//
// A Spawner exposes one entry point per executable identity: a bare name such
// as "python3" or "python", or an absolute path. Identities are resolved per
// call against the PATH the child will see, so a spawner keeps no working
// directory or executable cache of its own and is safe for concurrent use by
// independent callers.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"lspinstall/internal/result"
)

// Output is what a finished program produced.
type Output struct {
	Stdout string
	Stderr string
	Code   int
}

// SpawnOptions controls the environment of a single invocation.
type SpawnOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is merged over the inherited environment.
	Env map[string]string
	// PrependPath lists directories placed in front of the inherited PATH.
	PrependPath []string
	// Stdout and Stderr, when set, receive output while the program runs.
	// The captured Output is unaffected.
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner invokes a named executable and waits for it to finish.
type Spawner interface {
	Spawn(ctx context.Context, executable string, args []string, opts SpawnOptions) result.Result[Output]
}

// Logger is the subset of a structured logger the spawner writes to.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// RunnerSpawner adapts a Runner to the Spawner interface.
type RunnerSpawner struct {
	Runner Runner
	Logger Logger
}

// NewSpawner returns a spawner backed by runner, or by CmdRunner when nil.
func NewSpawner(runner Runner, logger Logger) *RunnerSpawner {
	if runner == nil {
		runner = CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &RunnerSpawner{Runner: runner, Logger: logger}
}

// Spawn runs executable with args. A non-zero exit status is reported as a
// failure carrying an *ExitError.
func (s *RunnerSpawner) Spawn(ctx context.Context, executable string, args []string, opts SpawnOptions) result.Result[Output] {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	logger.Debugf("spawn %s %s (dir=%s)", executable, strings.Join(args, " "), opts.Dir)
	res, err := s.Runner.Run(ctx, executable, args, RunOptions{
		Dir:    opts.Dir,
		Env:    MergeEnv(os.Getenv("PATH"), opts),
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	out := Output{
		Stdout: string(res.Stdout),
		Stderr: string(res.Stderr),
		Code:   res.ExitCode,
	}
	if err == nil {
		return result.Success(out)
	}
	if res.ExitCode > 0 {
		logger.Debugf("spawn %s exited with code %d", executable, res.ExitCode)
		return result.Failure[Output](&ExitError{
			Executable: executable,
			Args:       append([]string(nil), args...),
			Code:       res.ExitCode,
			Stderr:     strings.TrimSpace(out.Stderr),
		})
	}
	logger.Debugf("spawn %s failed: %v", executable, err)
	return result.Failure[Output](fmt.Errorf("spawn %s: %w", executable, err))
}

var _ Spawner = (*RunnerSpawner)(nil)

// MergeEnv renders opts as KEY=VALUE entries to append to the inherited
// environment. inheritedPath is the PATH that PrependPath entries go in front of.
func MergeEnv(inheritedPath string, opts SpawnOptions) []string {
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		if k == "PATH" && len(opts.PrependPath) > 0 {
			continue
		}
		env = append(env, k+"="+opts.Env[k])
	}

	if len(opts.PrependPath) > 0 {
		base := inheritedPath
		if override, ok := opts.Env["PATH"]; ok {
			base = override
		}
		parts := append([]string(nil), opts.PrependPath...)
		if base != "" {
			parts = append(parts, base)
		}
		env = append(env, "PATH="+strings.Join(parts, string(os.PathListSeparator)))
	}
	return env
}
