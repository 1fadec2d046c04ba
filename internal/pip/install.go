// Package pip installs Python packages into an isolated virtual environment
// and answers version queries about them afterwards.
//
// An install runs in two phases. The first finds an interpreter that can
// create the environment ("-m venv venv"), trying candidates in priority
// order. The second runs "-m pip install -U" inside the environment with the
// configured extra arguments, the version-pinned primary package and the
// secondary packages. Only a fully successful install writes a Receipt.
package pip

import (
	"context"
	"errors"
	"io"
	"regexp"

	"lspinstall/internal/process"
	"lspinstall/internal/result"
)

// VenvDir is the name of the virtual environment directory inside the
// install root.
const VenvDir = "venv"

// Install creates a virtual environment in the context's working root,
// installs packages into it and records the receipt on the context. The
// first package is primary and receives the version pin.
//
// When no candidate interpreter can create the environment the result is
// ErrVenvCreation and nothing else runs. A failing pip invocation is
// returned as is and no receipt is written.
func Install(ctx context.Context, ic *InstallContext, packages []string) result.Result[Receipt] {
	if ctx == nil {
		ctx = context.Background()
	}
	if ic == nil || ic.Spawner == nil || ic.Cwd == nil {
		return result.Failure[Receipt](errors.New("install context requires a spawner and a working directory"))
	}
	if ic.receipt.IsPresent() {
		return result.Failure[Receipt](ErrReceiptWritten)
	}
	if len(packages) == 0 {
		return result.Failure[Receipt](ErrNoPackages)
	}

	specs := result.FlatMap(validatePin(ic.RequestedVersion), func(pin result.Optional[string]) result.Result[[]string] {
		return result.Success(packageSpecs(packages, pin))
	})
	if specs.IsFailure() {
		return result.Failure[Receipt](specs.Err())
	}

	logger := ic.logger()
	root := ic.Cwd.Get()
	logger.Infof("creating virtual environment in %s", root)

	executable := resolveFirst(Candidates(ic.Settings.Python), func(candidate string) result.Result[process.Output] {
		return ic.Spawner.Spawn(ctx, candidate, []string{"-m", "venv", VenvDir}, process.SpawnOptions{Dir: root})
	}, logger)
	resolved, ok := executable.Get()
	if !ok {
		return result.Failure[Receipt](ErrVenvCreation)
	}

	venv := ic.Cwd.Promote(VenvDir)
	python := venvInterpreter(resolved, venv)
	opts := venvSpawnOptions(venv, ic.Output)

	if ic.Settings.UpgradePip {
		logger.Infof("upgrading pip")
		upgrade := ic.Spawner.Spawn(ctx, python, []string{"-m", "pip", "install", "-U", "pip"}, opts)
		if upgrade.IsFailure() {
			return result.Failure[Receipt](upgrade.Err())
		}
	}

	args := installArgs(ic.Settings.InstallArgs, specs.GetOrZero())
	logger.Infof("installing %v", specs.GetOrZero())
	installed := ic.Spawner.Spawn(ctx, python, args, opts).OnFailure(func(err error) {
		logger.Infof("pip install failed: %v", err)
	})
	if installed.IsFailure() {
		return result.Failure[Receipt](installed.Err())
	}

	return receiptFor(packages).OnSuccess(func(r Receipt) {
		ic.receipt = result.Some(r)
	})
}

// venvInterpreter picks the executable for the second phase. A bare name
// resolves through the venv's bin dir on PATH, except on Windows where the
// Scripts dir only holds python.exe. Paths would bypass the venv entirely.
func venvInterpreter(resolved, venv string) string {
	if goos == "windows" || isPathIdentity(resolved) {
		return InterpreterPath(venv)
	}
	return resolved
}

// venvSpawnOptions runs inside venv with its executables first on PATH.
func venvSpawnOptions(venv string, output io.Writer) process.SpawnOptions {
	return process.SpawnOptions{
		Dir:         venv,
		Env:         map[string]string{"VIRTUAL_ENV": venv},
		PrependPath: []string{BinDir(venv)},
		Stdout:      output,
		Stderr:      output,
	}
}

// pinPattern is the character set of a PEP 440 version, including epochs
// ("2!1.0"), local labels ("1.0+abc") and "==" wildcards ("1.0.*").
var pinPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.!+_*-]*$`)

// validatePin rejects pins pip would not read as a single version, such as
// ones carrying their own specifier operators, separators or markers.
func validatePin(pin result.Optional[string]) result.Result[result.Optional[string]] {
	v, ok := pin.Get()
	if !ok {
		return result.Success(pin)
	}
	if !pinPattern.MatchString(v) {
		return result.Failure[result.Optional[string]](&InvalidVersionError{Version: v, Err: ErrMalformedPin})
	}
	return result.Success(pin)
}

// packageSpecs pins the first package when a version is present and passes
// the rest through unmodified.
func packageSpecs(packages []string, pin result.Optional[string]) []string {
	specs := append([]string(nil), packages...)
	pin.IfPresent(func(v string) {
		specs[0] = specs[0] + "==" + v
	})
	return specs
}

func installArgs(extra []string, specs []string) []string {
	args := make([]string, 0, 4+len(extra)+len(specs))
	args = append(args, "-m", "pip", "install", "-U")
	args = append(args, extra...)
	args = append(args, specs...)
	return args
}
