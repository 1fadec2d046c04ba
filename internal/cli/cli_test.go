package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspinstall/internal/pip"
	"lspinstall/internal/process"
	"lspinstall/internal/process/processtest"
	"lspinstall/internal/receipts"
	"lspinstall/internal/result"
)

const outdatedJSON = `[
	{"name": "python-lsp-server", "version": "1.3.0", "latest_version": "1.4.0", "latest_filetype": "wheel"},
	{"name": "astroid", "version": "2.9.3", "latest_version": "2.11.0", "latest_filetype": "wheel"}
]`

func useSpawner(t *testing.T, spawner process.Spawner) {
	t.Helper()
	prev := newSpawner
	newSpawner = func(process.Logger) process.Spawner { return spawner }
	t.Cleanup(func() { newSpawner = prev })
}

func runCLI(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--home", home}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestInstallStoresReceipt(t *testing.T) {
	home := t.TempDir()
	spawner := processtest.New().Succeed("python3", "")
	useSpawner(t, spawner)

	out, err := runCLI(t, home, "install", "pylsp", "python-lsp-server[all]", "pylsp-mypy", "--version", "1.3.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed")

	dir := filepath.Join(home, "packages", "pylsp")
	calls := spawner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, dir, calls[0].Opts.Dir)
	assert.Equal(t, []string{"-m", "pip", "install", "-U", "python-lsp-server[all]==1.3.0", "pylsp-mypy"}, calls[1].Args)

	entry, err := receipts.NewStore(filepath.Join(home, "receipts.json")).Get("pylsp")
	require.NoError(t, err)
	assert.Equal(t, dir, entry.InstallDir)
	assert.Equal(t, "1.3.0", entry.RequestedVersion)
	assert.Equal(t, pip.Pip3Source("python-lsp-server"), entry.Receipt.PrimarySource)
	assert.Equal(t, []pip.Source{pip.Pip3Source("pylsp-mypy")}, entry.Receipt.SecondarySources)

	logs, err := os.ReadDir(filepath.Join(home, "logs"))
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestInstallUsesConfiguredPipSettings(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
pip:
  install_args: ["--proxy", "http://localhost:8080"]
`), 0o644))
	spawner := processtest.New().Succeed("python3", "")
	useSpawner(t, spawner)

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)

	calls := spawner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-m", "pip", "install", "-U", "--proxy", "http://localhost:8080", "python-lsp-server"}, calls[1].Args)
}

func TestInstallFailureCleansUp(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New().Fail("python3").Fail("python"))

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.Error(t, err)
	assert.ErrorIs(t, err, pip.ErrVenvCreation)
	assert.Contains(t, err.Error(), "Unable to create python3 venv environment.")

	_, statErr := os.Stat(filepath.Join(home, "packages", "pylsp"))
	assert.True(t, os.IsNotExist(statErr))

	list, err := receipts.NewStore(filepath.Join(home, "receipts.json")).List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInstallRefusesExistingWithoutForce(t *testing.T) {
	home := t.TempDir()
	spawner := processtest.New().Succeed("python3", "")
	useSpawner(t, spawner)

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)

	_, err = runCLI(t, home, "install", "pylsp", "python-lsp-server")
	assert.ErrorContains(t, err, "already installed")

	_, err = runCLI(t, home, "install", "pylsp", "python-lsp-server", "--force")
	require.NoError(t, err)
	assert.Len(t, spawner.Calls(), 4)

	entries, err := os.ReadDir(filepath.Join(home, "packages"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pylsp", entries[0].Name())
}

func TestFailedForceReinstallKeepsPreviousInstall(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New().Succeed("python3", ""))

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server", "--version", "1.3.0")
	require.NoError(t, err)
	dir := filepath.Join(home, "packages", "pylsp")
	marker := filepath.Join(dir, "venv-marker")
	require.NoError(t, os.WriteFile(marker, []byte("old"), 0o644))

	useSpawner(t, processtest.New().Fail("python3").Fail("python"))
	_, err = runCLI(t, home, "install", "pylsp", "python-lsp-server", "--force")
	require.ErrorIs(t, err, pip.ErrVenvCreation)

	entry, err := receipts.NewStore(filepath.Join(home, "receipts.json")).Get("pylsp")
	require.NoError(t, err)
	assert.Equal(t, dir, entry.InstallDir)
	assert.Equal(t, "1.3.0", entry.RequestedVersion)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(filepath.Join(home, "packages"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pylsp", entries[0].Name())
}

func TestVerboseInstallLogsPipOutput(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New().On("python3", processtest.Sequence(
		processtest.Stdout(""),
		func(_ []string, opts process.SpawnOptions) result.Result[process.Output] {
			if opts.Stdout != nil {
				fmt.Fprintln(opts.Stdout, "Successfully installed python-lsp-server-1.3.0")
			}
			return result.Success(process.Output{})
		},
	)))

	_, err := runCLI(t, home, "--verbose", "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)

	logs, err := os.ReadDir(filepath.Join(home, "logs"))
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	data, err := os.ReadFile(filepath.Join(home, "logs", logs[len(logs)-1].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Successfully installed python-lsp-server-1.3.0")
}

func TestInstallRejectsBadNames(t *testing.T) {
	useSpawner(t, processtest.New())
	for _, name := range []string{"..", "a/b", `a\b`} {
		_, err := runCLI(t, t.TempDir(), "install", name, "pkg")
		assert.Error(t, err, "name %q", name)
	}
}

func TestVersionCommand(t *testing.T) {
	home := t.TempDir()
	spawner := processtest.New().
		Succeed("python3", "").
		Succeed("python", `[{"name": "python-lsp-server", "version": "1.3.0"}]`)
	useSpawner(t, spawner)

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)

	out, err := runCLI(t, home, "--json", "version", "pylsp")
	require.NoError(t, err)

	var report versionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, versionReport{Name: "pylsp", Package: "python-lsp-server", Version: "1.3.0"}, report)

	list := spawner.Calls("python")
	require.Len(t, list, 1)
	assert.Equal(t, filepath.Join(home, "packages", "pylsp"), list[0].Opts.Dir)
}

func TestVersionCommandUnknownServer(t *testing.T) {
	useSpawner(t, processtest.New())
	_, err := runCLI(t, t.TempDir(), "version", "missing")
	assert.ErrorIs(t, err, receipts.ErrNotInstalled)
}

func TestOutdatedCommand(t *testing.T) {
	home := t.TempDir()
	spawner := processtest.New().
		Succeed("python3", "").
		Succeed("python", outdatedJSON)
	useSpawner(t, spawner)

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)
	_, err = runCLI(t, home, "install", "jedi", "jedi-language-server")
	require.NoError(t, err)

	out, err := runCLI(t, home, "--json", "outdated")
	require.NoError(t, err)

	var rows []outdatedRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []outdatedRow{
		{Name: "jedi", Package: "jedi-language-server"},
		{Name: "pylsp", Package: "python-lsp-server", Outdated: true, Current: "1.3.0", Latest: "1.4.0", Kind: "minor"},
	}, rows)

	out, err = runCLI(t, home, "outdated", "jedi")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestOutdatedCommandReportsFailures(t *testing.T) {
	home := t.TempDir()
	spawner := processtest.New().Succeed("python3", "").Fail("python")
	useSpawner(t, spawner)

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server")
	require.NoError(t, err)

	out, err := runCLI(t, home, "outdated")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pylsp: pip failed")
	assert.Contains(t, out, "error:")
}

func TestCheckOutdatedSeparatesPipFailures(t *testing.T) {
	entries := []receipts.Entry{{
		Name:    "pylsp",
		Receipt: pip.Receipt{PrimarySource: pip.Pip3Source("python-lsp-server")},
	}}

	rows, errs := checkOutdated(context.Background(), processtest.New().Fail("python"), entries, 1)
	require.Len(t, errs, 1)
	assert.True(t, process.IsExitError(errs[0]))
	assert.Contains(t, rows[0].Error, "pip failed")

	rows, errs = checkOutdated(context.Background(), processtest.New(), entries, 1)
	require.Len(t, errs, 1)
	assert.False(t, process.IsExitError(errs[0]))
	assert.ErrorIs(t, errs[0], processtest.ErrNotScripted)
	assert.NotContains(t, rows[0].Error, "pip failed")
}

func TestCheckOutdatedReportsCancellation(t *testing.T) {
	spawner := processtest.New().Succeed("python", "[]")
	entries := []receipts.Entry{
		{Name: "a", Receipt: pip.Receipt{PrimarySource: pip.Pip3Source("pkg")}},
		{Name: "b", Receipt: pip.Receipt{PrimarySource: pip.Pip3Source("pkg")}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, errs := checkOutdated(ctx, spawner, entries, 1)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errors.Join(errs...), context.Canceled)
	assert.Empty(t, spawner.Calls())
	for _, r := range rows {
		assert.NotEmpty(t, r.Error)
	}
}

func TestCheckOutdatedRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	spawner := processtest.New().On("python", func([]string, process.SpawnOptions) result.Result[process.Output] {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return result.Success(process.Output{Stdout: "[]"})
	})

	entries := make([]receipts.Entry, 6)
	for i := range entries {
		entries[i] = receipts.Entry{
			Name:    string(rune('a' + i)),
			Receipt: pip.Receipt{PrimarySource: pip.Pip3Source("pkg")},
		}
	}

	rows, errs := checkOutdated(context.Background(), spawner, entries, 2)
	assert.Empty(t, errs)
	require.Len(t, rows, 6)
	for i, r := range rows {
		assert.Equal(t, entries[i].Name, r.Name)
		assert.False(t, r.Outdated)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Len(t, spawner.Calls(), 6)
}

func TestListAndUninstall(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New().Succeed("python3", ""))

	_, err := runCLI(t, home, "install", "pylsp", "python-lsp-server", "pylsp-mypy")
	require.NoError(t, err)

	out, err := runCLI(t, home, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pylsp")
	assert.Contains(t, out, "pylsp-mypy")

	_, err = runCLI(t, home, "uninstall", "pylsp")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(home, "packages", "pylsp"))
	assert.True(t, os.IsNotExist(statErr))

	out, err = runCLI(t, home, "--json", "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestConfigCommands(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New())

	out, err := runCLI(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_concurrency: 4")

	out, err = runCLI(t, home, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "config OK")

	out, err = runCLI(t, home, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")
	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_concurrency: 4")

	_, err = runCLI(t, home, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("max_concurrency: -2\n"), 0o644))
	out, err = runCLI(t, home, "config", "validate")
	assert.EqualError(t, err, "configuration has errors")
	assert.Contains(t, out, "max_concurrency must be >= 0")
}

func TestUpgradeKind(t *testing.T) {
	cases := []struct{ current, latest, want string }{
		{"1.3.0", "2.0.0", "major"},
		{"1.3.0", "1.4.0", "minor"},
		{"1.3.0", "1.3.1", "patch"},
		{"1.4.0", "1.3.0", ""},
		{"garbage", "1.0.0", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, upgradeKind(tc.current, tc.latest), "%s -> %s", tc.current, tc.latest)
	}
}

func TestDoctorCommand(t *testing.T) {
	home := t.TempDir()
	useSpawner(t, processtest.New().Succeed("python3", "Python 3.11.4").Fail("python"))

	out, err := runCLI(t, home, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "3.11.4")
	assert.Contains(t, out, "ERROR")

	useSpawner(t, processtest.New().Fail("python3").Fail("python"))
	_, err = runCLI(t, home, "doctor")
	assert.ErrorIs(t, err, pip.ErrVenvCreation)
}
