package pip

import (
	"io"
	"path/filepath"

	"lspinstall/internal/process"
	"lspinstall/internal/result"
)

// Logger is the logging surface the installer writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}

// Settings carries the user configuration that affects an install.
type Settings struct {
	// InstallArgs are passed to "pip install" between "-U" and the packages.
	InstallArgs []string
	// Python is an interpreter tried before the defaults when creating the
	// virtual environment.
	Python string
	// UpgradePip upgrades pip inside the new environment before installing.
	UpgradePip bool
}

// Cwd is the working root of one install attempt. It is owned by a single
// InstallContext and is not safe for concurrent mutation.
type Cwd struct {
	path       string
	promotions int
}

// NewCwd returns a working root at path.
func NewCwd(path string) *Cwd {
	return &Cwd{path: path}
}

// Get returns the current working root.
func (c *Cwd) Get() string {
	return c.path
}

// Promote makes the subdirectory sub the new working root and returns it.
func (c *Cwd) Promote(sub string) string {
	c.path = filepath.Join(c.path, sub)
	c.promotions++
	return c.path
}

// Promotions reports how many times the root has been promoted.
func (c *Cwd) Promotions() int {
	return c.promotions
}

// InstallContext is the per-attempt state handed to Install. It is created
// for one attempt and not reused.
type InstallContext struct {
	// RequestedVersion pins the primary package; absent means latest.
	RequestedVersion result.Optional[string]
	Spawner          process.Spawner
	Cwd              *Cwd
	Settings         Settings
	Logger           Logger
	// Output, when set, receives pip's output while it runs.
	Output io.Writer

	receipt result.Optional[Receipt]
}

// NewInstallContext returns a context rooted at dir.
func NewInstallContext(spawner process.Spawner, dir string, settings Settings) *InstallContext {
	return &InstallContext{
		Spawner:  spawner,
		Cwd:      NewCwd(dir),
		Settings: settings,
	}
}

// WithVersion pins the primary package to version. An empty version clears
// the pin.
func (c *InstallContext) WithVersion(version string) *InstallContext {
	c.RequestedVersion = result.OfNonEmpty(version)
	return c
}

// Receipt returns the receipt written by a successful install.
func (c *InstallContext) Receipt() result.Optional[Receipt] {
	return c.receipt
}

func (c *InstallContext) logger() Logger {
	if c.Logger == nil {
		return noopLogger{}
	}
	return c.Logger
}
