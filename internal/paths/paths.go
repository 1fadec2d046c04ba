package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"lspinstall/internal/config"
)

// HomeEnv overrides the default tool home.
const HomeEnv = "LSPINSTALL_HOME"

// Paths captures canonical locations under the tool home.
type Paths struct {
	Root         string
	ConfigFile   string
	PackagesDir  string
	LogsDir      string
	ReceiptsFile string
}

var (
	goos        = runtime.GOOS
	userHomeDir = os.UserHomeDir
)

// Resolve determines the tool home from the optional --home flag, then
// LSPINSTALL_HOME, then the per-OS data directory.
func Resolve(homeFlag string) (Paths, error) {
	root, err := homeRoot(homeFlag)
	if err != nil {
		return Paths{}, err
	}
	return newPaths(root), nil
}

func homeRoot(homeFlag string) (string, error) {
	if flag := strings.TrimSpace(homeFlag); flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		return abs, nil
	}
	if override, ok := os.LookupEnv(HomeEnv); ok && override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", HomeEnv, err)
		}
		return abs, nil
	}

	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "lspinstall"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "lspinstall"), nil
		}
		return filepath.Join(home, "AppData", "Local", "lspinstall"), nil
	default:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "lspinstall"), nil
		}
		return filepath.Join(home, ".local", "share", "lspinstall"), nil
	}
}

func newPaths(root string) Paths {
	return Paths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "config.yaml"),
		PackagesDir:  filepath.Join(root, "packages"),
		LogsDir:      filepath.Join(root, "logs"),
		ReceiptsFile: filepath.Join(root, "receipts.json"),
	}
}

// ApplyConfig relocates the packages directory when install_root is set.
// Relative values resolve against the tool home.
func ApplyConfig(p Paths, cfg config.Config) Paths {
	if root := strings.TrimSpace(cfg.InstallRoot); root != "" {
		p.PackagesDir = resolvePath(p.Root, root)
	}
	return p
}

// PackageDir returns the install directory for a named server.
func (p Paths) PackageDir(name string) string {
	return filepath.Join(p.PackagesDir, name)
}

func resolvePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureDirs creates the home, packages and logs directories.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.PackagesDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
