package pip

import (
	"path/filepath"
	"runtime"
	"strings"
)

// goos is swapped in tests to exercise platform-specific candidate order.
var goos = runtime.GOOS

// Candidates returns the interpreters tried, in order, when creating the
// virtual environment. A non-empty override is tried first. Duplicates keep
// their first position.
func Candidates(override string) []string {
	defaults := []string{"python3", "python"}
	if goos == "windows" {
		defaults = []string{"python", "python3"}
	}

	seen := make(map[string]struct{}, 3)
	out := make([]string, 0, 3)
	for _, name := range append([]string{strings.TrimSpace(override)}, defaults...) {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// BinDir returns the directory holding a virtual environment's executables.
func BinDir(venv string) string {
	if goos == "windows" {
		return filepath.Join(venv, "Scripts")
	}
	return filepath.Join(venv, "bin")
}

// InterpreterPath returns the path of a virtual environment's interpreter.
func InterpreterPath(venv string) string {
	if goos == "windows" {
		return filepath.Join(BinDir(venv), "python.exe")
	}
	return filepath.Join(BinDir(venv), "python")
}

// isPathIdentity reports whether an executable identity names a file rather
// than a command to be looked up on PATH.
func isPathIdentity(executable string) bool {
	return filepath.IsAbs(executable) || strings.ContainsAny(executable, `/\`)
}
