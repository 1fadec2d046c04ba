package pip

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"lspinstall/internal/process"
)

// MinimumPython is the oldest interpreter that ships the venv module.
const MinimumPython = "3.3"

// InterpreterStatus describes one candidate interpreter.
type InterpreterStatus struct {
	Candidate string `json:"candidate"`
	Version   string `json:"version,omitempty"`
	Minimum   string `json:"minimum"`
	Satisfied bool   `json:"satisfied"`
	Error     string `json:"error,omitempty"`
}

var pythonVersionRegex = regexp.MustCompile(`([0-9]+)\.([0-9]+)(?:\.([0-9]+))?`)

// Probe asks every candidate interpreter for its version, in candidate
// order, and checks it against MinimumPython. It never stops early.
func Probe(ctx context.Context, spawner process.Spawner, override string) []InterpreterStatus {
	minimum := goversion.Must(goversion.NewVersion(MinimumPython))
	candidates := Candidates(override)
	statuses := make([]InterpreterStatus, 0, len(candidates))
	for _, candidate := range candidates {
		status := InterpreterStatus{Candidate: candidate, Minimum: MinimumPython}
		out, err := spawner.Spawn(ctx, candidate, []string{"--version"}, process.SpawnOptions{}).Unwrap()
		if err != nil {
			status.Error = err.Error()
			statuses = append(statuses, status)
			continue
		}

		// Python 2 printed its version on stderr.
		version := parsePythonVersion(out.Stdout)
		if version == "" {
			version = parsePythonVersion(out.Stderr)
		}
		if version == "" {
			status.Error = fmt.Sprintf("unrecognized version output %q", firstLine(strings.TrimSpace(out.Stdout)))
			statuses = append(statuses, status)
			continue
		}
		status.Version = version

		v, err := goversion.NewVersion(version)
		switch {
		case err != nil:
			status.Error = err.Error()
		case v.LessThan(minimum):
			status.Error = fmt.Sprintf("version %s below minimum %s", version, MinimumPython)
		default:
			status.Satisfied = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func parsePythonVersion(output string) string {
	return pythonVersionRegex.FindString(firstLine(strings.TrimSpace(output)))
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
