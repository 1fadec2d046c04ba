package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

type RunOptions struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

type RunResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a program and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner runs programs with os/exec. Env entries are appended to the
// current process environment, so later entries override inherited ones.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	env := os.Environ()
	if len(opts.Env) > 0 {
		env = append(env, opts.Env...)
	}

	path, err := lookPathIn(command, envValue(env, "PATH"))
	if err != nil {
		return RunResult{ExitCode: -1}, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	cmd.Env = env

	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriter := io.Writer(&stdoutBuf)
	if opts.Stdout != nil {
		stdoutWriter = io.MultiWriter(&stdoutBuf, opts.Stdout)
	}
	stderrWriter := io.Writer(&stderrBuf)
	if opts.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, opts.Stderr)
	}

	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	err = cmd.Run()
	res := RunResult{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
	}
	return res, err
}

var _ Runner = CmdRunner{}

// envValue returns the last value assigned to key in env.
func envValue(env []string, key string) string {
	value := ""
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == key || (runtime.GOOS == "windows" && strings.EqualFold(k, key)) {
			value = v
		}
	}
	return value
}

// lookPathIn resolves a bare command name against pathList instead of the
// PATH of the current process. exec.LookPath only consults os.Getenv("PATH"),
// which ignores a PATH supplied for the child.
func lookPathIn(command, pathList string) (string, error) {
	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		return command, nil
	}
	exts := []string{""}
	if runtime.GOOS == "windows" {
		exts = []string{".exe", ".cmd", ".bat", ""}
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, command+ext)
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
	}
	return "", &exec.Error{Name: command, Err: exec.ErrNotFound}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
