// Package processtest provides a scripted process.Spawner for tests.
package processtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lspinstall/internal/process"
	"lspinstall/internal/result"
)

// ErrNotScripted is returned for executables without a script.
var ErrNotScripted = errors.New("executable not scripted")

// Call records a single invocation.
type Call struct {
	Executable string
	Args       []string
	Opts       process.SpawnOptions
}

// Handler produces the outcome of one invocation.
type Handler func(args []string, opts process.SpawnOptions) result.Result[process.Output]

// Spawner answers invocations from per-executable handlers and records every
// call. It is safe for concurrent use.
type Spawner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New returns a spawner with no scripted executables.
func New() *Spawner {
	return &Spawner{handlers: map[string]Handler{}}
}

// On scripts executable with handler, replacing any previous script.
func (s *Spawner) On(executable string, handler Handler) *Spawner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[executable] = handler
	return s
}

// Succeed scripts executable to exit cleanly with stdout.
func (s *Spawner) Succeed(executable, stdout string) *Spawner {
	return s.On(executable, Stdout(stdout))
}

// Fail scripts executable to fail with a non-zero exit status.
func (s *Spawner) Fail(executable string) *Spawner {
	return s.On(executable, func(args []string, _ process.SpawnOptions) result.Result[process.Output] {
		return result.Failure[process.Output](&process.ExitError{
			Executable: executable,
			Args:       args,
			Code:       1,
			Stderr:     fmt.Sprintf("%s: scripted failure", executable),
		})
	})
}

// Spawn implements process.Spawner.
func (s *Spawner) Spawn(_ context.Context, executable string, args []string, opts process.SpawnOptions) result.Result[process.Output] {
	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Executable: executable,
		Args:       append([]string(nil), args...),
		Opts:       opts,
	})
	handler, ok := s.handlers[executable]
	s.mu.Unlock()

	if !ok {
		return result.Failure[process.Output](fmt.Errorf("%s: %w", executable, ErrNotScripted))
	}
	return handler(args, opts)
}

// Calls returns the recorded invocations, optionally filtered by executable.
func (s *Spawner) Calls(executable ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(executable) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		for _, name := range executable {
			if c.Executable == name {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Executables returns the executable of every call in order.
func (s *Spawner) Executables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.calls))
	for i, c := range s.calls {
		names[i] = c.Executable
	}
	return names
}

// Stdout returns a handler that always succeeds with stdout.
func Stdout(stdout string) Handler {
	return func([]string, process.SpawnOptions) result.Result[process.Output] {
		return result.Success(process.Output{Stdout: stdout})
	}
}

// Sequence returns a handler that answers with handlers in order, repeating
// the last one once exhausted.
func Sequence(handlers ...Handler) Handler {
	var mu sync.Mutex
	idx := 0
	return func(args []string, opts process.SpawnOptions) result.Result[process.Output] {
		mu.Lock()
		h := handlers[idx]
		if idx < len(handlers)-1 {
			idx++
		}
		mu.Unlock()
		return h(args, opts)
	}
}

var _ process.Spawner = (*Spawner)(nil)
