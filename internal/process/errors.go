package process

import (
	"errors"
	"fmt"
	"strings"
)

// ExitError reports a program that ran but exited with a non-zero status.
type ExitError struct {
	Executable string
	Args       []string
	Code       int
	Stderr     string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Executable, strings.Join(e.Args, " "), e.Code)
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

// IsExitError reports whether err is, or wraps, an *ExitError.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
