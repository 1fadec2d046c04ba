package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the configuration and returns structured findings.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateConcurrency()...)
	results = append(results, c.validateLogLevel()...)
	results = append(results, c.validateInstallArgs()...)
	results = append(results, c.validatePython()...)
	return results
}

// HasErrors reports whether any finding is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func (c Config) validateConcurrency() []ValidationResult {
	if c.MaxConcurrency < 0 {
		return []ValidationResult{{
			Level:   "error",
			Message: fmt.Sprintf("max_concurrency must be >= 0, got %d", c.MaxConcurrency),
		}}
	}
	return nil
}

func (c Config) validateLogLevel() []ValidationResult {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return []ValidationResult{{
			Level:   "error",
			Message: fmt.Sprintf("log.level %q is not a known level", c.Log.Level),
		}}
	}
	return nil
}

func (c Config) validateInstallArgs() []ValidationResult {
	var results []ValidationResult
	for i, arg := range c.Pip.InstallArgs {
		if strings.TrimSpace(arg) == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("pip.install_args[%d] is empty", i),
			})
		}
	}
	return results
}

func (c Config) validatePython() []ValidationResult {
	python := strings.TrimSpace(c.Pip.Python)
	if python == "" || filepath.IsAbs(python) {
		return nil
	}
	if strings.ContainsAny(python, `/\`) {
		return []ValidationResult{{
			Level:   "warning",
			Message: fmt.Sprintf("pip.python %q is a relative path; it resolves against each install directory", python),
		}}
	}
	return nil
}
