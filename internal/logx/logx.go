package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures a run logger.
type Options struct {
	// Level is a charmbracelet/log level name; empty means info.
	Level string
	// Echo, when set, receives every record in addition to the log file.
	Echo io.Writer
}

// New creates a logger that writes to a timestamped file inside logsDir. The
// returned closer should be closed when logging is no longer needed.
func New(logsDir string, opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(logsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = file
	if opts.Echo != nil {
		w = io.MultiWriter(file, opts.Echo)
	}
	return NewWriter(w, level), file, nil
}

// NewWriter returns a logger writing timestamped records to w.
func NewWriter(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Writer returns a writer that logs each write to l as a record at level.
// Records below the logger's level are dropped.
func Writer(l *log.Logger, level log.Level) io.Writer {
	return l.StandardLog(log.StandardLogOptions{ForceLevel: level}).Writer()
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return NewWriter(io.Discard, log.FatalLevel)
}

// ParseLevel maps a level name to a log level. Empty means info.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return Discard()
}
