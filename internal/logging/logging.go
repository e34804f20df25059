// Package logging builds the slog loggers used by the shipsim commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotated log file created under the log directory.
const FileName = "shipsim.slog"

// Logger is a slog.Logger that may own a rotating file.
type Logger struct {
	*slog.Logger
	// LogFile is empty when logging to stderr.
	LogFile string
	closer  io.Closer
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
}

// New returns a JSON logger writing to a lumberjack-rotated file in dir, or
// a text logger on stderr when dir is empty.
func New(level, dir string) (*Logger, error) {
	return NewWithWriter(level, dir, os.Stderr)
}

// NewWithWriter is New with the console writer supplied.
func NewWithWriter(level, dir string, console io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if dir == "" {
		return &Logger{Logger: slog.New(slog.NewTextHandler(console, opts))}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    16, // MB
		MaxBackups: 3,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 128
	}

	l := &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, opts)),
		LogFile: w.Filename,
		closer:  w,
	}
	l.Info("logging started",
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH),
		slog.Int("NumCPUs", runtime.NumCPU()))
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
