// Package logging builds the process logger: colored console output through
// tint, optionally fanned out to a JSON log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Options controls Setup.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// OutputDir, when set, receives a timestamped JSON log file.
	OutputDir string

	// Console is the console destination. Defaults to os.Stderr so that
	// command output on stdout stays clean.
	Console io.Writer

	// NoColor disables ANSI colors on the console.
	NoColor bool
}

// Setup builds a logger from opts and installs it as the slog default.
// The returned close function flushes and closes the log file, if any.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	level := ParseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	})

	closeFn := func() error { return nil }
	handler := slog.Handler(consoleHandler)

	if opts.OutputDir != "" {
		logDir := os.ExpandEnv(opts.OutputDir)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log output directory: %w", err)
		}

		name := fmt.Sprintf("modsync_%s.log", time.Now().Format("20060102_150405"))
		logFile, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %w", err)
		}

		fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})
		handler = slogmulti.Fanout(consoleHandler, fileHandler)
		closeFn = logFile.Close
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// ParseLevel converts a level name to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
