// Package logger provides structured logging for the pipeline and the API.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger for application-wide logging
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json

	// Output defaults to stdout.
	Output io.Writer
}

// New creates a new structured logger
func New(cfg Config) *Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithComponent returns a logger with a component attribute
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With("component", component)}
}

// WithJob returns a logger scoped to one job invocation
func (l *Logger) WithJob(job, runID string) *Logger {
	return &Logger{Logger: l.With("job", job, "run_id", runID)}
}

// WithLocation returns a logger with location attributes
func (l *Logger) WithLocation(id int64, name string) *Logger {
	return &Logger{Logger: l.With("location_id", id, "location", name)}
}

// WithWindow returns a logger carrying the boundaries of an aggregation window
func (l *Logger) WithWindow(start, end time.Time) *Logger {
	return &Logger{Logger: l.With(
		"window_start", start.UTC().Format(time.RFC3339),
		"window_end", end.UTC().Format(time.RFC3339),
	)}
}

// Default returns a default logger for quick usage
func Default() *Logger {
	return New(Config{Level: "info", Format: "text"})
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(Config{Output: io.Discard})
}
