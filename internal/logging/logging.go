// Package logging wraps slog.Logger with the contextual fields the
// automation engine attaches everywhere: run_id, step_id, tool. Adapted
// from the teacher's common/logger package (tint console handler in dev,
// JSON handler in prod).
package logging

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with contextual fields.
type Logger struct {
	*slog.Logger
}

// New creates a new logger. format is "json" or "text" (default: colorized
// console output via tint).
func New(level, format string) *Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	default:
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
			AddSource:  false,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithRunID adds run_id to the logger context.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{Logger: l.With("run_id", runID)}
}

// WithStepID adds step_id to the logger context.
func (l *Logger) WithStepID(stepID string) *Logger {
	return &Logger{Logger: l.With("step_id", stepID)}
}

// WithTool adds tool to the logger context.
func (l *Logger) WithTool(tool string) *Logger {
	return &Logger{Logger: l.With("tool", tool)}
}

// WithFields returns a logger with additional fields attached.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// Error logs an error with a stack trace, matching the teacher's behavior
// of always capturing debug.Stack() on error-level logs.
func (l *Logger) Error(msg string, args ...any) {
	args = append(args, "stack", string(debug.Stack()))
	l.Logger.Error(msg, args...)
}

// ErrorContext logs an error with context and a stack trace.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	args = append(args, "stack", string(debug.Stack()))
	l.Logger.ErrorContext(ctx, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
