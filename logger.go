package soa

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with container-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithField adds a field name to the logger.
func (l *Logger) WithField(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", name),
	}
}

// WithRecords adds a record count to the logger.
func (l *Logger) WithRecords(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("records", n),
	}
}

// LogBuild logs the outcome of a container build.
func (l *Logger) LogBuild(ctx context.Context, records, fields, totalBytes, alignment int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"records", records,
			"fields", fields,
			"alignment", alignment,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "build completed",
			"records", records,
			"fields", fields,
			"bytes", totalBytes,
			"alignment", alignment,
		)
	}
}

// LogAccessError logs a rejected indexed access.
func (l *Logger) LogAccessError(ctx context.Context, index, size int) {
	l.WarnContext(ctx, "index out of range",
		"index", index,
		"size", size,
	)
}
