package flystore

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with flystore-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds the buffer or store name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithRecordWidth adds the record width in bytes.
func (l *Logger) WithRecordWidth(width int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("record_width", width),
	}
}

// WithCount adds a record count.
func (l *Logger) WithCount(count int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAllocate logs the creation of a buffer.
func (l *Logger) LogAllocate(ctx context.Context, kind, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocation failed",
			"kind", kind,
			"name", name,
			"size", humanize.IBytes(uint64(max(size, 0))),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "buffer allocated",
		"kind", kind,
		"name", name,
		"size", humanize.IBytes(uint64(size)),
	)
}

// LogRelease logs the release of a buffer.
func (l *Logger) LogRelease(ctx context.Context, name string, err error) {
	if err != nil {
		l.WarnContext(ctx, "release failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "buffer released",
		"name", name,
	)
}

// LogTask logs a parallel operator run.
func (l *Logger) LogTask(ctx context.Context, op string, records int64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"records", records,
			"duration", d,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, op+" completed",
		"records", records,
		"duration", d,
	)
}

// LogSnapshot logs a snapshot export or import.
func (l *Logger) LogSnapshot(ctx context.Context, op string, rawBytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op+" completed",
		"size", humanize.IBytes(uint64(rawBytes)),
	)
}
