package kdknn

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kdknn-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRank adds a rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", rank),
	}
}

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithVariant adds a variant field to the logger.
func (l *Logger) WithVariant(v Variant) *Logger {
	return &Logger{
		Logger: l.Logger.With("variant", v.String()),
	}
}

// LogRun logs the outcome of a complete run.
func (l *Logger) LogRun(ctx context.Context, s *Summary, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"variant", s.Variant.String(),
			"workers", s.Workers,
			"points", s.Points,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"variant", s.Variant.String(),
		"workers", s.Workers,
		"points", s.Points,
		"elapsed", s.Elapsed.Round(time.Microsecond),
		"frames", s.Traffic.FramesSent,
		"bytes_sent", s.Traffic.BytesSent,
		"peak_memory", s.PeakMemory,
	)
}

// LogScaling logs one measurement of a scaling series.
func (l *Logger) LogScaling(ctx context.Context, workers int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scaling run failed",
			"workers", workers,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "scaling run completed",
		"workers", workers,
		"elapsed", elapsed.Round(time.Microsecond),
	)
}
