package engine

import (
	"context"
	"log/slog"

	"github.com/hupe1980/kdknn/report"
	"github.com/hupe1980/kdknn/resource"
)

// Logger is the structured logging surface the engine needs.
// *slog.Logger satisfies it.
type Logger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Option defines a configuration option for the Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for the coordinator. Records carry no rank or
// variant field; callers add them to l.
func WithLogger(l Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetricsObserver sets the metrics observer for the coordinator.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(c *Coordinator) {
		if observer != nil {
			c.metrics = observer
		}
	}
}

// WithSink sets where results are emitted. Defaults to report.Discard.
func WithSink(s report.Sink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithResourceController charges KD-tree memory against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(c *Coordinator) {
		c.rc = rc
	}
}

func discardLogger() Logger {
	return slog.New(slog.DiscardHandler)
}
