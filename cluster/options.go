package cluster

import (
	"log/slog"

	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/resource"
)

// Option configures a World.
type Option func(*World)

// WithCompression sets the block compression applied to every frame.
func WithCompression(c wire.Compression) Option {
	return func(w *World) {
		w.compression = c
	}
}

// WithResourceController charges frames against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(w *World) {
		w.rc = rc
	}
}

// WithLogger sets the logger for collective tracing (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}
