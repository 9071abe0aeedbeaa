package kdknn

import (
	"runtime"

	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/report"
	"github.com/hupe1980/kdknn/resource"
)

type options struct {
	workers          int
	sink             report.Sink
	compression      Compression
	limits           resource.Config
	metricsCollector MetricsCollector
	logger           *Logger
	repeats          int
}

// Option configures a run.
type Option func(*options)

// WithWorkers sets the number of ranks. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSink sets where results are emitted. Defaults to report.Discard.
func WithSink(s report.Sink) Option {
	return func(o *options) {
		if s == nil {
			s = report.Discard
		}
		o.sink = s
	}
}

// WithCompression sets the compression of frames exchanged between ranks.
//
// Compression trades CPU for fewer bytes on the wire; with in-process ranks
// it mostly shows up in the traffic statistics and the IO limit.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceLimits bounds the memory held by in-flight frames and KD-trees
// and the byte rate of exchanged frames. Zero values mean unlimited.
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.limits = cfg
	}
}

// WithMetricsCollector configures a metrics collector.
//
// If nil is passed, a no-op collector is used.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metricsCollector = c
	}
}

// WithRepeats sets how often Scale times each worker count. The measurement
// reports the mean and standard deviation. Values below 1 mean 1.
func WithRepeats(n int) Option {
	return func(o *options) {
		o.repeats = max(n, 1)
	}
}

// WithLogger configures the logger.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          runtime.GOMAXPROCS(0),
		sink:             report.Discard,
		compression:      wire.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		repeats:          1,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
