package kdknn

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/kdknn/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// PrometheusCollector for a ready-made Prometheus integration.
//
// Methods are called concurrently from every rank.
type MetricsCollector interface {
	// RecordBuild is called after each KD-tree build.
	// points is the tree size, height its number of levels.
	RecordBuild(points, height int, duration time.Duration)

	// RecordSearch is called after a rank answered all its queries for one k.
	RecordSearch(index string, k, queries int, duration time.Duration)

	// RecordExchange is called after each message exchange.
	// bytes is the payload size before compression.
	RecordExchange(op string, bytes int, duration time.Duration, err error)

	// RecordSweep is called when a rank finished one k value.
	RecordSweep(k int, duration time.Duration, err error)

	// RecordRun is called once per completed or failed run.
	RecordRun(variant string, workers int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration)              {}
func (NoopMetricsCollector) RecordSearch(string, int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordExchange(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSweep(int, time.Duration, error)            {}
func (NoopMetricsCollector) RecordRun(string, int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildPoints      atomic.Int64
	BuildTotalNanos  atomic.Int64
	SearchCount      atomic.Int64
	SearchQueries    atomic.Int64
	SearchTotalNanos atomic.Int64
	ExchangeCount    atomic.Int64
	ExchangeBytes    atomic.Int64
	ExchangeErrors   atomic.Int64
	SweepCount       atomic.Int64
	SweepErrors      atomic.Int64
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points, height int, duration time.Duration) {
	b.BuildCount.Add(1)
	b.BuildPoints.Add(int64(points))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(index string, k, queries int, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SearchQueries.Add(int64(queries))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
}

// RecordExchange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExchange(op string, bytes int, duration time.Duration, err error) {
	b.ExchangeCount.Add(1)
	b.ExchangeBytes.Add(int64(bytes))
	if err != nil {
		b.ExchangeErrors.Add(1)
	}
}

// RecordSweep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSweep(k int, duration time.Duration, err error) {
	b.SweepCount.Add(1)
	if err != nil {
		b.SweepErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(variant string, workers int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildPoints:    b.BuildPoints.Load(),
		BuildAvgNanos:  avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		SearchCount:    b.SearchCount.Load(),
		SearchQueries:  b.SearchQueries.Load(),
		SearchAvgNanos: avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		ExchangeCount:  b.ExchangeCount.Load(),
		ExchangeBytes:  b.ExchangeBytes.Load(),
		ExchangeErrors: b.ExchangeErrors.Load(),
		SweepCount:     b.SweepCount.Load(),
		SweepErrors:    b.SweepErrors.Load(),
		RunCount:       b.RunCount.Load(),
		RunErrors:      b.RunErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildPoints    int64
	BuildAvgNanos  int64
	SearchCount    int64
	SearchQueries  int64
	SearchAvgNanos int64
	ExchangeCount  int64
	ExchangeBytes  int64
	ExchangeErrors int64
	SweepCount     int64
	SweepErrors    int64
	RunCount       int64
	RunErrors      int64
}

// metricsObserver forwards engine events to a MetricsCollector.
type metricsObserver struct {
	c MetricsCollector
}

var _ engine.MetricsObserver = (*metricsObserver)(nil)

func (o *metricsObserver) OnBuild(duration time.Duration, points int, height int) {
	o.c.RecordBuild(points, height, duration)
}

func (o *metricsObserver) OnSearch(duration time.Duration, indexType string, k int, queries int) {
	o.c.RecordSearch(indexType, k, queries, duration)
}

func (o *metricsObserver) OnExchange(op string, bytes int, duration time.Duration, err error) {
	o.c.RecordExchange(op, bytes, duration, err)
}

func (o *metricsObserver) OnSweep(k int, duration time.Duration, err error) {
	o.c.RecordSweep(k, duration, err)
}
