package engine

import "time"

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnBuild is called when a KD-tree build completes.
	OnBuild(duration time.Duration, points int, height int)

	// OnSearch is called after a rank answered all its queries for one k.
	OnSearch(duration time.Duration, indexType string, k int, queries int)

	// OnExchange is called after a collective or point-to-point exchange.
	// bytes is the encoded payload size handed to or received from the comm.
	OnExchange(op string, bytes int, duration time.Duration, err error)

	// OnSweep is called when a rank finished one k value.
	OnSweep(k int, duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnBuild(duration time.Duration, points int, height int) {}
func (o *NoopMetricsObserver) OnSearch(duration time.Duration, indexType string, k int, queries int) {
}
func (o *NoopMetricsObserver) OnExchange(op string, bytes int, duration time.Duration, err error) {}
func (o *NoopMetricsObserver) OnSweep(k int, duration time.Duration, err error)                   {}
