package kdknn

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector is a MetricsCollector exporting Prometheus metrics.
type PrometheusCollector struct {
	buildLatency    prometheus.Histogram
	buildPoints     prometheus.Counter
	searchLatency   *prometheus.HistogramVec
	searchQueries   *prometheus.CounterVec
	exchangeLatency *prometheus.HistogramVec
	exchangeBytes   *prometheus.CounterVec
	sweeps          *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runLatency      *prometheus.HistogramVec
}

var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg (prometheus.DefaultRegisterer if nil).
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		buildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kdknn_tree_build_seconds",
			Help:    "KD-tree build latency",
			Buckets: prometheus.DefBuckets,
		}),
		buildPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kdknn_tree_build_points_total",
			Help: "Points inserted into KD-trees",
		}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdknn_search_seconds",
			Help:    "Time a rank spent answering its queries for one k",
			Buckets: prometheus.DefBuckets,
		}, []string{"index"}),
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdknn_search_queries_total",
			Help: "Answered query points",
		}, []string{"index"}),
		exchangeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdknn_exchange_seconds",
			Help:    "Message exchange latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		exchangeBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdknn_exchange_bytes_total",
			Help: "Payload bytes exchanged between ranks",
		}, []string{"op"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdknn_sweep_steps_total",
			Help: "Completed sweep steps per k",
		}, []string{"k", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kdknn_runs_total",
			Help: "Completed runs",
		}, []string{"variant", "status"}),
		runLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdknn_run_seconds",
			Help:    "Wall time of a complete run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"variant", "workers"}),
	}

	for _, c := range []prometheus.Collector{
		p.buildLatency, p.buildPoints,
		p.searchLatency, p.searchQueries,
		p.exchangeLatency, p.exchangeBytes,
		p.sweeps, p.runs, p.runLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements MetricsCollector.
func (p *PrometheusCollector) RecordBuild(points, height int, duration time.Duration) {
	p.buildLatency.Observe(duration.Seconds())
	p.buildPoints.Add(float64(points))
}

// RecordSearch implements MetricsCollector.
func (p *PrometheusCollector) RecordSearch(index string, k, queries int, duration time.Duration) {
	p.searchLatency.WithLabelValues(index).Observe(duration.Seconds())
	p.searchQueries.WithLabelValues(index).Add(float64(queries))
}

// RecordExchange implements MetricsCollector.
func (p *PrometheusCollector) RecordExchange(op string, bytes int, duration time.Duration, err error) {
	p.exchangeLatency.WithLabelValues(op, status(err)).Observe(duration.Seconds())
	p.exchangeBytes.WithLabelValues(op).Add(float64(bytes))
}

// RecordSweep implements MetricsCollector.
func (p *PrometheusCollector) RecordSweep(k int, duration time.Duration, err error) {
	p.sweeps.WithLabelValues(strconv.Itoa(k), status(err)).Inc()
}

// RecordRun implements MetricsCollector.
func (p *PrometheusCollector) RecordRun(variant string, workers int, duration time.Duration, err error) {
	p.runs.WithLabelValues(variant, status(err)).Inc()
	if err == nil {
		p.runLatency.WithLabelValues(variant, strconv.Itoa(workers)).Observe(duration.Seconds())
	}
}
