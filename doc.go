// Package kdknn computes the k nearest neighbors of every point of a 3-D
// dataset across a group of cooperating in-process workers.
//
// # Quick Start
//
//	cfg := kdknn.DefaultConfig() // 1000 points, k = 5, 10, 15, 20
//	cfg.Variant = kdknn.Partition
//
//	summary, err := kdknn.Run(ctx, cfg,
//	    kdknn.WithWorkers(4),
//	    kdknn.WithSink(report.NewTextSink(os.Stdout)),
//	)
//
// # Variants
//
// Replicate is exact. Rank 0 gathers the generated points and, for every k,
// hands each worker its query slice plus a full replica of the dataset. The
// answers are brute-force searches, so a point's own ID is its first neighbor.
//
// Partition is approximate. Rank 0 gathers the points and scatters contiguous
// partitions back; each worker builds a KD-tree over its partition and
// answers only from it. Neighbors in other partitions are never found.
//
// Sequential runs on a single worker, excludes the query point itself and
// emits a five-point preview per k.
//
// # Output
//
// Results stream to a report.Sink. Lines of different workers may interleave
// but a single line is never split. JSON output goes through package codec.
//
// # Observability
//
// Logging uses log/slog through Logger. Metrics are reported to a
// MetricsCollector: BasicMetricsCollector keeps atomic counters and
// PrometheusCollector exports Prometheus metrics.
//
// # Resource Control
//
// WithResourceLimits bounds the memory of in-flight frames and KD-trees
// (golang.org/x/sync/semaphore) and the byte rate of exchanged frames
// (golang.org/x/time/rate).
package kdknn
