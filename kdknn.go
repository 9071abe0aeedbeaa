package kdknn

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/kdknn/cluster"
	"github.com/hupe1980/kdknn/engine"
	"github.com/hupe1980/kdknn/internal/sysinfo"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/report"
	"github.com/hupe1980/kdknn/resource"
)

// Config describes one run. See engine.Config.
type Config = engine.Config

// Variant selects the distribution strategy.
type Variant = engine.Variant

const (
	// Replicate gives every worker a full copy of the dataset (exact).
	Replicate = engine.VariantReplicate
	// Partition searches partition-local KD-trees (approximate).
	Partition = engine.VariantPartition
	// Sequential is the single-worker reference.
	Sequential = engine.VariantSequential
)

// Compression selects how frames between ranks are compressed.
type Compression = wire.Compression

// Supported compressions.
const (
	CompressionNone = wire.CompressionNone
	CompressionLZ4  = wire.CompressionLZ4
	CompressionZSTD = wire.CompressionZSTD
)

// DefaultConfig returns the default sweep: 1000 points, k = 5, 10, 15, 20.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// ParseVariant converts a variant name.
func ParseVariant(name string) (Variant, error) {
	v, err := engine.ParseVariant(name)
	return v, translateError(err)
}

// ParseCompression converts a compression name.
func ParseCompression(name string) (Compression, error) {
	c, err := wire.ParseCompression(name)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

// Summary describes a finished run.
type Summary struct {
	// RunID identifies the run in logs.
	RunID   string
	Variant Variant
	Workers int
	Points  int
	Elapsed time.Duration
	// Traffic is the aggregated frame traffic of all ranks.
	Traffic cluster.Stats
	// PeakMemory is the peak of memory reserved through the resource controller.
	PeakMemory int64
}

// Run executes cfg on a world of in-process workers and emits every result to
// the configured sink. Either every rank completes or the run fails as a whole.
func Run(ctx context.Context, cfg Config, optFns ...Option) (*Summary, error) {
	o := applyOptions(optFns)

	s := &Summary{
		RunID:   uuid.NewString(),
		Variant: cfg.Variant,
		Workers: o.workers,
		Points:  cfg.Points,
	}

	o.logger = o.logger.WithRunID(s.RunID)

	err := run(ctx, cfg, o, s)
	o.metricsCollector.RecordRun(cfg.Variant.String(), o.workers, s.Elapsed, err)
	o.logger.LogRun(ctx, s, err)

	return s, translateError(err)
}

func run(ctx context.Context, cfg Config, o options, s *Summary) error {
	rc := resource.NewController(o.limits)
	logger := o.logger.WithVariant(cfg.Variant)

	world, err := cluster.NewWorld(o.workers,
		cluster.WithCompression(o.compression),
		cluster.WithResourceController(rc),
		cluster.WithLogger(logger.Logger),
	)
	if err != nil {
		return err
	}

	// One coordinator per rank, each logging with its rank.
	coords := make([]*engine.Coordinator, o.workers)
	for rank := range coords {
		if coords[rank], err = engine.New(cfg,
			engine.WithLogger(logger.WithRank(rank)),
			engine.WithMetricsObserver(&metricsObserver{c: o.metricsCollector}),
			engine.WithSink(o.sink),
			engine.WithResourceController(rc),
		); err != nil {
			return err
		}
	}

	start := time.Now()
	err = world.Run(ctx, func(ctx context.Context, comm *cluster.Comm) error {
		return coords[comm.Rank()].Run(ctx, comm)
	})
	s.Elapsed = time.Since(start)
	s.Traffic = world.Stats()
	s.PeakMemory = rc.Usage().Peak

	return err
}

// Scale runs cfg once per worker count (or WithRepeats times) and returns one
// measurement per worker count, in order. Results of the runs go to the
// configured sink.
func Scale(ctx context.Context, cfg Config, workers []int, optFns ...Option) ([]report.Measurement, error) {
	o := applyOptions(optFns)

	out := make([]report.Measurement, 0, len(workers))
	for _, w := range workers {
		samples := make([]time.Duration, 0, o.repeats)
		for range o.repeats {
			s, err := Run(ctx, cfg, append(slices.Clone(optFns), WithWorkers(w))...)
			o.logger.LogScaling(ctx, w, s.Elapsed, err)
			if err != nil {
				return out, err
			}
			samples = append(samples, s.Elapsed)
		}

		m := report.Summarize(w, samples)
		if rss, err := sysinfo.PeakRSS(); err == nil {
			m.PeakRSS = rss
		}
		out = append(out, m)
	}
	return out, nil
}
