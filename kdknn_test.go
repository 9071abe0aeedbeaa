package kdknn

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/cluster"
	"github.com/hupe1980/kdknn/engine"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/report"
	"github.com/hupe1980/kdknn/resource"
)

func smallConfig(v Variant) Config {
	return Config{Points: 30, KMin: 2, KMax: 6, KStep: 2, Seed: 11, Variant: v}
}

func TestRun_Replicate(t *testing.T) {
	var buf bytes.Buffer
	metrics := &BasicMetricsCollector{}

	s, err := Run(context.Background(), smallConfig(Replicate),
		WithWorkers(3),
		WithSink(report.NewTextSink(&buf)),
		WithMetricsCollector(metrics),
		WithCompression(CompressionLZ4),
	)
	require.NoError(t, err)

	assert.Equal(t, Replicate, s.Variant)
	assert.Equal(t, 3, s.Workers)
	assert.Positive(t, s.Elapsed)
	assert.Positive(t, s.Traffic.FramesSent)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 30*3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "Point "), line)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Zero(t, stats.RunErrors)
	assert.Equal(t, int64(3*3), stats.SweepCount)
	assert.Equal(t, int64(3*30), stats.SearchQueries)
	assert.Positive(t, stats.ExchangeBytes)
}

func TestRun_Partition(t *testing.T) {
	var col report.Collector

	s, err := Run(context.Background(), smallConfig(Partition),
		WithWorkers(4),
		WithSink(&col),
		WithResourceLimits(resource.Config{MemoryLimitBytes: 1 << 24}),
	)
	require.NoError(t, err)
	assert.Positive(t, s.PeakMemory)

	for _, k := range []int{2, 4, 6} {
		results := col.ByK(k)
		require.Len(t, results, 30)
		for _, r := range results {
			assert.Len(t, r.Neighbors, k)
		}
	}
}

func TestRun_Sequential(t *testing.T) {
	var buf bytes.Buffer

	_, err := Run(context.Background(), smallConfig(Sequential),
		WithWorkers(1),
		WithSink(report.NewPreviewSink(&buf)),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(buf.String(), "Results for k = "))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, smallConfig(Sequential), WithWorkers(2))
	assert.ErrorIs(t, err, ErrSequentialWorkers)
	assert.ErrorIs(t, err, engine.ErrSequentialWorld)

	_, err = Run(ctx, smallConfig(Replicate), WithWorkers(0))
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	cfg := smallConfig(Replicate)
	cfg.KStep = 0
	_, err = Run(ctx, cfg, WithWorkers(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Run(ctx, smallConfig(Partition),
		WithWorkers(2),
		WithResourceLimits(resource.Config{MemoryLimitBytes: 64}),
	)
	assert.ErrorIs(t, err, ErrResourceExhausted)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	metrics := &BasicMetricsCollector{}
	_, err := Run(ctx, smallConfig(Replicate), WithWorkers(2), WithMetricsCollector(metrics))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), metrics.GetStats().RunErrors)
}

func TestScale(t *testing.T) {
	ms, err := Scale(context.Background(), smallConfig(Replicate), []int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, ms, 3)
	for i, w := range []int{1, 2, 3} {
		assert.Equal(t, w, ms[i].Workers)
		assert.Positive(t, ms[i].Elapsed)
	}

	rows := report.Scaling(ms)
	assert.InDelta(t, 1.0, rows[0].Speedup, 1e-9)
}

func TestScale_Repeats(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	ms, err := Scale(context.Background(), smallConfig(Replicate), []int{1, 2},
		WithRepeats(3),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	for _, m := range ms {
		assert.Equal(t, 3, m.Runs)
		assert.Positive(t, m.Elapsed)
	}
	assert.Equal(t, int64(6), metrics.GetStats().RunCount)
}

func TestScale_StopsOnError(t *testing.T) {
	ms, err := Scale(context.Background(), smallConfig(Sequential), []int{1, 2})
	require.ErrorIs(t, err, ErrSequentialWorkers)
	assert.Len(t, ms, 1)
}

func TestParseVariantAndCompression(t *testing.T) {
	v, err := ParseVariant("kdtree")
	require.NoError(t, err)
	assert.Equal(t, Partition, v)

	_, err = ParseVariant("bogus")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	_, err = ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{engine.ErrInvalidConfig, ErrInvalidConfig},
		{cluster.ErrInvalidWorldSize, ErrInvalidWorkers},
		{engine.ErrSequentialWorld, ErrSequentialWorkers},
		{&cluster.RankError{Rank: 1, Err: engine.ErrProtocol}, ErrProtocol},
		{wire.ErrCorruptFrame, ErrProtocol},
		{wire.ErrShortRecord, ErrProtocol},
		{resource.ErrExceedsLimit, ErrResourceExhausted},
	}
	for _, tt := range tests {
		got := translateError(tt.in)
		assert.ErrorIs(t, got, tt.want, tt.in.Error())
		assert.ErrorIs(t, got, tt.in)
	}

	assert.NoError(t, translateError(nil))
	other := errors.New("other")
	assert.Equal(t, other, translateError(other))
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	_, err = Run(context.Background(), smallConfig(Partition), WithWorkers(2), WithMetricsCollector(p))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"kdknn_tree_build_seconds",
		"kdknn_search_queries_total",
		"kdknn_exchange_bytes_total",
		"kdknn_sweep_steps_total",
		"kdknn_runs_total",
	} {
		assert.True(t, names[name], name)
	}

	// Registering twice on the same registry fails.
	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err)
}

func TestNoopMetricsCollector(t *testing.T) {
	var c MetricsCollector = NoopMetricsCollector{}
	c.RecordBuild(1, 1, 0)
	c.RecordSearch("flat", 1, 1, 0)
	c.RecordExchange("gather", 1, 0, nil)
	c.RecordSweep(1, 0, nil)
	c.RecordRun("replicate", 1, 0, nil)
}

func TestRun_EmitsModelResults(t *testing.T) {
	var col report.Collector
	cfg := Config{Points: 1, KMin: 5, KMax: 5, KStep: 1, Variant: Replicate}

	_, err := Run(context.Background(), cfg, WithWorkers(1), WithSink(&col))
	require.NoError(t, err)

	results := col.Results()
	require.Len(t, results, 1)
	assert.Equal(t, []int32{0, -1, -1, -1, -1}, model.IDs(results[0].Neighbors))
}

func TestRun_RunIDTagsLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil))

	s1, err := Run(context.Background(), smallConfig(Replicate), WithWorkers(2), WithLogger(logger))
	require.NoError(t, err)
	s2, err := Run(context.Background(), smallConfig(Replicate), WithWorkers(2), WithLogger(logger))
	require.NoError(t, err)

	_, err = uuid.Parse(s1.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, s1.RunID, s2.RunID)
	assert.Contains(t, buf.String(), "run_id="+s1.RunID)
	assert.Contains(t, buf.String(), "run_id="+s2.RunID)
}

func TestRun_LogsCarryRankAndVariant(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), smallConfig(Partition), WithWorkers(3), WithLogger(logger))
	require.NoError(t, err)

	var generated []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="generated points"`) {
			generated = append(generated, line)
			assert.Contains(t, line, "variant=partition")
		}
	}
	require.Len(t, generated, 3)
	for _, rank := range []string{"rank=0", "rank=1", "rank=2"} {
		assert.Contains(t, strings.Join(generated, "\n"), rank)
	}
}

func TestRun_ResourceLimitsManyWorkers(t *testing.T) {
	cfg := Config{Points: 200, KMin: 3, KMax: 3, KStep: 1, Seed: 5, Variant: Replicate}

	want := &report.Collector{}
	_, err := Run(context.Background(), cfg, WithWorkers(4), WithSink(want))
	require.NoError(t, err)

	// one replicated pool frame fits, two do not
	limit := int64(cfg.Points*wire.PointSize + 64)
	got := &report.Collector{}
	s, err := Run(context.Background(), cfg,
		WithWorkers(4),
		WithSink(got),
		WithResourceLimits(resource.Config{MemoryLimitBytes: limit}),
	)
	require.NoError(t, err)

	assert.Equal(t, want.ByK(3), got.ByK(3))
	assert.Positive(t, s.PeakMemory)
	assert.LessOrEqual(t, s.PeakMemory, limit)
}
