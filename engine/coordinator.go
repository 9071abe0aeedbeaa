package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/kdknn/cluster"
	"github.com/hupe1980/kdknn/generator"
	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/index/kdtree"
	"github.com/hupe1980/kdknn/internal/conv"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/partition"
	"github.com/hupe1980/kdknn/report"
	"github.com/hupe1980/kdknn/resource"
)

// Root is the rank that gathers, distributes and emits for the replicate variant.
const Root = 0

// Point-to-point tags of the replicate variant.
const (
	tagQueries = 0
	tagPool    = 1
	tagResults = 2
)

// Comm is the process group handle of one rank.
type Comm interface {
	Rank() int
	Size() int
	Send(ctx context.Context, dst, tag int, payload []byte) error
	Recv(ctx context.Context, src, tag int) ([]byte, error)
	Barrier(ctx context.Context) error
	Bcast(ctx context.Context, root int, data []byte) ([]byte, error)
	Gather(ctx context.Context, root int, data []byte) ([][]byte, error)
	Scatter(ctx context.Context, root int, parts [][]byte) ([]byte, error)
}

// Compile-time check to ensure cluster.Comm satisfies Comm.
var _ Comm = (*cluster.Comm)(nil)

// Coordinator runs the pipeline for one Config. It holds no per-run state, so
// one Coordinator may be run by every rank concurrently.
type Coordinator struct {
	cfg     Config
	logger  Logger
	metrics MetricsObserver
	sink    report.Sink
	rc      *resource.Controller
}

// New creates a Coordinator for cfg.
func New(cfg Config, optFns ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:     cfg,
		logger:  discardLogger(),
		metrics: &NoopMetricsObserver{},
		sink:    report.Discard,
	}

	for _, fn := range optFns {
		fn(c)
	}

	return c, nil
}

// Config returns the configuration of the coordinator.
func (c *Coordinator) Config() Config {
	return c.cfg
}

// Run executes the configured variant on the rank behind comm.
func (c *Coordinator) Run(ctx context.Context, comm Comm) error {
	rank, size := comm.Rank(), comm.Size()

	if c.cfg.Variant == VariantSequential && size != 1 {
		return fmt.Errorf("%w: world size %d", ErrSequentialWorld, size)
	}

	local, err := c.generate(rank, size)
	if err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "generated points", "count", len(local))

	switch c.cfg.Variant {
	case VariantReplicate:
		return c.runReplicate(ctx, comm, local)
	case VariantPartition:
		return c.runPartition(ctx, comm, local)
	case VariantSequential:
		return c.runSequential(ctx, local)
	default:
		return fmt.Errorf("%w: unknown variant %d", ErrInvalidConfig, int(c.cfg.Variant))
	}
}

// generate creates this rank's share of the dataset.
func (c *Coordinator) generate(rank, size int) ([]model.Point, error) {
	start, count, err := partition.Range(c.cfg.Points, size, rank)
	if err != nil {
		return nil, err
	}
	return generator.ForRank(c.cfg.Seed, start, count, rank), nil
}

// pool is the gathered dataset as seen by the root.
type pool struct {
	points  []model.Point
	counts  []int
	offsets []int
}

// slice returns the points contributed by rank.
func (p *pool) slice(rank int) []model.Point {
	start := p.offsets[rank]
	return p.points[start : start+p.counts[rank]]
}

// collect gathers every rank's points at the root in two phases: first the
// per-rank counts, then the points placed at the displacements derived from
// those counts. Non-root ranks get a nil pool.
func (c *Coordinator) collect(ctx context.Context, comm Comm, local []model.Point) (*pool, error) {
	n, err := conv.IntToInt32(len(local))
	if err != nil {
		return nil, err
	}

	countParts, err := c.gather(ctx, comm, "gather-counts", wire.EncodeInt32(n))
	if err != nil {
		return nil, err
	}

	pointParts, err := c.gather(ctx, comm, "gather-points", wire.EncodePoints(local))
	if err != nil {
		return nil, err
	}

	if comm.Rank() != Root {
		return nil, nil
	}

	counts := make([]int, len(countParts))
	for r, part := range countParts {
		n, err := wire.DecodeInt32(part)
		if err != nil {
			return nil, fmt.Errorf("%w: count of rank %d: %w", ErrProtocol, r, err)
		}
		counts[r] = int(n)
	}

	offsets := partition.Offsets(counts)
	total := 0
	for _, n := range counts {
		total += n
	}

	points := make([]model.Point, total)
	for r, part := range pointParts {
		pts, err := wire.DecodePoints(part)
		if err != nil {
			return nil, fmt.Errorf("%w: points of rank %d: %w", ErrProtocol, r, err)
		}
		if len(pts) != counts[r] {
			return nil, fmt.Errorf("%w: rank %d announced %d points, sent %d", ErrProtocol, r, counts[r], len(pts))
		}
		copy(points[offsets[r]:], pts)
	}

	return &pool{points: points, counts: counts, offsets: offsets}, nil
}

func (c *Coordinator) gather(ctx context.Context, comm Comm, op string, data []byte) ([][]byte, error) {
	start := time.Now()
	parts, err := comm.Gather(ctx, Root, data)
	c.metrics.OnExchange(op, len(data), time.Since(start), err)
	return parts, err
}

func (c *Coordinator) send(ctx context.Context, comm Comm, op string, dst, tag int, data []byte) error {
	start := time.Now()
	err := comm.Send(ctx, dst, tag, data)
	c.metrics.OnExchange(op, len(data), time.Since(start), err)
	return err
}

func (c *Coordinator) recv(ctx context.Context, comm Comm, op string, src, tag int) ([]byte, error) {
	start := time.Now()
	data, err := comm.Recv(ctx, src, tag)
	c.metrics.OnExchange(op, len(data), time.Since(start), err)
	return data, err
}

// searchAll answers every query against s.
func (c *Coordinator) searchAll(s index.Searcher, typ index.Type, queries []model.Point, k int) [][]model.Neighbor {
	start := time.Now()
	results := make([][]model.Neighbor, len(queries))
	for i, q := range queries {
		results[i] = s.Search(q, k)
	}
	c.metrics.OnSearch(time.Since(start), typ.String(), k, len(queries))
	return results
}

// beginK announces a new k to sinks that care. Only the root calls it.
func (c *Coordinator) beginK(k int) error {
	if s, ok := c.sink.(report.SweepSink); ok {
		return s.BeginK(k)
	}
	return nil
}

func (c *Coordinator) emit(k, rank int, query model.Point, neighbors []model.Neighbor) error {
	return c.sink.Emit(model.Result{
		K:         k,
		Rank:      rank,
		Query:     query,
		Neighbors: neighbors,
	})
}

// buildTree builds a KD-tree over a copy of points, charging its node memory
// against the resource controller. The returned release func must be called
// once the tree is no longer needed.
func (c *Coordinator) buildTree(ctx context.Context, points []model.Point) (*kdtree.Tree, func(), error) {
	mem := kdtree.EstimateMemory(len(points))
	if err := c.rc.AcquireMemory(ctx, resource.Trees, mem); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	tree := kdtree.BuildCopy(points)
	c.metrics.OnBuild(time.Since(start), tree.Len(), tree.Height())

	release := func() {
		tree.Release()
		c.rc.ReleaseMemory(resource.Trees, mem)
	}
	return tree, release, nil
}

// sweep runs fn for every k of the configuration, reporting each step.
func (c *Coordinator) sweep(ctx context.Context, fn func(k int) error) error {
	for _, k := range c.cfg.KValues() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := fn(k)
		c.metrics.OnSweep(k, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("k=%d: %w", k, err)
		}

		c.logger.DebugContext(ctx, "sweep step done", "k", k, "elapsed", time.Since(start))
	}
	return nil
}
