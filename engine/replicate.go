package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/index/flat"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/model"
)

// runReplicate executes the exact variant. The dataset is redistributed for
// every k: each worker receives its query slice (tag 0) and the full pool
// (tag 1) and answers with one message of k IDs per query point (tag 2).
func (c *Coordinator) runReplicate(ctx context.Context, comm Comm, local []model.Point) error {
	p, err := c.collect(ctx, comm, local)
	if err != nil {
		return err
	}

	if comm.Rank() != Root {
		return c.sweep(ctx, func(k int) error {
			return c.replicateWorker(ctx, comm, k)
		})
	}

	c.logger.InfoContext(ctx, "dataset gathered",
		"points", len(p.points),
		"ranks", comm.Size(),
	)

	exact := flat.New(p.points, flat.IncludeSelf)
	return c.sweep(ctx, func(k int) error {
		return c.replicateRoot(ctx, comm, p, exact, k)
	})
}

func (c *Coordinator) replicateRoot(ctx context.Context, comm Comm, p *pool, exact index.Searcher, k int) error {
	if err := c.beginK(k); err != nil {
		return err
	}

	// The root answers its own slice first and emits it last.
	own := p.slice(Root)
	ownResults := c.searchAll(exact, index.TypeFlat, own, k)

	covered := roaring.New()
	encodedPool := wire.EncodePoints(p.points)

	for worker := 0; worker < comm.Size(); worker++ {
		if worker == Root {
			continue
		}

		queries := p.slice(worker)
		if err := c.send(ctx, comm, "send-queries", worker, tagQueries, wire.EncodePoints(queries)); err != nil {
			return err
		}
		if err := c.send(ctx, comm, "send-pool", worker, tagPool, encodedPool); err != nil {
			return err
		}

		for _, q := range queries {
			data, err := c.recv(ctx, comm, "recv-results", worker, tagResults)
			if err != nil {
				return err
			}
			ids, err := wire.DecodeInt32s(data)
			if err != nil {
				return fmt.Errorf("%w: results of rank %d: %w", ErrProtocol, worker, err)
			}
			if len(ids) != k {
				return fmt.Errorf("%w: rank %d sent %d ids for point %d, want %d", ErrProtocol, worker, len(ids), q.ID, k)
			}
			if err := c.emit(k, worker, q, model.FromIDs(ids)); err != nil {
				return err
			}
			covered.Add(uint32(q.ID))
		}
	}

	for i, q := range own {
		if err := c.emit(k, Root, q, ownResults[i]); err != nil {
			return err
		}
		covered.Add(uint32(q.ID))
	}

	c.checkCoverage(ctx, k, len(p.points), covered)
	return nil
}

// checkCoverage logs point IDs in [0, n) that received no result for k.
func (c *Coordinator) checkCoverage(ctx context.Context, k, n int, covered *roaring.Bitmap) {
	expected := roaring.New()
	expected.AddRange(0, uint64(n))
	missing := roaring.AndNot(expected, covered)
	if missing.IsEmpty() {
		return
	}

	c.logger.WarnContext(ctx, "points without result",
		"k", k,
		"missing", missing.GetCardinality(),
		"first", missing.Minimum(),
	)
}

func (c *Coordinator) replicateWorker(ctx context.Context, comm Comm, k int) error {
	data, err := c.recv(ctx, comm, "recv-queries", Root, tagQueries)
	if err != nil {
		return err
	}
	queries, err := wire.DecodePoints(data)
	if err != nil {
		return fmt.Errorf("%w: queries: %w", ErrProtocol, err)
	}

	data, err = c.recv(ctx, comm, "recv-pool", Root, tagPool)
	if err != nil {
		return err
	}
	points, err := wire.DecodePoints(data)
	if err != nil {
		return fmt.Errorf("%w: pool: %w", ErrProtocol, err)
	}

	exact := flat.New(points, flat.IncludeSelf)
	start := time.Now()
	results := make([][]int32, len(queries))
	for i, q := range queries {
		results[i] = exact.SearchIDs(q, k)
	}
	c.metrics.OnSearch(time.Since(start), index.TypeFlat.String(), k, len(queries))

	for _, ids := range results {
		if err := c.send(ctx, comm, "send-results", Root, tagResults, wire.EncodeInt32s(ids)); err != nil {
			return err
		}
	}
	return nil
}
