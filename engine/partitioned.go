package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/internal/conv"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/partition"
)

// runPartition executes the approximate variant. After the exchange every
// rank holds one contiguous partition of the dataset; per k it builds a tree
// over that partition and queries it with the points it generated itself.
func (c *Coordinator) runPartition(ctx context.Context, comm Comm, local []model.Point) error {
	rank := comm.Rank()

	p, err := c.collect(ctx, comm, local)
	if err != nil {
		return err
	}

	var total []byte
	if rank == Root {
		if err := c.inspectGlobalTree(ctx, p.points); err != nil {
			return err
		}
		n, err := conv.IntToInt32(len(p.points))
		if err != nil {
			return err
		}
		total = wire.EncodeInt32(n)
	}

	start := time.Now()
	total, err = comm.Bcast(ctx, Root, total)
	c.metrics.OnExchange("bcast-total", len(total), time.Since(start), err)
	if err != nil {
		return err
	}
	n, err := wire.DecodeInt32(total)
	if err != nil {
		return fmt.Errorf("%w: total: %w", ErrProtocol, err)
	}

	var parts [][]byte
	if rank == Root {
		if parts, err = c.repartition(p.points, int(n), comm.Size()); err != nil {
			return err
		}
	}

	start = time.Now()
	data, err := comm.Scatter(ctx, Root, parts)
	c.metrics.OnExchange("scatter-points", len(data), time.Since(start), err)
	if err != nil {
		return err
	}
	shard, err := wire.DecodePoints(data)
	if err != nil {
		return fmt.Errorf("%w: partition: %w", ErrProtocol, err)
	}

	c.logger.DebugContext(ctx, "partition received", "points", len(shard), "total", n)

	return c.sweep(ctx, func(k int) error {
		if rank == Root {
			if err := c.beginK(k); err != nil {
				return err
			}
		}

		tree, release, err := c.buildTree(ctx, shard)
		if err != nil {
			return err
		}
		defer release()

		results := c.searchAll(tree, index.TypeKDTree, local, k)

		for i, q := range local {
			if err := c.emit(k, rank, q, results[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// inspectGlobalTree builds a tree over the whole gathered dataset and logs
// its shape. The tree takes no part in any query.
func (c *Coordinator) inspectGlobalTree(ctx context.Context, points []model.Point) error {
	tree, release, err := c.buildTree(ctx, points)
	if err != nil {
		return err
	}
	defer release()

	c.logger.InfoContext(ctx, "global tree built",
		"points", tree.Len(),
		"height", tree.Height(),
	)
	return nil
}

// repartition splits the gathered dataset into contiguous per-rank frames
// using the counts derived from n afresh.
func (c *Coordinator) repartition(points []model.Point, n, size int) ([][]byte, error) {
	if n != len(points) {
		return nil, fmt.Errorf("%w: broadcast total %d, gathered %d", ErrProtocol, n, len(points))
	}

	counts, err := partition.Counts(n, size)
	if err != nil {
		return nil, err
	}
	shards, err := partition.Split(points, counts)
	if err != nil {
		return nil, err
	}

	parts := make([][]byte, len(shards))
	for r, shard := range shards {
		parts[r] = wire.EncodePoints(shard)
	}
	return parts, nil
}
