package engine

import (
	"context"

	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/index/flat"
	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/report"
)

// runSequential executes the single-process reference. Every point is
// answered by brute force excluding itself; only the first
// report.PreviewPoints results per k are emitted.
func (c *Coordinator) runSequential(ctx context.Context, points []model.Point) error {
	exact := flat.New(points, flat.ExcludeSelf)
	return c.sweep(ctx, func(k int) error {
		results := c.searchAll(exact, index.TypeFlat, points, k)

		if err := c.beginK(k); err != nil {
			return err
		}
		for i := range min(len(points), report.PreviewPoints) {
			if err := c.emit(k, Root, points[i], results[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
