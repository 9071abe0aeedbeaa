package testutil

import (
	"gonum.org/v1/gonum/spatial/vptree"

	"github.com/hupe1980/kdknn/distance"
	"github.com/hupe1980/kdknn/model"
)

// vpPoint adapts model.Point to vptree.Comparable.
type vpPoint model.Point

// Distance implements vptree.Comparable.
func (p vpPoint) Distance(c vptree.Comparable) float64 {
	return distance.Euclidean(model.Point(p), model.Point(c.(vpPoint)))
}

// Oracle answers exact kNN queries with a gonum vantage-point tree. It shares
// no code with the KD-tree, so agreement between the two is a meaningful
// check on large inputs where BruteForceSearch gets slow.
//
// Identities among exact ties at the k-th distance may differ from
// BruteForceSearch; distances do not.
type Oracle struct {
	tree *vptree.Tree
}

// NewOracle indexes a copy of points.
func NewOracle(points []model.Point) (*Oracle, error) {
	cs := make([]vptree.Comparable, len(points))
	for i, p := range points {
		cs[i] = vpPoint(p)
	}

	t, err := vptree.New(cs, 0, nil)
	if err != nil {
		return nil, err
	}
	return &Oracle{tree: t}, nil
}

// Search returns the k nearest points to query, ascending by distance then
// identity and sentinel padded up to k.
func (o *Oracle) Search(query model.Point, k int) []model.Neighbor {
	if k <= 0 {
		return []model.Neighbor{}
	}

	keeper := vptree.NewNKeeper(k)
	o.tree.NearestSet(keeper, vpPoint(query))

	results := make([]model.Neighbor, 0, k)
	for _, cd := range keeper.Heap {
		// The keeper is seeded with an empty +Inf entry.
		if cd.Comparable == nil {
			continue
		}
		results = append(results, model.Neighbor{
			Distance: cd.Dist,
			ID:       cd.Comparable.(vpPoint).ID,
		})
	}

	return topK(results, k)
}
