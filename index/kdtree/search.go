package kdtree

import (
	"math"

	"github.com/hupe1980/kdknn/distance"
	"github.com/hupe1980/kdknn/internal/searcher"
	"github.com/hupe1980/kdknn/model"
)

// Search returns exactly k neighbors of target in ascending distance order.
// k <= 0 yields an empty result; slots beyond the tree size are sentinels.
func (t *Tree) Search(target model.Point, k int) []model.Neighbor {
	if k <= 0 {
		return []model.Neighbor{}
	}

	buf := searcher.NewBuffer(k)
	if t != nil {
		s := &search{target: target, buf: buf}
		s.visit(t.root)
	}
	return buf.Results()
}

type search struct {
	target model.Point
	buf    *searcher.Buffer
}

func (s *search) visit(n *Node) {
	if n == nil {
		return
	}

	s.buf.Offer(distance.Euclidean(s.target, n.Point), n.Point.ID)

	axisDiff := distance.AxisDelta(s.target, n.Point, n.Axis())
	axisDist := math.Abs(axisDiff)

	nearer, further := n.Right, n.Left
	if axisDiff < 0 {
		nearer, further = n.Left, n.Right
	}

	s.visit(nearer)

	// The bound is read after the nearer side tightened it.
	if axisDist < s.buf.Worst() {
		s.visit(further)
	}
}
