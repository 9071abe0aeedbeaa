// Package flat provides exact brute-force nearest neighbor search.
package flat

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/kdknn/distance"
	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/model"
)

// Compile-time check to ensure Flat satisfies the Searcher interface.
var _ index.Searcher = (*Flat)(nil)

// SelfPolicy decides how a candidate carrying the target's own identity is scored.
type SelfPolicy int

const (
	// IncludeSelf scores the target like any other candidate, so it shows up
	// as a zero-distance neighbor. Used by the distributed exact variant.
	IncludeSelf SelfPolicy = iota

	// ExcludeSelf forces the target's own distance to +Inf before sorting.
	// The entry is not removed, it sorts last. Used by the single-process
	// reference variant.
	ExcludeSelf
)

// String returns a string representation of the SelfPolicy.
func (p SelfPolicy) String() string {
	switch p {
	case IncludeSelf:
		return "include-self"
	case ExcludeSelf:
		return "exclude-self"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Flat is an exact index over a fixed candidate set. It keeps a reference to
// the candidates and never reorders them.
type Flat struct {
	points []model.Point
	policy SelfPolicy
}

// New creates a flat index over points that scores the target's own identity
// according to policy.
func New(points []model.Point, policy SelfPolicy) *Flat {
	return &Flat{points: points, policy: policy}
}

// Len returns the number of candidates.
func (f *Flat) Len() int {
	return len(f.points)
}

// Search performs a brute-force search over every candidate.
func (f *Flat) Search(target model.Point, k int) []model.Neighbor {
	return Search(target, f.points, k, f.policy)
}

// SearchIDs is Search returning identities only.
func (f *Flat) SearchIDs(target model.Point, k int) []int32 {
	return SearchIDs(target, f.points, k, f.policy)
}

// Search computes the distance from target to every point, sorts all of them
// and returns the first k. Ties are broken by smaller identity. Results are
// sentinel padded when k exceeds len(points); k <= 0 yields an empty result.
func Search(target model.Point, points []model.Point, k int, policy SelfPolicy) []model.Neighbor {
	if k <= 0 {
		return []model.Neighbor{}
	}

	all := make([]model.Neighbor, len(points))
	for i, p := range points {
		d := distance.Euclidean(target, p)
		if policy == ExcludeSelf && p.ID == target.ID {
			d = math.Inf(1)
		}
		all[i] = model.Neighbor{Distance: d, ID: p.ID}
	}

	slices.SortFunc(all, func(a, b model.Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]model.Neighbor, k)
	for i := range out {
		if i < len(all) {
			out[i] = all[i]
		} else {
			out[i] = model.Sentinel()
		}
	}
	return out
}

// SearchIDs is Search returning identities only.
func SearchIDs(target model.Point, points []model.Point, k int, policy SelfPolicy) []int32 {
	return model.IDs(Search(target, points, k, policy))
}
