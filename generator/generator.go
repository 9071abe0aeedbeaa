// Package generator produces the synthetic point sets each rank starts from.
package generator

import (
	"math/rand"

	"github.com/hupe1980/kdknn/model"
)

// Extent is the exclusive upper bound of every generated coordinate.
const Extent = 100.0

// Uniform returns count points with coordinates drawn uniformly from
// [0, Extent) and IDs start, start+1, ..., start+count-1.
//
// The sequence is a pure function of seed. Ranks pass base seed + rank so
// that every rank draws a different sequence.
func Uniform(seed int64, start int32, count int) []model.Point {
	if count <= 0 {
		return []model.Point{}
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data

	points := make([]model.Point, count)
	for i := range points {
		points[i] = model.Point{
			X:  rng.Float64() * Extent,
			Y:  rng.Float64() * Extent,
			Z:  rng.Float64() * Extent,
			ID: start + int32(i),
		}
	}
	return points
}

// ForRank generates the share of an n-point dataset owned by rank in a world
// of the given size: the contiguous ID range that partition.Range assigns,
// drawn with seed + rank.
func ForRank(seed int64, start, count, rank int) []model.Point {
	return Uniform(seed+int64(rank), int32(start), count)
}
