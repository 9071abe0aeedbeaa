// Package distance provides distance calculations between 3-D points.
package distance

import (
	"math"

	"github.com/hupe1980/kdknn/model"
)

// Euclidean returns the true Euclidean distance between a and b.
func Euclidean(a, b model.Point) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// SquaredEuclidean returns the squared Euclidean distance between a and b.
// Ordering by squared distance equals ordering by Euclidean distance.
func SquaredEuclidean(a, b model.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return dx*dx + dy*dy + dz*dz
}

// AxisDelta returns target[axis] - node[axis].
// The sign picks the nearer subtree, the magnitude bounds the further one.
func AxisDelta(target, node model.Point, axis model.Axis) float64 {
	return target.Coord(axis) - node.Coord(axis)
}
