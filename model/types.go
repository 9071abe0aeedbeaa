package model

import (
	"fmt"
	"math"
)

// SentinelID marks a neighbor slot that holds no real point.
const SentinelID int32 = -1

// Axis selects one coordinate of a Point.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// NumAxes is the dimensionality of every Point.
const NumAxes = 3

// AxisForDepth returns the split axis used at the given tree depth.
func AxisForDepth(depth int) Axis {
	return Axis(depth % NumAxes)
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Point is a location in 3-D space plus the identity assigned at generation.
// ID is never recomputed from a slice position once the point leaves the
// rank that generated it.
type Point struct {
	X, Y, Z float64
	ID      int32
}

// Coord returns the coordinate on the given axis.
func (p Point) Coord(axis Axis) float64 {
	switch axis {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("Point(%d: %.2f, %.2f, %.2f)", p.ID, p.X, p.Y, p.Z)
}

// Neighbor is one entry of a k-nearest-neighbor answer.
type Neighbor struct {
	Distance float64
	ID       int32
}

// Sentinel returns the placeholder used when fewer than k real neighbors exist.
func Sentinel() Neighbor {
	return Neighbor{Distance: math.Inf(1), ID: SentinelID}
}

// IsSentinel reports whether n is the "no neighbor" placeholder.
func (n Neighbor) IsSentinel() bool {
	return n.ID == SentinelID
}

// IDs returns the identities of neighbors in order.
func IDs(neighbors []Neighbor) []int32 {
	ids := make([]int32, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ID
	}
	return ids
}

// FromIDs rebuilds neighbor entries from identities only, as received over
// the wire. Distances are unknown and reported as NaN except for sentinels.
func FromIDs(ids []int32) []Neighbor {
	out := make([]Neighbor, len(ids))
	for i, id := range ids {
		if id == SentinelID {
			out[i] = Sentinel()
			continue
		}
		out[i] = Neighbor{Distance: math.NaN(), ID: id}
	}
	return out
}

// Result is the answer for one query point at one k.
type Result struct {
	K         int
	Rank      int
	Query     Point
	Neighbors []Neighbor
}

// Clone returns a deep copy of points. Use it before handing a slice to a
// builder that reorders its input.
func Clone(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
