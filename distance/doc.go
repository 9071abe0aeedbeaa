// Package distance provides distance calculations between 3-D points.
//
// Euclidean is the distance reported in results. SquaredEuclidean orders
// candidates the same way and is used where only comparisons matter.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	delta := distance.AxisDelta(target, node, model.AxisX)
package distance
