// Package kdtree implements a 3-D KD-tree with median-split construction and
// bounded k-nearest-neighbor search.
//
// # Construction
//
// Build sorts the slice it is given in place along the axis of the current
// depth (x, y, z cycling), takes the count median as the node value and
// recurses into both halves. Every level re-sorts its whole sub-slice, so
// construction is O(n log² n). Callers that need their original order must
// copy first (see BuildCopy).
//
// # Search
//
//	tree := kdtree.BuildCopy(points)
//	neighbors := tree.Search(target, 5) // exactly 5 entries, ascending
//	tree.Release()
//
// If the tree holds fewer than k points, trailing entries are sentinels
// (identity -1, distance +Inf).
package kdtree
