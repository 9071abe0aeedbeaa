// Package engine runs the distributed k-nearest-neighbor pipeline on one rank.
//
// A Coordinator is created once from a Config and then run by every rank of a
// process group with that rank's Comm. Each rank proceeds strictly in order:
//
//	generate -> exchange -> for each k: build -> query -> emit -> release
//
// # Variants
//
// VariantReplicate (exact): the root gathers all points, then for every k it
// hands each worker its query slice and a full replica of the dataset. Workers
// answer with k neighbor IDs per query point by brute force. The root emits
// every worker's results, then its own, and checks that every point was
// answered exactly once.
//
// VariantPartition (approximate): the root gathers all points, broadcasts the
// total and scatters contiguous partitions back. For every k each rank builds
// a private KD-tree over its partition and queries it with its own points.
// Neighbors that live in another partition are never found; there is no merge
// step.
//
// VariantSequential: a single rank computes exact neighbors excluding the
// query itself and emits a short preview per k.
//
// Nothing is carried between k values: trees and buffers are rebuilt for each.
package engine
