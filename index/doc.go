// Package index provides the point search interface and its implementations.
//
// kdknn ships two index types:
//
//   - kdtree: median-split KD-tree with pruned k-best descent
//   - flat: exact brute-force scan over every candidate
//
// # Index Selection
//
//   - kdtree: per-worker partitions, sublinear queries, approximate once the
//     dataset is split across workers
//   - flat: full replica per worker, O(n) per query, exact global answers
//
// # Searcher Interface
//
//	type Searcher interface {
//	    Search(target model.Point, k int) []model.Neighbor
//	    Len() int
//	}
//
// Both implementations return exactly k entries in ascending distance order,
// padding with sentinels when fewer than k candidates exist.
package index
