// Package testutil provides testing utilities for kdknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets, computing exact
// nearest neighbors, and verifying search recall.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 0)    // uniform [0, 100)^3
//	skewed := rng.GridPoints(1000, 4)       // heavy coordinate duplication
//
// # Exact Search (Ground Truth)
//
//	results := testutil.BruteForceSearch(points, query, k)
//
//	oracle, err := testutil.NewOracle(points) // gonum vantage-point tree
//	results := oracle.Search(query, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exactResults, approxResults)
package testutil
