// Package testutil provides testing utilities for kmajority.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random binary descriptors and for
// computing exact nearest neighbors as ground truth.
//
// # Random Descriptor Generation
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.UniformDescriptors(1000, 32)        // 256-bit descriptors
//	rows = rng.ClusteredDescriptors(1000, 32, 8, 0.05) // 8 noisy prototypes
//
// # Exact Search (Ground Truth)
//
//	idx, dist := testutil.ExactNearest(query, refs)
package testutil
