// Package testutil provides testing utilities for autocontext.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random label blocks and data
// volumes with a seeded, thread-safe random source.
//
// # Random Label Blocks
//
//	rng := testutil.NewRNG(seed)
//	block := rng.SparseBlock(0.1, 3, 256, 256)  // 10% labeled, 3 classes
//
// # Random Volumes
//
//	vol := rng.UniformVolume("yxc", 256, 256, 1)
package testutil
