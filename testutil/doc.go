// Package testutil provides testing utilities for soa.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe RNG and generators for random
// record batches with scalar, matrix and variable-length fields.
//
// # Random Batches
//
//	rng := testutil.NewRNG(seed)
//	batch := rng.Particles(1000, 16)      // uniform vector lengths in [0, 16]
//	lengths := rng.ZipfLengths(1000, 64, 1.5) // skewed vector lengths
//
// # Fixed Batches
//
//	testutil.DemoBatch() // the three-record batch used across examples
package testutil
