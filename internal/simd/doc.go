// Package simd detects the SIMD capabilities of the running CPU.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2
//   - ARM64: NEON, SVE2
//
// The detected register width and the CPU cache line size determine the
// preferred byte alignment of dense column storage, so that every column
// starts on a boundary suitable for full-width vector loads.
//
// Set SOA_SIMD=generic|neon|sve2|avx2|avx512 to override the detection.
package simd
