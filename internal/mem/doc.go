// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides power-of-two aligned heap allocation for dense column storage
// (64 bytes by default, AVX-512 and cache-line friendly) and zero-copy
// reinterpretation of aligned byte regions as typed slices.
package mem
