// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the default byte alignment (AVX-512 register and cache line width).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size whose first byte sits
// at an address divisible by alignment. alignment must be a power of two.
//
// Note: This function allocates alignment-1 extra bytes to be able to shift
// the start. The underlying array is kept alive by the returned slice.
func AllocAligned(size, alignment int) []byte {
	if size <= 0 {
		return nil
	}
	if alignment <= 1 {
		return make([]byte, size)
	}

	buf := make([]byte, size+alignment-1)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(alignment - 1)
	offset := (uintptr(alignment) - (addr & mask)) & mask

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// IsAligned reports whether the first byte of b sits on an alignment boundary.
// Empty slices are considered aligned.
func IsAligned(b []byte, alignment int) bool {
	if len(b) == 0 || alignment <= 1 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))&uintptr(alignment-1) == 0 //nolint:gosec // address inspection only
}

// Cast reinterprets the first count elements of b as a []T sharing b's memory.
//
// The caller guarantees that b is aligned for T, that len(b) is at least
// count*sizeof(T) and that T contains no pointers, so that the garbage
// collector never needs to scan the region.
func Cast[T any](b []byte, count int) []T {
	if count == 0 || len(b) == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), count) //nolint:gosec // caller guarantees size and alignment
}

// SizeOf returns the size of T in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// AlignOf returns the required alignment of T in bytes.
func AlignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}
