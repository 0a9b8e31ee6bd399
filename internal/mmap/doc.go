// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// Dense column storage holds only pointer-free numeric elements, so it does
// not need to live on the Go heap. An anonymous mapping keeps large storage
// buffers out of the garbage collector's accounting and lets the kernel hand
// out page-aligned, zero-filled memory on demand.
//
// # Usage
//
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) hints
//   - Windows: VirtualAlloc/VirtualFree (Advise is a no-op)
//   - Other platforms: MapAnon returns ErrUnsupported
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes() after Close() returns.
package mmap
