// Package arena provides the single-shot storage allocator behind a
// structure-of-arrays container.
//
// An Arena owns exactly one contiguous, aligned byte buffer that is allocated
// once and never grown. Dense field arrays are claimed from it sequentially:
// each claim starts at the running offset and advances it by the field's
// aligned footprint, so consecutive regions are disjoint and every region
// starts on an alignment boundary.
//
// # Backends
//
//   - BackendHeap: an aligned []byte on the Go heap (default)
//   - BackendMmap: an anonymous mapping outside the Go heap
//
// Both backends only ever hold pointer-free numeric elements.
//
// # Safety
//
// All methods return errors instead of panicking. Claims are not safe for
// concurrent use; the regions they return may be written concurrently since
// they never overlap.
package arena
