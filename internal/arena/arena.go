package arena

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/hupe1980/soa/internal/mem"
	"github.com/hupe1980/soa/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrAllocationFailed is returned when the backing buffer cannot be obtained.
	ErrAllocationFailed = errors.New("arena: allocation failed")
	// ErrExhausted is returned when a claim does not fit into the remaining buffer.
	ErrExhausted = errors.New("arena: claim exceeds remaining capacity")
	// ErrMisaligned is returned when a claim would start on an unaligned offset.
	ErrMisaligned = errors.New("arena: misaligned claim")
	// ErrClosed is returned when using an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// Backend selects where the buffer lives.
type Backend uint8

const (
	// BackendHeap allocates the buffer on the Go heap.
	BackendHeap Backend = iota
	// BackendMmap allocates the buffer as an anonymous mapping.
	BackendMmap
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendHeap:
		return "heap"
	case BackendMmap:
		return "mmap"
	default:
		return "unknown"
	}
}

// ParseBackend parses a backend name as returned by String.
func ParseBackend(s string) (Backend, bool) {
	switch s {
	case "heap", "":
		return BackendHeap, true
	case "mmap":
		return BackendMmap, true
	default:
		return BackendHeap, false
	}
}

// Stats tracks arena memory usage.
//
//   - BytesReserved: size of the buffer
//   - BytesUsed: bytes holding elements, as reported by claims
//   - BytesWasted: alignment padding inside claimed regions
//   - Regions: number of claimed regions
type Stats struct {
	BytesReserved uint64 `json:"reserved"`
	BytesUsed     uint64 `json:"used"`
	BytesWasted   uint64 `json:"wasted"`
	Regions       uint64 `json:"regions"`
}

// Arena owns one aligned byte buffer and hands out sequential regions of it.
type Arena struct {
	buf       []byte
	alignment int
	backend   Backend
	mapping   *mmap.Mapping
	acquirer  MemoryAcquirer
	reserved  int64 // bytes acquired from acquirer

	cursor int
	stats  Stats
	closed atomic.Bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithBackend selects the buffer backend.
func WithBackend(b Backend) Option {
	return func(a *Arena) {
		a.backend = b
	}
}

// New allocates an arena of exactly size bytes whose first byte is aligned to
// alignment (a power of two). A zero size yields an empty arena without
// allocating. If a memory acquirer is configured, size bytes are reserved
// from it before anything is allocated.
func New(ctx context.Context, size, alignment int, opts ...Option) (*Arena, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrAllocationFailed, size)
	}
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrAllocationFailed, alignment)
	}

	a := &Arena{alignment: alignment}
	for _, opt := range opts {
		opt(a)
	}

	if size == 0 {
		return a, nil
	}

	if a.acquirer != nil {
		var cancel context.CancelFunc
		if _, ok := ctx.Deadline(); !ok {
			ctx, cancel = context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()
		}
		if err := a.acquirer.AcquireMemory(ctx, int64(size)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
		a.reserved = int64(size)
	}

	var err error
	switch a.backend {
	case BackendMmap:
		err = a.allocMmap(size)
	default:
		a.buf = mem.AllocAligned(size, alignment)
	}
	if err != nil {
		a.release()
		return nil, err
	}

	a.stats.BytesReserved = uint64(size)

	return a, nil
}

func (a *Arena) allocMmap(size int) error {
	mapSize := size
	if a.alignment > os.Getpagesize() {
		mapSize += a.alignment - 1
	}

	m, err := mmap.MapAnon(mapSize)
	if err != nil {
		return fmt.Errorf("%w: failed to map anonymous memory: %w", ErrAllocationFailed, err)
	}

	data := m.Bytes()
	shift := 0
	for !mem.IsAligned(data[shift:], a.alignment) {
		shift++
	}

	a.mapping = m
	a.buf = data[shift : shift+size : shift+size]
	return nil
}

// Claim returns the next unclaimed region of footprint bytes together with its
// byte offset. used is the number of bytes that will hold elements; the rest
// of the footprint is accounted as padding. The cursor advances by footprint.
func (a *Arena) Claim(footprint, used int) (int, []byte, error) {
	if a.closed.Load() {
		return 0, nil, ErrClosed
	}
	if footprint < 0 || used < 0 || used > footprint {
		return 0, nil, fmt.Errorf("%w: footprint %d, used %d", ErrExhausted, footprint, used)
	}
	if a.cursor%a.alignment != 0 {
		return 0, nil, fmt.Errorf("%w: offset %d, alignment %d", ErrMisaligned, a.cursor, a.alignment)
	}
	if footprint > len(a.buf)-a.cursor {
		return 0, nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrExhausted, footprint, a.cursor, len(a.buf))
	}

	offset := a.cursor
	region := a.buf[offset : offset+footprint : offset+footprint]
	a.cursor += footprint

	a.stats.Regions++
	a.stats.BytesUsed += uint64(used)
	a.stats.BytesWasted += uint64(footprint - used)

	return offset, region, nil
}

// ClaimTyped claims footprint bytes and returns the first count elements of
// the region as a []T. T must be a pointer-free type whose alignment divides
// the arena alignment.
func ClaimTyped[T any](a *Arena, footprint, count int) (int, []T, error) {
	size := mem.SizeOf[T]()
	if count < 0 || count*size > footprint {
		return 0, nil, fmt.Errorf("%w: %d elements of %d bytes in %d bytes", ErrExhausted, count, size, footprint)
	}
	if align := mem.AlignOf[T](); a.alignment%align != 0 {
		return 0, nil, fmt.Errorf("%w: element alignment %d, arena alignment %d", ErrMisaligned, align, a.alignment)
	}

	offset, region, err := a.Claim(footprint, count*size)
	if err != nil {
		return 0, nil, err
	}
	return offset, mem.Cast[T](region, count), nil
}

// Bytes returns the whole buffer. It is nil for empty or closed arenas.
func (a *Arena) Bytes() []byte {
	if a.closed.Load() {
		return nil
	}
	return a.buf
}

// Size returns the buffer size in bytes.
func (a *Arena) Size() int { return len(a.buf) }

// Alignment returns the configured alignment.
func (a *Arena) Alignment() int { return a.alignment }

// Backend returns the buffer backend.
func (a *Arena) Backend() Backend { return a.backend }

// Remaining returns the number of unclaimed bytes.
func (a *Arena) Remaining() int { return len(a.buf) - a.cursor }

// Stats returns a snapshot of the arena statistics.
func (a *Arena) Stats() Stats { return a.stats }

// Close releases the buffer. It is idempotent. Regions handed out earlier
// must not be used afterwards.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	a.buf = nil
	a.release()

	return err
}

func (a *Arena) release() {
	if a.acquirer != nil && a.reserved > 0 {
		a.acquirer.ReleaseMemory(a.reserved)
		a.reserved = 0
	}
}
