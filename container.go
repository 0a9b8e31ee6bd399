package soa

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/hupe1980/soa/internal/arena"
	"github.com/hupe1980/soa/internal/hash"
	"github.com/hupe1980/soa/internal/layout"
)

// StorageStats reports how the storage buffer is used.
type StorageStats = arena.Stats

// Container holds a batch of records transposed into one dense array per
// field, all carved from a single contiguous, aligned buffer.
//
// A Container is read-only after Build and safe for concurrent readers.
// Values reached through Ref or Column may be modified in place; such writes
// need external synchronization.
type Container[R any] struct {
	schema *Schema[R]
	n      int
	cols   []columnData
	arena  *arena.Arena
	plan   *layout.Plan
	opts   options
	closed atomic.Bool
}

// Len returns the number of records.
func (c *Container[R]) Len() int { return c.n }

// Schema returns the schema the container was built with.
func (c *Container[R]) Schema() *Schema[R] { return c.schema }

// Fields returns the field descriptors in storage order.
func (c *Container[R]) Fields() []Field { return c.schema.Fields() }

// At returns a view of record i. It fails with an *OutOfRangeError when
// i is not in [0, Len()) and with ErrClosed after Close.
func (c *Container[R]) At(i int) (View[R], error) {
	if c.closed.Load() {
		return View[R]{}, ErrClosed
	}
	if i < 0 || i >= c.n {
		c.opts.metricsCollector.RecordOutOfRange()
		c.opts.logger.LogAccessError(context.Background(), i, c.n)
		return View[R]{}, &OutOfRangeError{Index: i, Size: c.n}
	}
	return View[R]{c: c, i: i}, nil
}

// UncheckedAt returns a view of record i without validating i. Accessors
// of a view with an invalid index panic like an out-of-range slice index.
func (c *Container[R]) UncheckedAt(i int) View[R] {
	return View[R]{c: c, i: i}
}

// All iterates over the views of all records in index order.
func (c *Container[R]) All() iter.Seq2[int, View[R]] {
	return func(yield func(int, View[R]) bool) {
		for i := 0; i < c.n; i++ {
			if c.closed.Load() || !yield(i, View[R]{c: c, i: i}) {
				return
			}
		}
	}
}

// Bytes returns the storage buffer. It is nil for empty or closed containers.
func (c *Container[R]) Bytes() []byte {
	if c.closed.Load() {
		return nil
	}
	return c.arena.Bytes()
}

// Layout returns the layout of the storage buffer.
func (c *Container[R]) Layout() LayoutReport {
	return newLayoutReport(c.schema, c.plan, c.arena.Backend())
}

// Stats returns storage usage statistics.
func (c *Container[R]) Stats() StorageStats {
	return c.arena.Stats()
}

// Checksum returns a CRC32C digest of the stored values. Padding is
// excluded, so containers holding the same records under the same schema
// have equal checksums whatever their alignment, policy or backend.
func (c *Container[R]) Checksum() (uint32, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	buf := c.arena.Bytes()
	d := hash.New()
	for k, f := range c.schema.fields {
		e := c.cols[k].entry
		d.WriteString(f.Name)
		d.WriteInt(e.ElementCount)
		for _, x := range c.cols[k].extents {
			d.WriteInt(x.Length)
		}
		d.Write(buf[e.ByteOffset : e.ByteOffset+e.ElementCount*f.Elem.Size()])
	}
	return d.Sum32(), nil
}

// Close releases the storage buffer and any reserved memory budget. Views,
// slices and pointers obtained from the container must not be used
// afterwards. Close is idempotent.
func (c *Container[R]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return translateError(c.arena.Close())
}

// View is a lightweight handle on one record of a container. Field values
// are read through field handles and alias container storage.
type View[R any] struct {
	c *Container[R]
	i int
}

// Index returns the record index.
func (v View[R]) Index() int { return v.i }

// Container returns the container the view reads from.
func (v View[R]) Container() *Container[R] { return v.c }

// FieldLayout is the placement of one dense field array.
type FieldLayout struct {
	Field
	Elements  int      `json:"elements"`
	Footprint int      `json:"footprint"`
	Offset    int      `json:"offset"`
	Padding   int      `json:"padding"`
	Extents   []Extent `json:"extents,omitempty"`
}

// LayoutReport describes a storage buffer.
type LayoutReport struct {
	Records    int           `json:"records"`
	Alignment  int           `json:"alignment"`
	Policy     string        `json:"policy"`
	Backend    string        `json:"backend"`
	TotalBytes int           `json:"total_bytes"`
	Padding    int           `json:"padding"`
	Fields     []FieldLayout `json:"fields"`
}

func newLayoutReport[R any](s *Schema[R], p *layout.Plan, backend Backend) LayoutReport {
	r := LayoutReport{
		Records:    p.Records,
		Alignment:  p.Alignment,
		Policy:     p.Policy.String(),
		Backend:    backend.String(),
		TotalBytes: p.TotalBytes,
		Padding:    p.TotalPadding(),
		Fields:     make([]FieldLayout, len(p.Entries)),
	}
	for k, e := range p.Entries {
		r.Fields[k] = FieldLayout{
			Field:     s.fields[k],
			Elements:  e.ElementCount,
			Footprint: e.ByteFootprint,
			Offset:    e.ByteOffset,
			Padding:   p.Padding(k),
			Extents:   append([]Extent(nil), p.Extents[k]...),
		}
	}
	return r
}
