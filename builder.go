package soa

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/soa/internal/arena"
	"github.com/hupe1980/soa/internal/layout"
	"github.com/hupe1980/soa/resource"
)

// Builder turns batches of records into containers.
//
// A Builder is an immutable value: the fluent setters return a modified copy.
// It is safe to call Build concurrently.
//
// Example:
//
//	c, err := soa.NewBuilder(schema).
//	    Alignment(64).
//	    Parallelism(4).
//	    Build(ctx, records)
type Builder[R any] struct {
	schema *Schema[R]
	opts   options
}

// NewBuilder creates a builder for schema.
func NewBuilder[R any](schema *Schema[R], opts ...Option) Builder[R] {
	return Builder[R]{schema: schema, opts: applyOptions(opts)}
}

// Alignment sets the byte alignment of every dense field array.
func (b Builder[R]) Alignment(alignment int) Builder[R] {
	b.opts.alignment = alignment
	return b
}

// FootprintPolicy sets how vector field footprints are accounted.
func (b Builder[R]) FootprintPolicy(p Policy) Builder[R] {
	b.opts.policy = p
	return b
}

// Backend sets where storage lives.
func (b Builder[R]) Backend(backend Backend) Builder[R] {
	b.opts.backend = backend
	return b
}

// Parallelism sets the number of fields populated concurrently.
func (b Builder[R]) Parallelism(n int) Builder[R] {
	b.opts.parallelism = n
	return b
}

// ResourceController shares resource limits with other builds.
func (b Builder[R]) ResourceController(rc *resource.Controller) Builder[R] {
	b.opts.controller = rc
	return b
}

// Logger sets the logger.
func (b Builder[R]) Logger(l *Logger) Builder[R] {
	WithLogger(l)(&b.opts)
	return b
}

// Metrics sets the metrics collector.
func (b Builder[R]) Metrics(mc MetricsCollector) Builder[R] {
	WithMetricsCollector(mc)(&b.opts)
	return b
}

func (b Builder[R]) validate() error {
	if b.schema == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	a := b.opts.alignment
	if !layout.IsPowerOfTwo(a) {
		return fmt.Errorf("%w: %d is not a power of two", ErrInvalidAlignment, a)
	}
	if m := b.schema.maxElemSize(); a < m {
		return fmt.Errorf("%w: %d is smaller than the widest element (%d bytes)", ErrInvalidAlignment, a, m)
	}
	return nil
}

// plan measures the vector fields of records and computes the layout.
func (b Builder[R]) plan(records []R) (*layout.Plan, error) {
	cols := b.schema.cols
	specs := make([]layout.Spec, len(cols))
	lengths := make([][]int, len(cols))
	for k, col := range cols {
		specs[k] = col.spec()
		l, err := col.measure(records)
		if err != nil {
			return nil, err
		}
		lengths[k] = l
	}

	p, err := layout.Compute(len(records), specs, lengths, b.opts.alignment, b.opts.policy)
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// Plan computes the layout Build would use for records without allocating
// storage.
func (b Builder[R]) Plan(records []R) (LayoutReport, error) {
	if err := b.validate(); err != nil {
		return LayoutReport{}, err
	}
	p, err := b.plan(records)
	if err != nil {
		return LayoutReport{}, err
	}
	return newLayoutReport(b.schema, p, b.opts.backend), nil
}

// Build transposes records into a new container.
//
// Storage is allocated once, sized by the layout plan, and every field value
// is written exactly once. On any failure the storage is released and no
// container is returned. records is only read; the container does not
// reference it afterwards.
func (b Builder[R]) Build(ctx context.Context, records []R) (c *Container[R], err error) {
	start := time.Now()
	o := b.opts
	defer func() {
		bytes := 0
		if c != nil {
			bytes = c.plan.TotalBytes
		}
		o.metricsCollector.RecordBuild(len(records), bytes, time.Since(start), err)
		fields := 0
		if b.schema != nil {
			fields = b.schema.Len()
		}
		o.logger.LogBuild(ctx, len(records), fields, bytes, o.alignment, err)
	}()

	if err := b.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := b.plan(records)
	if err != nil {
		return nil, err
	}

	arenaOpts := []arena.Option{arena.WithBackend(o.backend)}
	if o.controller != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(o.controller))
	}
	a, err := arena.New(ctx, p.TotalBytes, o.alignment, arenaOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	built := &Container[R]{
		schema: b.schema,
		n:      len(records),
		cols:   make([]columnData, b.schema.Len()),
		arena:  a,
		plan:   p,
		opts:   o,
	}

	for k, col := range b.schema.cols {
		e := p.Entries[k]
		off, data, err := col.claim(a, e)
		if err == nil && off != e.ByteOffset {
			err = fmt.Errorf("%w: field %q claimed at offset %d, planned %d", ErrAllocation, col.Field().Name, off, e.ByteOffset)
		}
		if err != nil {
			_ = a.Close()
			return nil, translateError(err)
		}
		built.cols[k] = columnData{data: data, extents: p.Extents[k], entry: e}
	}

	if err := b.populate(ctx, records, built); err != nil {
		_ = a.Close()
		return nil, err
	}

	return built, nil
}

func (b Builder[R]) populate(ctx context.Context, records []R, c *Container[R]) error {
	cols := b.schema.cols
	rc := b.opts.controller

	log := b.opts.logger.WithRecords(len(records))

	var mu sync.Mutex
	done := bitset.New(uint(len(cols)))

	task := func(ctx context.Context, k int) error {
		if err := rc.AcquireWorker(ctx); err != nil {
			return err
		}
		defer rc.ReleaseWorker()

		if err := rc.AcquireThroughput(ctx, c.cols[k].entry.ByteFootprint); err != nil {
			return err
		}
		if err := cols[k].populate(ctx, records, &c.cols[k]); err != nil {
			return err
		}
		e := c.cols[k].entry
		log.WithField(cols[k].Field().Name).DebugContext(ctx, "field populated",
			"elements", e.ElementCount,
			"offset", e.ByteOffset,
		)

		mu.Lock()
		done.Set(uint(k))
		mu.Unlock()
		return nil
	}

	if b.opts.parallelism <= 1 {
		for k := range cols {
			if err := task(ctx, k); err != nil {
				return err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.opts.parallelism)
		for k := range cols {
			g.Go(func() error { return task(gctx, k) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	if !done.All() {
		return fmt.Errorf("%w: %d of %d fields populated", ErrElementConstruction, done.Count(), len(cols))
	}
	return nil
}

// New builds a container from records with a one-off builder.
func New[R any](ctx context.Context, schema *Schema[R], records []R, opts ...Option) (*Container[R], error) {
	return NewBuilder(schema, opts...).Build(ctx, records)
}

// FromRecords reflects the schema of R and builds a container from records.
// Use the returned container's Schema with ScalarOf, VectorOf and MatrixOf
// to obtain field handles.
func FromRecords[R any](ctx context.Context, records []R, opts ...Option) (*Container[R], error) {
	schema, err := Reflect[R]()
	if err != nil {
		return nil, err
	}
	return New(ctx, schema, records, opts...)
}
