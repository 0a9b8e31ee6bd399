// Package soa transposes batches of records into a structure-of-arrays
// container backed by one contiguous, aligned buffer.
//
// Every field of the record type gets its own dense array. Scalar fields
// hold one value per record, D×D matrix fields hold D*D values per record
// stored entry-major, and vector fields hold a variable number of values
// per record stored back to back. Each dense array starts on a configurable
// power-of-two byte boundary, so columnar scans can use aligned vector loads.
//
// # Quick Start
//
// Register fields explicitly:
//
//	type Particle struct {
//	    X       float32
//	    Samples []int32
//	    Inertia [3][3]float64
//	}
//
//	x := soa.ScalarField("x", func(p *Particle) float32 { return p.X })
//	s := soa.VectorField("samples", func(p *Particle) []int32 { return p.Samples })
//	m := soa.MatrixField("inertia", 3, func(p *Particle, r, c int) float64 { return p.Inertia[r][c] })
//
//	schema, _ := soa.NewSchema(x, s, m)
//	c, _ := soa.New(ctx, schema, particles, soa.WithAlignment(64))
//	defer c.Close()
//
// or derive them by reflection:
//
//	schema, _ := soa.Reflect[Particle]()
//	x, _ := soa.ScalarOf[float32](schema, "X")
//
// # Views
//
// A View names one record. Field handles read through it without copying:
//
//	v, err := c.At(1)
//	x.Get(v)          // float32
//	s.Get(v)          // []int32 aliasing storage
//	m.Get(v).At(2, 0) // strided 3×3 view
//
// Views, slices and pointers obtained from a container alias its storage
// and must not be used after Close.
//
// # Layout
//
// Fields are laid out in registration order. Every footprint is a multiple
// of the alignment, so the next field starts aligned as well. Vector field
// footprints follow the configured Policy: FootprintCompact pads each field
// once, FootprintPerRecord pads every record's chunk.
//
// # Observability
//
// Builds and rejected accesses are reported to a MetricsCollector and a
// structured Logger (log/slog). The prommetrics package exports them to
// Prometheus.
package soa
