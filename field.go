package soa

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/hupe1980/soa/internal/arena"
	"github.com/hupe1980/soa/internal/layout"
	"github.com/hupe1980/soa/internal/mem"
	"github.com/hupe1980/soa/mdspan"
)

// cancelCheckInterval is the number of records populated between context checks.
const cancelCheckInterval = 4096

// Column is a field handle registered with a Schema.
//
// It is implemented by *ScalarCol, *VectorCol and *MatrixCol. A handle
// belongs to exactly one schema and reads from containers built with it.
type Column[R any] interface {
	// Field returns the field descriptor.
	Field() Field

	bind(owner *Schema[R], idx int) error
	valid() error
	spec() layout.Spec
	measure(records []R) ([]int, error)
	claim(a *arena.Arena, e layout.Entry) (int, any, error)
	populate(ctx context.Context, records []R, d *columnData) error
	value(d *columnData, n, i int) any
	addr(d *columnData, n, i int) uintptr
}

// columnData is the storage of one field inside a container.
type columnData struct {
	data    any      // []T
	extents []Extent // vector fields only
	entry   layout.Entry
}

// handle carries what every field handle shares.
type handle[R any] struct {
	name  string
	owner *Schema[R]
	idx   int
}

func (h *handle[R]) bind(owner *Schema[R], idx int) error {
	if h.owner != nil && h.owner != owner {
		return fmt.Errorf("%w: field %q is already registered with another schema", ErrInvalidSchema, h.name)
	}
	if owner != nil {
		h.owner = owner
		h.idx = idx
	}
	return nil
}

func dataOf[R any](c *Container[R], h *handle[R]) *columnData {
	if c.closed.Load() {
		panic(ErrClosed)
	}
	if h.owner == nil || h.owner != c.schema {
		panic(fmt.Errorf("%w: %q", ErrForeignField, h.name))
	}
	return &c.cols[h.idx]
}

func constructionError(name string, record int, r any) error {
	return &ElementConstructionError{Field: name, Record: record, Cause: panicError(r)}
}

// ScalarCol is the handle of a scalar field: one T per record, stored at
// the record's index.
type ScalarCol[R any, T Scalar] struct {
	handle[R]
	get func(*R) T
}

// ScalarField declares a scalar field read from each record with get.
func ScalarField[R any, T Scalar](name string, get func(*R) T) *ScalarCol[R, T] {
	return &ScalarCol[R, T]{handle: handle[R]{name: name}, get: get}
}

// Field implements Column.
func (s *ScalarCol[R, T]) Field() Field {
	return Field{Name: s.name, Kind: KindScalar, Elem: scalarTypeOf[T]()}
}

func (s *ScalarCol[R, T]) valid() error {
	if s.get == nil {
		return fmt.Errorf("%w: field %q has no accessor", ErrInvalidSchema, s.name)
	}
	return nil
}

func (s *ScalarCol[R, T]) spec() layout.Spec {
	return layout.Spec{Name: s.name, ElemSize: mem.SizeOf[T](), Shape: layout.Fixed, PerRecord: 1}
}

func (s *ScalarCol[R, T]) measure([]R) ([]int, error) { return nil, nil }

func (s *ScalarCol[R, T]) claim(a *arena.Arena, e layout.Entry) (int, any, error) {
	return arena.ClaimTyped[T](a, e.ByteFootprint, e.ElementCount)
}

func (s *ScalarCol[R, T]) populate(ctx context.Context, records []R, d *columnData) (err error) {
	dst := d.data.([]T)
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = constructionError(s.name, i, r)
		}
	}()

	for ; i < len(records); i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		dst[i] = s.get(&records[i])
	}
	return nil
}

func (s *ScalarCol[R, T]) value(d *columnData, _, i int) any { return d.data.([]T)[i] }

func (s *ScalarCol[R, T]) addr(d *columnData, _, i int) uintptr {
	return uintptr(unsafe.Pointer(&d.data.([]T)[i])) //nolint:gosec // address reporting only
}

// Get returns the field value of the viewed record.
func (s *ScalarCol[R, T]) Get(v View[R]) T {
	return dataOf(v.c, &s.handle).data.([]T)[v.i]
}

// Ref returns the address of the field value of the viewed record. The
// pointer aliases container storage and stays valid until Close.
func (s *ScalarCol[R, T]) Ref(v View[R]) *T {
	return &dataOf(v.c, &s.handle).data.([]T)[v.i]
}

// Column returns the dense array of the field, one element per record.
func (s *ScalarCol[R, T]) Column(c *Container[R]) []T {
	return dataOf(c, &s.handle).data.([]T)
}

// VectorCol is the handle of a vector field: a variable number of T per
// record, stored back to back in record order.
type VectorCol[R any, T Scalar] struct {
	handle[R]
	get func(*R) []T
}

// VectorField declares a vector field read from each record with get.
// get is called twice per record during a build and must return slices of
// the same length both times.
func VectorField[R any, T Scalar](name string, get func(*R) []T) *VectorCol[R, T] {
	return &VectorCol[R, T]{handle: handle[R]{name: name}, get: get}
}

// Field implements Column.
func (s *VectorCol[R, T]) Field() Field {
	return Field{Name: s.name, Kind: KindVector, Elem: scalarTypeOf[T]()}
}

func (s *VectorCol[R, T]) valid() error {
	if s.get == nil {
		return fmt.Errorf("%w: field %q has no accessor", ErrInvalidSchema, s.name)
	}
	return nil
}

func (s *VectorCol[R, T]) spec() layout.Spec {
	return layout.Spec{Name: s.name, ElemSize: mem.SizeOf[T](), Shape: layout.Jagged}
}

func (s *VectorCol[R, T]) measure(records []R) (lengths []int, err error) {
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = constructionError(s.name, i, r)
		}
	}()

	lengths = make([]int, len(records))
	for ; i < len(records); i++ {
		lengths[i] = len(s.get(&records[i]))
	}
	return lengths, nil
}

func (s *VectorCol[R, T]) claim(a *arena.Arena, e layout.Entry) (int, any, error) {
	return arena.ClaimTyped[T](a, e.ByteFootprint, e.ElementCount)
}

func (s *VectorCol[R, T]) populate(ctx context.Context, records []R, d *columnData) (err error) {
	dst := d.data.([]T)
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = constructionError(s.name, i, r)
		}
	}()

	for ; i < len(records); i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		src := s.get(&records[i])
		ext := d.extents[i]
		if len(src) != ext.Length {
			return &ElementConstructionError{
				Field:  s.name,
				Record: i,
				Cause:  fmt.Errorf("%w: planned %d elements, got %d", ErrLengthChanged, ext.Length, len(src)),
			}
		}
		copy(dst[ext.Offset:ext.End()], src)
	}
	return nil
}

func (s *VectorCol[R, T]) slice(d *columnData, i int) []T {
	ext := d.extents[i]
	return d.data.([]T)[ext.Offset:ext.End():ext.End()]
}

func (s *VectorCol[R, T]) value(d *columnData, _, i int) any { return s.slice(d, i) }

func (s *VectorCol[R, T]) addr(d *columnData, _, i int) uintptr {
	ext := d.extents[i]
	return uintptr(unsafe.Pointer(unsafe.SliceData(d.data.([]T)[ext.Offset:]))) //nolint:gosec // address reporting only
}

// Get returns the elements of the viewed record. The slice aliases container
// storage; its capacity ends at the record's last element, so appending to
// it never overwrites the next record.
func (s *VectorCol[R, T]) Get(v View[R]) []T {
	return s.slice(dataOf(v.c, &s.handle), v.i)
}

// Column returns the dense array holding the elements of all records.
func (s *VectorCol[R, T]) Column(c *Container[R]) []T {
	return dataOf(c, &s.handle).data.([]T)
}

// Extents returns a copy of the offset table: the position of every record's
// elements in Column, in record order.
func (s *VectorCol[R, T]) Extents(c *Container[R]) []Extent {
	return append([]Extent(nil), dataOf(c, &s.handle).extents...)
}

// MatrixCol is the handle of a fixed D×D matrix field. Entry (row, col) of
// record i is stored at ((row*D)+col)*N + i for a batch of N records, so
// every entry forms its own contiguous run across records.
type MatrixCol[R any, T Scalar] struct {
	handle[R]
	dim int
	get func(r *R, row, col int) T
}

// MatrixField declares a dim×dim matrix field whose entries are read from
// each record with get.
func MatrixField[R any, T Scalar](name string, dim int, get func(r *R, row, col int) T) *MatrixCol[R, T] {
	return &MatrixCol[R, T]{handle: handle[R]{name: name}, dim: dim, get: get}
}

// Field implements Column.
func (s *MatrixCol[R, T]) Field() Field {
	return Field{Name: s.name, Kind: KindMatrix, Elem: scalarTypeOf[T](), Dim: s.dim}
}

// Dim returns the matrix dimension D.
func (s *MatrixCol[R, T]) Dim() int { return s.dim }

func (s *MatrixCol[R, T]) valid() error {
	if s.get == nil {
		return fmt.Errorf("%w: field %q has no accessor", ErrInvalidSchema, s.name)
	}
	if s.dim <= 0 {
		return fmt.Errorf("%w: field %q has matrix dimension %d", ErrInvalidSchema, s.name, s.dim)
	}
	return nil
}

func (s *MatrixCol[R, T]) spec() layout.Spec {
	return layout.Spec{Name: s.name, ElemSize: mem.SizeOf[T](), Shape: layout.Fixed, PerRecord: s.dim * s.dim}
}

func (s *MatrixCol[R, T]) measure([]R) ([]int, error) { return nil, nil }

func (s *MatrixCol[R, T]) claim(a *arena.Arena, e layout.Entry) (int, any, error) {
	return arena.ClaimTyped[T](a, e.ByteFootprint, e.ElementCount)
}

func (s *MatrixCol[R, T]) populate(ctx context.Context, records []R, d *columnData) (err error) {
	dst := d.data.([]T)
	n := len(records)
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = constructionError(s.name, i, r)
		}
	}()

	for ; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec := &records[i]
		for row := 0; row < s.dim; row++ {
			for col := 0; col < s.dim; col++ {
				dst[(row*s.dim+col)*n+i] = s.get(rec, row, col)
			}
		}
	}
	return nil
}

func (s *MatrixCol[R, T]) view(d *columnData, n, i int) mdspan.Strided[T] {
	return mdspan.MustNew(d.data.([]T), i, []int{s.dim, s.dim}, []int{s.dim * n, n})
}

func (s *MatrixCol[R, T]) value(d *columnData, n, i int) any { return s.view(d, n, i).Rows() }

func (s *MatrixCol[R, T]) addr(d *columnData, _, i int) uintptr {
	return uintptr(unsafe.Pointer(&d.data.([]T)[i])) //nolint:gosec // address reporting only
}

// Get returns a strided D×D view of the viewed record's matrix. The view
// aliases container storage.
func (s *MatrixCol[R, T]) Get(v View[R]) mdspan.Strided[T] {
	return s.view(dataOf(v.c, &s.handle), v.c.n, v.i)
}

// Column returns the dense array holding all matrices, entry-major.
func (s *MatrixCol[R, T]) Column(c *Container[R]) []T {
	return dataOf(c, &s.handle).data.([]T)
}
