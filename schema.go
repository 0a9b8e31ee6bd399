package soa

import (
	"fmt"
	"reflect"
)

// Schema is the ordered set of fields of record type R.
//
// Field order is registration order and determines the order of the dense
// field arrays in storage. A Schema is immutable and safe for concurrent use
// once created.
type Schema[R any] struct {
	record reflect.Type
	cols   []Column[R]
	fields []Field
	byName map[string]int
}

// NewSchema registers cols as the fields of R, in order.
//
// Names must be non-empty and unique, matrix dimensions positive, and every
// handle must have an accessor. A handle can belong to one schema only.
func NewSchema[R any](cols ...Column[R]) (*Schema[R], error) {
	s := &Schema[R]{
		record: reflect.TypeFor[R](),
		cols:   make([]Column[R], 0, len(cols)),
		fields: make([]Field, 0, len(cols)),
		byName: make(map[string]int, len(cols)),
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrInvalidSchema, s.record)
	}

	for i, col := range cols {
		if col == nil {
			return nil, fmt.Errorf("%w: field %d is nil", ErrInvalidSchema, i)
		}
		if err := col.valid(); err != nil {
			return nil, err
		}
		f := col.Field()
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field %d has an empty name", ErrInvalidSchema, i)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.Name)
		}
		s.byName[f.Name] = i
		s.cols = append(s.cols, col)
		s.fields = append(s.fields, f)
	}

	// bind(nil, 0) only checks ownership; a failed registration leaves all
	// handles untouched.
	for _, col := range s.cols {
		if err := col.bind(nil, 0); err != nil {
			return nil, err
		}
	}
	for i, col := range s.cols {
		if err := col.bind(s, i); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema[R any](cols ...Column[R]) *Schema[R] {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the field descriptors in order.
func (s *Schema[R]) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Len returns the number of fields.
func (s *Schema[R]) Len() int { return len(s.fields) }

// Field returns the descriptor of the named field.
func (s *Schema[R]) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// RecordType returns the reflected record type R.
func (s *Schema[R]) RecordType() reflect.Type { return s.record }

func (s *Schema[R]) maxElemSize() int {
	m := 1
	for _, f := range s.fields {
		m = max(m, f.Elem.Size())
	}
	return m
}

func lookup[C any, R any](s *Schema[R], name string, kind Kind) (C, error) {
	var zero C
	i, ok := s.byName[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	f := s.fields[i]
	c, ok := s.cols[i].(C)
	if !ok || f.Kind != kind {
		return zero, fmt.Errorf("%w: %q is %s", ErrFieldTypeMismatch, name, f)
	}
	return c, nil
}

// ScalarOf returns the handle of the named scalar field with element type T.
func ScalarOf[T Scalar, R any](s *Schema[R], name string) (*ScalarCol[R, T], error) {
	return lookup[*ScalarCol[R, T]](s, name, KindScalar)
}

// VectorOf returns the handle of the named vector field with element type T.
func VectorOf[T Scalar, R any](s *Schema[R], name string) (*VectorCol[R, T], error) {
	return lookup[*VectorCol[R, T]](s, name, KindVector)
}

// MatrixOf returns the handle of the named matrix field with element type T.
func MatrixOf[T Scalar, R any](s *Schema[R], name string) (*MatrixCol[R, T], error) {
	return lookup[*MatrixCol[R, T]](s, name, KindMatrix)
}
