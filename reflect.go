package soa

import (
	"reflect"
	"unsafe"
)

// TagName is the struct tag consulted by Reflect.
const TagName = "soa"

// Reflect derives a schema from the exported fields of struct type R.
//
// Numeric fields become scalar fields, [D][D]T arrays of a numeric T become
// D×D matrix fields and []T slices of a numeric T become vector fields.
// The tag `soa:"name"` renames a field and `soa:"-"` skips it. Any other
// exported field type is rejected with an *UnsupportedFieldTypeError before
// anything is allocated.
//
// Handles of a reflected schema are looked up by name with ScalarOf,
// VectorOf and MatrixOf using the underlying element type: a field of type
// `type Celsius float32` is read with ScalarOf[float32].
func Reflect[R any]() (*Schema[R], error) {
	rt := reflect.TypeFor[R]()
	if rt.Kind() != reflect.Struct {
		return nil, &UnsupportedFieldTypeError{Record: rt.String(), Type: rt, Reason: "record type is not a struct"}
	}

	cols := make([]Column[R], 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		col, reason := reflectField[R](name, sf)
		if col == nil {
			return nil, &UnsupportedFieldTypeError{Record: rt.String(), Field: sf.Name, Type: sf.Type, Reason: reason}
		}
		cols = append(cols, col)
	}

	return NewSchema(cols...)
}

// MustReflect is like Reflect but panics on error.
func MustReflect[R any]() *Schema[R] {
	s, err := Reflect[R]()
	if err != nil {
		panic(err)
	}
	return s
}

func reflectField[R any](name string, sf reflect.StructField) (Column[R], string) {
	ft := sf.Type
	if st, ok := scalarTypeOfKind(ft.Kind()); ok {
		return reflectColumn[R](KindScalar, st, name, sf.Offset, 0), ""
	}

	switch ft.Kind() {
	case reflect.Slice:
		st, ok := scalarTypeOfKind(ft.Elem().Kind())
		if !ok {
			if ft.Elem().Kind() == reflect.Slice {
				return nil, "nested variable-length sequences are not supported"
			}
			return nil, "slice element is not a number"
		}
		return reflectColumn[R](KindVector, st, name, sf.Offset, 0), ""
	case reflect.Array:
		inner := ft.Elem()
		if inner.Kind() != reflect.Array {
			return nil, "one-dimensional arrays are not supported, use a slice"
		}
		if ft.Len() != inner.Len() {
			return nil, "matrix is not square"
		}
		if ft.Len() == 0 {
			return nil, "matrix dimension is zero"
		}
		st, ok := scalarTypeOfKind(inner.Elem().Kind())
		if !ok {
			return nil, "matrix element is not a number"
		}
		return reflectColumn[R](KindMatrix, st, name, sf.Offset, ft.Len()), ""
	default:
		return nil, ft.Kind().String() + " fields are not supported"
	}
}

func reflectColumn[R any](kind Kind, st ScalarType, name string, off uintptr, dim int) Column[R] {
	switch st {
	case Int8:
		return reflectColumnOf[R, int8](kind, name, off, dim)
	case Int16:
		return reflectColumnOf[R, int16](kind, name, off, dim)
	case Int32:
		return reflectColumnOf[R, int32](kind, name, off, dim)
	case Int64:
		return reflectColumnOf[R, int64](kind, name, off, dim)
	case Uint8:
		return reflectColumnOf[R, uint8](kind, name, off, dim)
	case Uint16:
		return reflectColumnOf[R, uint16](kind, name, off, dim)
	case Uint32:
		return reflectColumnOf[R, uint32](kind, name, off, dim)
	case Uint64:
		return reflectColumnOf[R, uint64](kind, name, off, dim)
	case Float32:
		return reflectColumnOf[R, float32](kind, name, off, dim)
	case Float64:
		return reflectColumnOf[R, float64](kind, name, off, dim)
	case Int:
		return reflectColumnOf[R, int](kind, name, off, dim)
	case Uint:
		return reflectColumnOf[R, uint](kind, name, off, dim)
	case Uintptr:
		return reflectColumnOf[R, uintptr](kind, name, off, dim)
	default:
		return nil
	}
}

// reflectColumnOf builds accessors that read the field at byte offset off of
// the record. Named numeric types share the memory layout of their
// underlying type, so reading them as T is exact.
func reflectColumnOf[R any, T Scalar](kind Kind, name string, off uintptr, dim int) Column[R] {
	switch kind {
	case KindScalar:
		return ScalarField(name, func(r *R) T {
			return *(*T)(unsafe.Add(unsafe.Pointer(r), off)) //nolint:gosec // offset from reflect.StructField
		})
	case KindVector:
		return VectorField(name, func(r *R) []T {
			return *(*[]T)(unsafe.Add(unsafe.Pointer(r), off)) //nolint:gosec // offset from reflect.StructField
		})
	default:
		size := uintptr(unsafe.Sizeof(*new(T)))
		return MatrixField(name, dim, func(r *R, row, col int) T {
			return *(*T)(unsafe.Add(unsafe.Pointer(r), off+uintptr(row*dim+col)*size)) //nolint:gosec // offset from reflect.StructField
		})
	}
}
