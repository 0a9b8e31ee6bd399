package soa

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/soa/internal/arena"
	"github.com/hupe1980/soa/internal/layout"
)

// Scalar is the set of element types a dense field array can hold.
// All of them are pointer-free, fixed-size numbers.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~int | ~uint | ~uintptr
}

// Kind classifies a record field.
type Kind uint8

const (
	// KindScalar is a single number per record.
	KindScalar Kind = iota
	// KindMatrix is a fixed D×D matrix of numbers per record.
	KindMatrix
	// KindVector is a variable-length sequence of numbers per record.
	KindVector
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMatrix:
		return "matrix"
	case KindVector:
		return "vector"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{KindScalar, KindMatrix, KindVector} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown field kind %q", text)
}

// ScalarType tags the element type of a field.
type ScalarType uint8

// Element type tags. The zero value is invalid.
const (
	Int8 ScalarType = iota + 1
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Int
	Uint
	Uintptr
)

var scalarTypeNames = [...]string{
	Int8: "int8", Int16: "int16", Int32: "int32", Int64: "int64",
	Uint8: "uint8", Uint16: "uint16", Uint32: "uint32", Uint64: "uint64",
	Float32: "float32", Float64: "float64",
	Int: "int", Uint: "uint", Uintptr: "uintptr",
}

var scalarTypeSizes = [...]int{
	Int8: 1, Int16: 2, Int32: 4, Int64: 8,
	Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
	Float32: 4, Float64: 8,
	Int: int(unsafe.Sizeof(int(0))), Uint: int(unsafe.Sizeof(uint(0))), Uintptr: int(unsafe.Sizeof(uintptr(0))),
}

// String returns the Go name of the element type.
func (t ScalarType) String() string {
	if int(t) < len(scalarTypeNames) && scalarTypeNames[t] != "" {
		return scalarTypeNames[t]
	}
	return fmt.Sprintf("ScalarType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ScalarType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScalarType) UnmarshalText(text []byte) error {
	for i, name := range scalarTypeNames {
		if name != "" && name == string(text) {
			*t = ScalarType(i) //nolint:gosec // bounded by the name table
			return nil
		}
	}
	return fmt.Errorf("unknown element type %q", text)
}

// Size returns the element width in bytes, or 0 for an invalid tag.
func (t ScalarType) Size() int {
	if int(t) < len(scalarTypeSizes) {
		return scalarTypeSizes[t]
	}
	return 0
}

func scalarTypeOfKind(k reflect.Kind) (ScalarType, bool) {
	switch k {
	case reflect.Int8:
		return Int8, true
	case reflect.Int16:
		return Int16, true
	case reflect.Int32:
		return Int32, true
	case reflect.Int64:
		return Int64, true
	case reflect.Uint8:
		return Uint8, true
	case reflect.Uint16:
		return Uint16, true
	case reflect.Uint32:
		return Uint32, true
	case reflect.Uint64:
		return Uint64, true
	case reflect.Float32:
		return Float32, true
	case reflect.Float64:
		return Float64, true
	case reflect.Int:
		return Int, true
	case reflect.Uint:
		return Uint, true
	case reflect.Uintptr:
		return Uintptr, true
	default:
		return 0, false
	}
}

func scalarTypeOf[T Scalar]() ScalarType {
	st, _ := scalarTypeOfKind(reflect.TypeFor[T]().Kind())
	return st
}

// Field describes one record field. Descriptors are immutable.
type Field struct {
	Name string     `json:"name"`
	Kind Kind       `json:"kind"`
	Elem ScalarType `json:"elem"`
	Dim  int        `json:"dim,omitempty"` // matrix dimension D, 0 otherwise
}

// String formats the descriptor as "name kind<elem>".
func (f Field) String() string {
	if f.Kind == KindMatrix {
		return fmt.Sprintf("%s matrix<%s,%dx%d>", f.Name, f.Elem, f.Dim, f.Dim)
	}
	return fmt.Sprintf("%s %s<%s>", f.Name, f.Kind, f.Elem)
}

// Extent locates one record's slice inside a vector field's dense array,
// in elements.
type Extent = layout.Extent

// Policy selects how vector field footprints are accounted.
type Policy = layout.Policy

const (
	// FootprintCompact aligns each vector field's total size once.
	FootprintCompact = layout.FootprintCompact
	// FootprintPerRecord aligns every record's vector chunk individually.
	FootprintPerRecord = layout.FootprintPerRecord
)

// ParsePolicy parses "compact" or "per-record".
func ParsePolicy(s string) (Policy, bool) { return layout.ParsePolicy(s) }

// Backend selects where container storage lives.
type Backend = arena.Backend

const (
	// BackendHeap keeps storage on the Go heap.
	BackendHeap = arena.BackendHeap
	// BackendMmap keeps storage in an anonymous mapping outside the Go heap.
	BackendMmap = arena.BackendMmap
)

// ParseBackend parses "heap" or "mmap".
func ParseBackend(s string) (Backend, bool) { return arena.ParseBackend(s) }
