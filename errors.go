package soa

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/soa/internal/arena"
	"github.com/hupe1980/soa/internal/conv"
	"github.com/hupe1980/soa/internal/layout"
	"github.com/hupe1980/soa/internal/mmap"
	"github.com/hupe1980/soa/resource"
)

var (
	// ErrInvalidAlignment is returned when the alignment is not a power of two
	// or is smaller than the alignment of a field's element type.
	ErrInvalidAlignment = errors.New("invalid alignment")
	// ErrInvalidSchema is returned for malformed field registrations.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrUnsupportedFieldType is matched by *UnsupportedFieldTypeError.
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	// ErrAllocation is returned when the storage buffer cannot be allocated.
	ErrAllocation = errors.New("storage allocation failed")
	// ErrElementConstruction is matched by *ElementConstructionError.
	ErrElementConstruction = errors.New("element construction failed")
	// ErrOutOfRange is matched by *OutOfRangeError.
	ErrOutOfRange = errors.New("index out of range")
	// ErrClosed is returned when accessing a closed container.
	ErrClosed = errors.New("container is closed")
	// ErrFieldNotFound is returned by name lookups for unknown fields.
	ErrFieldNotFound = errors.New("field not found")
	// ErrForeignField is the panic value when a field handle is used with a
	// container built from a different schema.
	ErrForeignField = errors.New("field handle belongs to another schema")
	// ErrFieldTypeMismatch is returned by name lookups with the wrong kind or element type.
	ErrFieldTypeMismatch = errors.New("field type mismatch")
	// ErrLengthChanged is the cause of an ElementConstructionError when a vector
	// field's length differs between planning and population.
	ErrLengthChanged = errors.New("vector length changed during build")
)

// UnsupportedFieldTypeError indicates a record field whose shape is neither a
// scalar, a square fixed matrix nor a vector of scalars.
type UnsupportedFieldTypeError struct {
	Record string
	Field  string
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("unsupported field type: %s.%s (%v): %s", e.Record, e.Field, e.Type, e.Reason)
}

// Is reports whether target is ErrUnsupportedFieldType.
func (e *UnsupportedFieldTypeError) Is(target error) bool { return target == ErrUnsupportedFieldType }

// ElementConstructionError indicates that a field value could not be written
// into storage. The container under construction is discarded.
//
// The original underlying error can be accessed via errors.Unwrap.
type ElementConstructionError struct {
	Field  string
	Record int
	Cause  error
}

func (e *ElementConstructionError) Error() string {
	return fmt.Sprintf("element construction failed: field %q, record %d: %v", e.Field, e.Record, e.Cause)
}

// Is reports whether target is ErrElementConstruction.
func (e *ElementConstructionError) Is(target error) bool { return target == ErrElementConstruction }

func (e *ElementConstructionError) Unwrap() error { return e.Cause }

// OutOfRangeError indicates an indexed access with Index >= Size.
type OutOfRangeError struct {
	Index int
	Size  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index out of range: %d with size %d", e.Index, e.Size)
}

// Is reports whether target is ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// panicError converts a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// translateError maps errors from internal packages onto the public sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAllocation),
		errors.Is(err, ErrInvalidAlignment),
		errors.Is(err, ErrElementConstruction):
		return err
	case errors.Is(err, layout.ErrInvalidAlignment):
		return fmt.Errorf("%w: %w", ErrInvalidAlignment, err)
	case errors.Is(err, arena.ErrAllocationFailed),
		errors.Is(err, resource.ErrMemoryLimitExceeded),
		errors.Is(err, mmap.ErrUnsupported),
		errors.Is(err, conv.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	case errors.Is(err, arena.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
