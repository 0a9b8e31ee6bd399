package mdspan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRankMismatch is returned when the number of indices does not match the rank.
	ErrRankMismatch = errors.New("mdspan: rank mismatch")
	// ErrOutOfBounds is returned when an index or the mapped range leaves the backing slice.
	ErrOutOfBounds = errors.New("mdspan: out of bounds")
)

// Strided is a read-only strided view of rank len(extents).
type Strided[T any] struct {
	data    []T
	offset  int
	extents []int
	strides []int
}

// New creates a view over data starting at element offset. Every index tuple
// within extents must map into data; otherwise ErrOutOfBounds is returned.
func New[T any](data []T, offset int, extents, strides []int) (Strided[T], error) {
	if len(extents) != len(strides) {
		return Strided[T]{}, fmt.Errorf("%w: %d extents, %d strides", ErrRankMismatch, len(extents), len(strides))
	}
	if offset < 0 {
		return Strided[T]{}, fmt.Errorf("%w: negative offset %d", ErrOutOfBounds, offset)
	}

	last, empty := offset, false
	for r, e := range extents {
		if e < 0 || strides[r] < 0 {
			return Strided[T]{}, fmt.Errorf("%w: dimension %d has extent %d, stride %d", ErrOutOfBounds, r, e, strides[r])
		}
		if e == 0 {
			empty = true
			continue
		}
		last += (e - 1) * strides[r]
	}
	if !empty && last >= len(data) {
		return Strided[T]{}, fmt.Errorf("%w: last element %d, backing length %d", ErrOutOfBounds, last, len(data))
	}

	return Strided[T]{
		data:    data,
		offset:  offset,
		extents: append([]int(nil), extents...),
		strides: append([]int(nil), strides...),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](data []T, offset int, extents, strides []int) Strided[T] {
	s, err := New(data, offset, extents, strides)
	if err != nil {
		panic(err)
	}
	return s
}

// Rank returns the number of dimensions.
func (s Strided[T]) Rank() int { return len(s.extents) }

// Extent returns the extent of dimension r.
func (s Strided[T]) Extent(r int) int { return s.extents[r] }

// Stride returns the element stride of dimension r.
func (s Strided[T]) Stride(r int) int { return s.strides[r] }

// Offset returns the backing index of the element at all-zero indices.
func (s Strided[T]) Offset() int { return s.offset }

// Len returns the number of elements addressed by the view.
func (s Strided[T]) Len() int {
	if len(s.extents) == 0 {
		return 0
	}
	n := 1
	for _, e := range s.extents {
		n *= e
	}
	return n
}

// Index maps an index tuple to a position in the backing slice.
func (s Strided[T]) Index(idx ...int) (int, error) {
	if len(idx) != len(s.extents) {
		return 0, fmt.Errorf("%w: got %d indices for rank %d", ErrRankMismatch, len(idx), len(s.extents))
	}
	pos := s.offset
	for r, i := range idx {
		if i < 0 || i >= s.extents[r] {
			return 0, fmt.Errorf("%w: index %d of dimension %d with extent %d", ErrOutOfBounds, i, r, s.extents[r])
		}
		pos += i * s.strides[r]
	}
	return pos, nil
}

// At returns the element at the given indices. It panics on an invalid
// index tuple, like indexing a slice.
func (s Strided[T]) At(idx ...int) T {
	return *s.Ptr(idx...)
}

// Ptr returns the address of the element at the given indices. The pointer
// aliases the backing slice.
func (s Strided[T]) Ptr(idx ...int) *T {
	pos, err := s.Index(idx...)
	if err != nil {
		panic(err)
	}
	return &s.data[pos]
}

// Rows copies a rank-2 view into a fresh [][]T. It returns nil for other ranks.
func (s Strided[T]) Rows() [][]T {
	if len(s.extents) != 2 {
		return nil
	}
	rows := make([][]T, s.extents[0])
	for r := range rows {
		rows[r] = make([]T, s.extents[1])
		for c := range rows[r] {
			rows[r][c] = s.data[s.offset+r*s.strides[0]+c*s.strides[1]]
		}
	}
	return rows
}

// String formats rank-2 views as {{a, b}, {c, d}}.
func (s Strided[T]) String() string {
	if len(s.extents) != 2 {
		return fmt.Sprintf("mdspan%v", s.extents)
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for r, row := range s.Rows() {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('{')
		for c, v := range row {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprint(&sb, v)
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('}')
	return sb.String()
}
