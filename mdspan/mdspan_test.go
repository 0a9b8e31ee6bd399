package mdspan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldMajor holds three 2x2 matrices stored coordinate-major, record-minor:
// all (0,0) entries first, then all (0,1) entries and so on.
var fieldMajor = []float32{
	100, 200, 300,
	101, 201, 301,
	102, 202, 302,
	103, 203, 303,
}

func TestStridedMatrix(t *testing.T) {
	const records, dim = 3, 2

	for i := 0; i < records; i++ {
		m, err := New(fieldMajor, i, []int{dim, dim}, []int{dim * records, records})
		require.NoError(t, err)

		base := float32(100 * (i + 1))
		assert.Equal(t, 2, m.Rank())
		assert.Equal(t, 2, m.Extent(0))
		assert.Equal(t, 2, m.Extent(1))
		assert.Equal(t, 6, m.Stride(0))
		assert.Equal(t, 3, m.Stride(1))
		assert.Equal(t, 4, m.Len())

		assert.Equal(t, base, m.At(0, 0))
		assert.Equal(t, base+1, m.At(0, 1))
		assert.Equal(t, base+2, m.At(1, 0))
		assert.Equal(t, base+3, m.At(1, 1))
		assert.Equal(t, [][]float32{{base, base + 1}, {base + 2, base + 3}}, m.Rows())
	}
}

func TestStridedAliases(t *testing.T) {
	data := []int{1, 2, 3, 4}
	m := MustNew(data, 0, []int{2, 2}, []int{2, 1})

	assert.Same(t, &data[3], m.Ptr(1, 1))
	data[3] = 40
	assert.Equal(t, 40, m.At(1, 1))
	assert.Same(t, m.Ptr(0, 1), m.Ptr(0, 1))
}

func TestStridedErrors(t *testing.T) {
	_, err := New(fieldMajor, 0, []int{2, 2}, []int{6})
	assert.ErrorIs(t, err, ErrRankMismatch)

	_, err = New(fieldMajor, 3, []int{2, 2}, []int{6, 3})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = New(fieldMajor, -1, []int{1}, []int{1})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	m := MustNew(fieldMajor, 0, []int{2, 2}, []int{6, 3})
	_, err = m.Index(2, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.Index(0)
	assert.ErrorIs(t, err, ErrRankMismatch)

	assert.Panics(t, func() { m.At(0, 2) })
	assert.Panics(t, func() { MustNew(fieldMajor, 0, []int{5}, []int{5}) })
}

func TestStridedEmpty(t *testing.T) {
	m, err := New([]float64(nil), 0, []int{0, 0}, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Rows())
}

func TestStridedString(t *testing.T) {
	m := MustNew(fieldMajor, 1, []int{2, 2}, []int{6, 3})
	assert.Equal(t, "{{200, 201}, {202, 203}}", m.String())
}
