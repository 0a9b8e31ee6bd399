package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISA(t *testing.T) {
	for _, isa := range []ISA{Generic, NEON, SVE2, AVX2, AVX512} {
		got, ok := ParseISA(isa.String())
		assert.True(t, ok)
		assert.Equal(t, isa, got)
	}

	got, ok := ParseISA("  AVX2 ")
	assert.True(t, ok)
	assert.Equal(t, AVX2, got)

	_, ok = ParseISA("mmx")
	assert.False(t, ok)
}

func TestActiveISAAvailable(t *testing.T) {
	assert.True(t, isISAAvailable(ActiveISA()))
	assert.True(t, isISAAvailable(Generic))
}

func TestPreferredAlignment(t *testing.T) {
	a := PreferredAlignment()

	assert.Positive(t, a)
	assert.Zero(t, a&(a-1), "alignment %d must be a power of two", a)
	assert.GreaterOrEqual(t, a, CacheLineSize())
	assert.GreaterOrEqual(t, a, ActiveISA().VectorBytes())
}

func TestVectorBytes(t *testing.T) {
	assert.Equal(t, 64, AVX512.VectorBytes())
	assert.Equal(t, 32, AVX2.VectorBytes())
	assert.Equal(t, 16, NEON.VectorBytes())
	assert.Equal(t, 8, Generic.VectorBytes())
}
