package soa_test

import (
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/testutil"
)

func TestFilter(t *testing.T) {
	f, c := buildDemo(t)

	bm, err := f.x.Filter(c, func(x float64) bool { return x >= 4 })
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, bm.ToArray())
}

func TestSelect(t *testing.T) {
	f, c := buildDemo(t)

	bm, err := c.Select(func(v soa.View[testutil.Demo]) bool {
		return len(f.v.Get(v)) > 1
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2}, bm.ToArray())

	var sums []int32
	err = c.Each(bm, func(v soa.View[testutil.Demo]) error {
		var s int32
		for _, x := range f.v.Get(v) {
			s += x
		}
		sums = append(sums, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{46, 61}, sums)
}

func TestEachErrors(t *testing.T) {
	_, c := buildDemo(t)

	err := c.Each(roaring.BitmapOf(0, 9), func(soa.View[testutil.Demo]) error { return nil })
	assert.ErrorIs(t, err, soa.ErrOutOfRange)

	stop := errors.New("stop")
	calls := 0
	err = c.Each(roaring.BitmapOf(0, 1, 2), func(soa.View[testutil.Demo]) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestSelectClosed(t *testing.T) {
	f, c := buildDemo(t)
	require.NoError(t, c.Close())

	_, err := c.Select(func(soa.View[testutil.Demo]) bool { return true })
	assert.ErrorIs(t, err, soa.ErrClosed)
	_, err = f.x.Filter(c, func(float64) bool { return true })
	assert.ErrorIs(t, err, soa.ErrClosed)
}
