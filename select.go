package soa

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/soa/internal/conv"
)

// Select returns the indices of all records for which pred returns true.
func (c *Container[R]) Select(pred func(View[R]) bool) (*roaring.Bitmap, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	bm := roaring.New()
	for i := 0; i < c.n; i++ {
		if !pred(View[R]{c: c, i: i}) {
			continue
		}
		id, err := conv.IntToUint32(i)
		if err != nil {
			return nil, err
		}
		bm.Add(id)
	}
	return bm, nil
}

// Filter scans the dense array of the field and returns the indices of all
// records whose value satisfies pred.
func (s *ScalarCol[R, T]) Filter(c *Container[R], pred func(T) bool) (*roaring.Bitmap, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	bm := roaring.New()
	for i, x := range s.Column(c) {
		if !pred(x) {
			continue
		}
		id, err := conv.IntToUint32(i)
		if err != nil {
			return nil, err
		}
		bm.Add(id)
	}
	return bm, nil
}

// Each calls fn with the view of every record in bm, in index order, and
// stops at the first error. Indices beyond Len yield an *OutOfRangeError.
func (c *Container[R]) Each(bm *roaring.Bitmap, fn func(View[R]) error) error {
	it := bm.Iterator()
	for it.HasNext() {
		v, err := c.At(int(it.Next()))
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
