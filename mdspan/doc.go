// Package mdspan provides non-owning, strided, multi-dimensional views over
// flat slices.
//
// A Strided view is defined by a backing slice, the index of its first
// element, the extent of every dimension and the element stride of every
// dimension. It never copies: At and Ptr resolve to elements of the backing
// slice, so writes through the backing slice are visible through the view.
//
//	data := []float32{100, 200, 300, 101, 201, 301, 102, 202, 302, 103, 203, 303}
//	m := mdspan.MustNew(data, 1, []int{2, 2}, []int{6, 3}) // record 1 of 3
//	m.At(1, 0) // 202
package mdspan
