// Package conv provides overflow-checked integer arithmetic and conversions.
//
// Layout planning multiplies record counts by element widths and matrix sizes
// and sums the results into byte offsets. Any of these can overflow int on
// hostile or simply very large batches, so the planner routes its arithmetic
// through this package and surfaces overflow as an error instead of wrapping.
package conv
