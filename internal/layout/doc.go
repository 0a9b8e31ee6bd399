// Package layout plans the byte layout of a structure-of-arrays storage buffer.
//
// Every field of a record type becomes one dense array. The planner decides,
// for a batch of records, how many elements each dense array holds, how many
// bytes it occupies after alignment padding and at which byte offset it starts
// inside the shared buffer. Variable-length (jagged) fields additionally get an
// extent table recording where each record's slice begins.
//
// # Footprint Policies
//
// Fixed fields always occupy align(count*size). Jagged fields support two
// accounting policies:
//
//   - FootprintCompact: one aligned footprint over the total element count.
//   - FootprintPerRecord: the sum of every record's individually aligned chunk.
//
// Both policies pack elements sequentially, so extents are contiguous under
// either one. FootprintPerRecord only reserves more trailing space.
package layout
