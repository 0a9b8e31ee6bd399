// Package hash computes CRC32-Castagnoli content digests of container
// storage.
//
// A Digest covers element bytes and lengths only, never padding, so two
// containers holding the same records have the same digest regardless of
// alignment, footprint policy or backend. Go's crc32 package uses SSE4.2 or
// the ARM CRC extension when available.
//
//	d := hash.New()
//	d.WriteInt(len(extents))
//	d.Write(region[:used])
//	sum := d.Sum32()
package hash
