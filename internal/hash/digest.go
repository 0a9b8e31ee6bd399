package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// Digest accumulates a CRC32C over a sequence of byte runs and integers.
type Digest struct {
	h   hash.Hash32
	buf [8]byte
}

// New returns an empty digest.
func New() *Digest {
	return &Digest{h: crc32.New(crc32cTable)}
}

// Write adds b to the digest.
func (d *Digest) Write(b []byte) {
	_, _ = d.h.Write(b) // never fails
}

// WriteInt adds n as a little-endian 64-bit integer.
func (d *Digest) WriteInt(n int) {
	binary.LittleEndian.PutUint64(d.buf[:], uint64(n)) //nolint:gosec // bit pattern only
	d.Write(d.buf[:])
}

// WriteString adds the length and bytes of s.
func (d *Digest) WriteString(s string) {
	d.WriteInt(len(s))
	d.Write([]byte(s))
}

// Sum32 returns the current checksum.
func (d *Digest) Sum32() uint32 {
	return d.h.Sum32()
}
