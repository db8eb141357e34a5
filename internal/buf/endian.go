// Package buf contains helpers for endian-safe decoding routines.
package buf

import "encoding/binary"

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU64LE writes v to b as a little-endian uint64. Panics when b is too
// short, mirroring encoding/binary's own PutUint64.
func PutU64LE(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}
