// Package id provides sortable ID generation utilities.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a ULID (Universally Unique Lexicographically Sortable
// Identifier): 10 characters of 48-bit millisecond timestamp followed by
// 16 characters of 80-bit randomness, Crockford Base32 encoded.
// ULIDs sort lexicographically by creation time, which keeps session and
// request IDs index-friendly.
func NewULID() string {
	ms := uint64(time.Now().UnixMilli())

	var entropy [10]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		// Degraded fallback: time-based entropy keeps IDs unique enough
		// for request tracing even if the random source fails.
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	var out [26]byte

	// Timestamp: 48 bits, most significant 5-bit group first.
	for i := 9; i >= 0; i-- {
		out[i] = alphabet[ms&0x1F]
		ms >>= 5
	}

	// Entropy: 80 bits as one big integer, encoded into 16 groups of 5 bits.
	hi := binary.BigEndian.Uint16(entropy[:2])
	lo := binary.BigEndian.Uint64(entropy[2:])
	for i := 25; i >= 10; i-- {
		out[i] = alphabet[lo&0x1F]
		lo = lo>>5 | uint64(hi&0x1F)<<59
		hi >>= 5
	}

	return string(out[:])
}
