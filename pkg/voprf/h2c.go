package voprf

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// h2cSeparator is the ASCII separator prepended to every SHA-256 input in
// HashToCurve. It must match the issuer byte-for-byte, including the use of
// "100045" rather than "10045" — this is the separator 2HashDH issuers
// actually use, not a typo of the ASN.1 OID it resembles.
var h2cSeparator = []byte("1.2.840.100045.3.1.7 point generation seed")

// maxH2CIterations bounds the try-and-increment loop. Per-attempt success
// probability is effectively 1/2 (a digest is a valid x-coordinate about half
// the time, and then either tag decodes), so 10 iterations leaves a failure
// probability around 2^-10.
const maxH2CIterations = 10

// ErrNoPointFound is returned when HashToCurve exhausts maxH2CIterations
// without finding a point on the curve.
var ErrNoPointFound = errors.New("voprf: hash_to_curve failed to find a point")

// HashToCurve deterministically maps a 32-byte seed to a P-256 point using
// try-and-increment: hash the separator, seed and an iteration counter with
// SHA-256, then attempt to interpret the digest as the x-coordinate of a
// compressed point under both parity tags. On failure the digest becomes the
// next seed and the counter advances. This ordering — and the fact the
// separator is written once per attempt, not reused across a persistent
// hash.Hash — must match the issuer exactly or Fiat-Shamir challenges
// computed over HashToCurve outputs will diverge.
func HashToCurve(seed []byte) (*Point, error) {
	byteLen := fieldByteLen()
	ctr := make([]byte, 4)
	for i := 0; i < maxH2CIterations; i++ {
		binary.LittleEndian.PutUint32(ctr, uint32(i))

		h := sha256.New()
		h.Write(h2cSeparator)
		h.Write(seed)
		h.Write(ctr)
		d := h.Sum(nil)

		if p, err := DecompressPoint(d[:byteLen], 0x02); err == nil {
			return p, nil
		}
		if p, err := DecompressPoint(d[:byteLen], 0x03); err == nil {
			return p, nil
		}
		seed = d
	}
	return nil, ErrNoPointFound
}
