// Package token mints the client-side randomness of a Privacy Pass token
// and its curve image.
package token

import (
	"crypto/rand"
	"io"

	"github.com/privacypass/voprf-client/pkg/voprf"
)

// Token is 32 bytes of CSPRNG output together with T = HashToCurve(bytes),
// cached so redemption code never recomputes the hash-to-curve mapping.
type Token struct {
	Preimage [32]byte
	Point    *voprf.Point
}

// New draws a fresh token, retrying HashToCurve's bounded try-and-increment
// failure (spec mandates an explicit retry here rather than silently
// dropping a failed draw, unlike the reference implementation this scheme
// descends from).
func New() (*Token, error) {
	for {
		var preimage [32]byte
		if _, err := io.ReadFull(rand.Reader, preimage[:]); err != nil {
			return nil, err
		}
		p, err := voprf.HashToCurve(preimage[:])
		if err == voprf.ErrNoPointFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Token{Preimage: preimage, Point: p}, nil
	}
}
