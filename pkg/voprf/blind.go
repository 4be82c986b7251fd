package voprf

import (
	"crypto/rand"
	"math/big"
)

// BlindedToken is a point blinded by a fresh per-token scalar, along with
// the scalar itself so the caller can later Unblind a signed response.
type BlindedToken struct {
	Point *Point
	Blind *big.Int
}

// Blind draws a fresh scalar b uniformly from [1, r) and returns (b*P, b).
func Blind(p *Point) (*BlindedToken, error) {
	_, b, err := RandomScalar(rand.Reader)
	if err != nil {
		return nil, err
	}
	if b.Sign() == 0 {
		// Vanishingly unlikely; resample rather than return a zero blind.
		return Blind(p)
	}
	return &BlindedToken{
		Point: ScalarMult(p, b.Bytes()),
		Blind: b,
	}, nil
}

// Unblind removes a blinding factor from a signed point: b⁻¹ · Q.
func Unblind(b *big.Int, q *Point) (*Point, error) {
	bInv, err := ModInverse(b)
	if err != nil {
		return nil, err
	}
	return ScalarMult(q, bInv.Bytes()), nil
}
