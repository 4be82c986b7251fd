// Package voprf implements the client half of a 2HashDH verifiable
// oblivious PRF over NIST P-256: point encoding, hash-to-curve, blinding,
// and the HMAC key derivation used to bind a redemption to request data.
package voprf

import (
	"crypto/elliptic"
	"errors"
	"math/big"
)

var (
	// ErrInvalidPoint is returned when a SEC1-encoded buffer cannot be
	// decoded into a point at all (bad length, bad tag, non-residue x).
	ErrInvalidPoint = errors.New("voprf: marshaled point was invalid")
	// ErrPointOffCurve is returned when a decoded (x, y) pair does not
	// satisfy the curve equation.
	ErrPointOffCurve = errors.New("voprf: point is not on curve")
	// ErrTagError is returned by Sec1Decode when the leading byte isn't 0x04.
	ErrTagError = errors.New("voprf: sec1 encoding must start with 0x04")
	// ErrInvalidScalar is returned when a scalar is zero where an inverse
	// is required, or out of range [0, r).
	ErrInvalidScalar = errors.New("voprf: scalar out of range")
)

func curve() elliptic.Curve { return elliptic.P256() }

// Point is an affine point on P-256, or the identity when X and Y are nil
// (or both zero, which is how crypto/elliptic returns the identity).
type Point struct {
	X, Y *big.Int
}

// IsOnCurve reports whether p satisfies y² = x³ - 3x + b (mod p).
func (p *Point) IsOnCurve() bool {
	if p.X == nil || p.Y == nil {
		return false
	}
	return curve().IsOnCurve(p.X, p.Y)
}

// Sec1Encode returns the SEC1 uncompressed encoding 0x04 || X || Y (65 bytes).
func (p *Point) Sec1Encode() []byte {
	return elliptic.Marshal(curve(), p.X, p.Y)
}

// Sec1Decode parses a SEC1 uncompressed encoding. The leading byte must be
// 0x04; any other value (or wrong length) is ErrTagError / ErrInvalidPoint.
// Coordinates that fail the curve equation are ErrPointOffCurve.
func Sec1Decode(data []byte) (*Point, error) {
	byteLen := fieldByteLen()
	if len(data) != 2*byteLen+1 {
		return nil, ErrInvalidPoint
	}
	if data[0] != 0x04 {
		return nil, ErrTagError
	}
	x, y := elliptic.Unmarshal(curve(), data)
	if x == nil {
		x = new(big.Int).SetBytes(data[1 : 1+byteLen])
		y = new(big.Int).SetBytes(data[1+byteLen:])
		p := curve().Params().P
		if x.Cmp(p) < 0 && y.Cmp(p) < 0 {
			return nil, ErrPointOffCurve
		}
		return nil, ErrInvalidPoint
	}
	return &Point{X: x, Y: y}, nil
}

// CompressPoint returns the SEC1 compressed encoding {0x02,0x03} || X (33 bytes).
func CompressPoint(p *Point) []byte {
	byteLen := fieldByteLen()
	out := make([]byte, byteLen+1)
	out[0] = 0x02 + byte(p.Y.Bit(0))
	p.X.FillBytes(out[1:])
	return out
}

// DecompressPoint inverts CompressPoint. tag must be 0x02 (even y) or 0x03
// (odd y). It returns ErrInvalidPoint (never panics) when x has no square
// root mod p or the resulting point is off-curve.
func DecompressPoint(xBytes []byte, tag byte) (*Point, error) {
	if tag != 0x02 && tag != 0x03 {
		return nil, ErrInvalidPoint
	}
	p := curve().Params().P
	x := new(big.Int).SetBytes(xBytes)
	if x.Cmp(p) >= 0 {
		return nil, ErrInvalidPoint
	}

	// rhs = x^3 - 3x + b (mod p)
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	threeX := new(big.Int).Lsh(x, 1)
	threeX.Add(threeX, x)
	rhs.Sub(rhs, threeX)
	rhs.Add(rhs, curve().Params().B)
	rhs.Mod(rhs, p)

	y := new(big.Int).ModSqrt(rhs, p)
	if y == nil {
		return nil, ErrInvalidPoint
	}
	if byte(y.Bit(0)) != tag&1 {
		y.Sub(p, y)
	}
	if !curve().IsOnCurve(x, y) {
		return nil, ErrInvalidPoint
	}
	return &Point{X: x, Y: y}, nil
}

// Add returns a+b in affine coordinates.
func Add(a, b *Point) *Point {
	x, y := curve().Add(a.X, a.Y, b.X, b.Y)
	return &Point{X: x, Y: y}
}

// ScalarMult returns k*p in affine coordinates. k is big-endian bytes.
func ScalarMult(p *Point, k []byte) *Point {
	x, y := curve().ScalarMult(p.X, p.Y, k)
	return &Point{X: x, Y: y}
}

// Identity reports whether p is the point at infinity: nil coordinates, or
// the (0, 0) pair crypto/elliptic's Add and ScalarMult return for it.
func (p *Point) Identity() bool {
	if p.X == nil || p.Y == nil {
		return p.X == nil && p.Y == nil
	}
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

func fieldByteLen() int {
	return (curve().Params().BitSize + 7) >> 3
}

// GroupOrder returns the P-256 base point subgroup order r.
func GroupOrder() *big.Int {
	return curve().Params().N
}

// ModInverse returns b⁻¹ mod r. It returns ErrInvalidScalar if b ≡ 0 (mod r).
func ModInverse(b *big.Int) (*big.Int, error) {
	r := GroupOrder()
	bMod := new(big.Int).Mod(b, r)
	if bMod.Sign() == 0 {
		return nil, ErrInvalidScalar
	}
	return new(big.Int).ModInverse(bMod, r), nil
}
