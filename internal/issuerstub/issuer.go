// Package issuerstub is an in-process stand-in for the issuance server this
// module's spec explicitly keeps out of scope. It exists only so the
// integration tests and the demonstration CLI have something real to blind
// tokens against — signing, batch-proof generation, and key commitment are
// not part of this module's public surface, and none of it should be
// mistaken for a production issuer (no key rotation, no persistence, no
// rate limiting).
package issuerstub

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/privacypass/voprf-client/pkg/dleq"
	"github.com/privacypass/voprf-client/pkg/voprf"
	"golang.org/x/crypto/sha3"
)

// Issuer holds a secret scalar key and the public commitment to it.
type Issuer struct {
	Key *big.Int
	G   *voprf.Point
	H   *voprf.Point
}

// NewIssuer generates a fresh secret key, picks a generator by hashing
// random bytes to the curve (standing in for the "agreed base point" spec
// §3 requires), and computes the commitment H = k·G.
func NewIssuer() (*Issuer, error) {
	_, key, err := voprf.RandomScalar(rand.Reader)
	if err != nil {
		return nil, err
	}
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	g, err := voprf.HashToCurve(seed[:])
	if err != nil {
		return nil, err
	}
	h := voprf.ScalarMult(g, key.Bytes())
	return &Issuer{Key: key, G: g, H: h}, nil
}

// Sign applies the issuer's secret key to a blinded point: Z = k·M.
func (iss *Issuer) Sign(m *voprf.Point) *voprf.Point {
	return voprf.ScalarMult(m, iss.Key.Bytes())
}

// SignBatch signs every blinded point in m and produces a batch DLEQ proof
// binding all of them to the same key as the public commitment.
func (iss *Issuer) SignBatch(m []*voprf.Point) ([]*voprf.Point, *dleq.Proof, error) {
	z := make([]*voprf.Point, len(m))
	for i, p := range m {
		z[i] = iss.Sign(p)
	}

	proof, err := iss.proveBatch(m, z)
	if err != nil {
		return nil, nil, err
	}
	return z, proof, nil
}

// proveBatch mirrors the teacher's batch.go/dleq.go proof construction:
// fold (m, z) down to composite points with the same SHAKE-256 derivation
// the verifier uses, then produce a single Chaum-Pedersen proof over the
// composites.
func (iss *Issuer) proveBatch(m, z []*voprf.Point) (*dleq.Proof, error) {
	mc, zc, err := computeCompositesForProving(iss.G, iss.H, m, z)
	if err != nil {
		return nil, err
	}

	_, s, err := voprf.RandomScalar(rand.Reader)
	if err != nil {
		return nil, err
	}
	a := voprf.ScalarMult(iss.G, s.Bytes())
	b := voprf.ScalarMult(mc, s.Bytes())

	hasher := sha256.New()
	for _, p := range []*voprf.Point{iss.G, iss.H, mc, zc, a, b} {
		hasher.Write(p.Sec1Encode())
	}
	c := new(big.Int).SetBytes(hasher.Sum(nil))
	c.Mod(c, voprf.GroupOrder())

	// r = s - c*key (mod r)
	r := new(big.Int).Mul(c, iss.Key)
	r.Neg(r)
	r.Add(r, s)
	r.Mod(r, voprf.GroupOrder())

	return &dleq.Proof{C: c, R: r}, nil
}

// computeCompositesForProving duplicates dleq.computeComposites (which is
// unexported, by design — proof construction is not a client-facing
// operation) so the stub issuer derives the exact same composite points
// the real verifier will recompute. The XOF is seeded with the hex digits
// of the seed digest, not its raw bytes, matching the verifier exactly.
func computeCompositesForProving(g, h *voprf.Point, m, z []*voprf.Point) (*voprf.Point, *voprf.Point, error) {
	seedHash := sha256.New()
	seedHash.Write(g.Sec1Encode())
	seedHash.Write(h.Sec1Encode())
	for i := range m {
		seedHash.Write(m[i].Sec1Encode())
		seedHash.Write(z[i].Sec1Encode())
	}
	seed := seedHash.Sum(nil)
	seedHex := make([]byte, hex.EncodedLen(len(seed)))
	hex.Encode(seedHex, seed)

	xof := sha3.NewShake256()
	xof.Write(seedHex)

	var mc, zc *voprf.Point
	for i := range m {
		_, ci, err := voprf.RandomScalar(xof)
		if err != nil {
			return nil, nil, err
		}
		cm := voprf.ScalarMult(m[i], ci.Bytes())
		cz := voprf.ScalarMult(z[i], ci.Bytes())
		if mc == nil {
			mc, zc = cm, cz
			continue
		}
		mc = voprf.Add(mc, cm)
		zc = voprf.Add(zc, cz)
	}
	return mc, zc, nil
}
