package voprf

import (
	"io"
	"math/big"
)

// mask clears the high bits of the first byte of a sampled buffer so that
// sampling from a BitSize that isn't a whole number of bytes doesn't bias
// towards large values. Index by (bitLen % 8).
var mask = []byte{0xff, 0x1, 0x3, 0x7, 0xf, 0x1f, 0x3f, 0x7f}

// RandomScalar draws a uniformly random integer in [0, r) from src, where r
// is the P-256 group order, by rejection sampling. src may be any io.Reader
// that supplies uniform bytes: crypto/rand.Reader for blinding factors, or a
// SHAKE-256 XOF for the DLEQ batch-proof's per-index scalars. It returns the
// big-endian byte encoding alongside the integer.
func RandomScalar(src io.Reader) ([]byte, *big.Int, error) {
	r := GroupOrder()
	bitLen := r.BitLen()
	byteLen := (bitLen + 7) >> 3
	buf := make([]byte, byteLen)

	for {
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, nil, err
		}
		buf[0] &= mask[bitLen%8]
		v := new(big.Int).SetBytes(buf)
		if v.Cmp(r) >= 0 {
			continue
		}
		return buf, v, nil
	}
}
