// Package wire implements the JSON/base64 framing of the batch-proof blob
// exchanged between client and issuer, as specified in §6 of the protocol:
// the whole blob is base64, decoding to UTF-8 text with an optional
// "batch-proof=" prefix, followed by a JSON object carrying a
// base64-encoded inner proof, and that inner proof's own JSON object of
// base64 big-endian scalars — three base64 layers deep in total.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"strings"

	"github.com/privacypass/voprf-client/pkg/dleq"
)

// BatchProofPrefix is prepended to the outer JSON payload in issuance
// responses. DecodeBatchProof accepts the blob with or without it.
const BatchProofPrefix = "batch-proof="

var (
	// ErrMalformedProof covers every parse failure: bad base64, bad JSON,
	// or a missing field, at any of the three nesting levels.
	ErrMalformedProof = errors.New("wire: malformed batch proof blob")
)

type outerEnvelope struct {
	P string `json:"P"`
}

type innerProof struct {
	R string `json:"R"`
	C string `json:"C"`
}

// DecodeBatchProof base64-decodes blob to UTF-8 text, strips its
// "batch-proof=" prefix if present, and parses the rest into a dleq.Proof.
// It performs no curve or range validation; that's VerifyBatch's job once
// the caller also has M, Z, G and H in hand.
func DecodeBatchProof(blob []byte) (*dleq.Proof, error) {
	outer, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return nil, errWrap(err)
	}
	text := strings.TrimPrefix(string(outer), BatchProofPrefix)

	var env outerEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, errWrap(err)
	}
	if env.P == "" {
		return nil, ErrMalformedProof
	}

	innerBytes, err := base64.StdEncoding.DecodeString(env.P)
	if err != nil {
		return nil, errWrap(err)
	}

	var ip innerProof
	if err := json.Unmarshal(innerBytes, &ip); err != nil {
		return nil, errWrap(err)
	}
	if ip.R == "" || ip.C == "" {
		return nil, ErrMalformedProof
	}

	r, err := decodeScalar(ip.R)
	if err != nil {
		return nil, err
	}
	c, err := decodeScalar(ip.C)
	if err != nil {
		return nil, err
	}

	return &dleq.Proof{R: r, C: c}, nil
}

// EncodeBatchProof produces the base64-wrapped, "batch-proof="-prefixed
// wire blob for proof, the exact inverse of DecodeBatchProof.
func EncodeBatchProof(proof *dleq.Proof) ([]byte, error) {
	ip := innerProof{
		R: encodeScalar(proof.R),
		C: encodeScalar(proof.C),
	}
	ipBytes, err := json.Marshal(ip)
	if err != nil {
		return nil, err
	}

	env := outerEnvelope{P: base64.StdEncoding.EncodeToString(ipBytes)}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	plain := BatchProofPrefix + string(envBytes)
	return []byte(base64.StdEncoding.EncodeToString([]byte(plain))), nil
}

func decodeScalar(b64 string) (*big.Int, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, errWrap(err)
	}
	return new(big.Int).SetBytes(raw), nil
}

func encodeScalar(v *big.Int) string {
	return base64.StdEncoding.EncodeToString(v.Bytes())
}

func errWrap(err error) error {
	return errors.Join(ErrMalformedProof, err)
}
