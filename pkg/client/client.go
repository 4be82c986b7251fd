// Package client wires the primitive packages (token, voprf, dleq, wire,
// commitments) into the five client-visible operations spec.md describes:
// mint, blind, verify, unblind, and derive. It is the thin orchestration
// layer that an embedding application (browser extension core, CLI) calls
// into; all the interesting math lives one layer down.
package client

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/privacypass/voprf-client/pkg/commitments"
	"github.com/privacypass/voprf-client/pkg/dleq"
	"github.com/privacypass/voprf-client/pkg/metrics"
	"github.com/privacypass/voprf-client/pkg/token"
	"github.com/privacypass/voprf-client/pkg/voprf"
	"github.com/privacypass/voprf-client/pkg/wire"
)

var log = logrus.WithField("component", "voprf-client")

// Batch is one issuance round: n tokens minted and their n blinded forms, in
// matching order. The issuer's signed points are not stored here; callers
// pass them to VerifyAndUnblind.
type Batch struct {
	Tokens        []*token.Token
	BlindedTokens []*voprf.BlindedToken
}

// NewBatch mints n fresh tokens and blinds each of them.
func NewBatch(n int) (*Batch, error) {
	tokens := make([]*token.Token, n)
	blinded := make([]*voprf.BlindedToken, n)
	for i := 0; i < n; i++ {
		t, err := token.New()
		if err != nil {
			return nil, err
		}
		metrics.TokensMinted.Inc()

		bt, err := voprf.Blind(t.Point)
		if err != nil {
			return nil, err
		}
		metrics.TokensBlinded.Inc()

		tokens[i] = t
		blinded[i] = bt
	}
	return &Batch{Tokens: tokens, BlindedTokens: blinded}, nil
}

// Points returns the blinded points to send to the issuer, M[0..n).
func (b *Batch) Points() []*voprf.Point {
	out := make([]*voprf.Point, len(b.BlindedTokens))
	for i, bt := range b.BlindedTokens {
		out[i] = bt.Point
	}
	return out
}

// VerifyAndUnblind parses the wire-encoded batch proof, verifies it against
// the batch's own blinded points and the issuer's signed points Z under the
// commitment snapshot in store, and — only on success — unblinds every Z
// into a redeemable point N. It returns dleq.VerifyBatch's own error
// unchanged for malformed input, and dleq.ErrChallengeMismatch for a sound
// rejection, so callers can tell the two apart.
func VerifyAndUnblind(batch *Batch, signed []*voprf.Point, proofBlob []byte, store *commitments.Store) ([]*voprf.Point, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, err
	}

	proof, err := wire.DecodeBatchProof(proofBlob)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		metrics.BatchVerifyDuration.Observe(v)
	}))
	ok, recomputed, err := dleq.VerifyBatch(proof, snap.G, snap.H, batch.Points(), signed)
	timer.ObserveDuration()
	if err != nil {
		metrics.BatchVerifyFailure.Inc()
		return nil, err
	}
	if !ok {
		metrics.BatchVerifyFailure.Inc()
		expected := make([]byte, 32)
		proof.C.FillBytes(expected)
		log.WithFields(logrus.Fields{
			"challenge":            fmt.Sprintf("%x", expected),
			"recomputed_challenge": fmt.Sprintf("%x", recomputed),
			"batch_size":           len(signed),
		}).Debug("dleq batch proof rejected")
		return nil, dleq.ErrChallengeMismatch
	}
	metrics.BatchVerifySuccess.Inc()

	unblinded := make([]*voprf.Point, len(signed))
	for i, z := range signed {
		n, err := voprf.Unblind(batch.BlindedTokens[i].Blind, z)
		if err != nil {
			return nil, err
		}
		unblinded[i] = n
		metrics.TokensUnblinded.Inc()
	}
	return unblinded, nil
}

// DeriveRedemptionKey derives the shared MAC key for redeeming tokens[i]
// against its unblinded point n.
func DeriveRedemptionKey(t *token.Token, n *voprf.Point) []byte {
	start := time.Now()
	key := voprf.DeriveKey(n, t.Preimage[:])
	metrics.DeriveKeyDuration.Observe(time.Since(start).Seconds())
	return key
}
