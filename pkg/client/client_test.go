package client

import (
	"testing"

	"github.com/privacypass/voprf-client/internal/issuerstub"
	"github.com/privacypass/voprf-client/pkg/commitments"
	"github.com/privacypass/voprf-client/pkg/voprf"
	"github.com/privacypass/voprf-client/pkg/wire"
)

func newTestStore(t *testing.T, iss *issuerstub.Issuer) *commitments.Store {
	t.Helper()
	store := commitments.NewStore()
	store.Set(&commitments.Snapshot{G: iss.G, H: iss.H})
	return store
}

func TestFullRoundTripSingleToken(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := newTestStore(t, iss)

	batch, err := NewBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	signed, proof, err := iss.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}
	blob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		t.Fatal(err)
	}

	unblinded, err := VerifyAndUnblind(batch, signed, blob, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(unblinded) != 1 {
		t.Fatalf("expected 1 unblinded point, got %d", len(unblinded))
	}

	key := DeriveRedemptionKey(batch.Tokens[0], unblinded[0])
	if len(key) != 32 {
		t.Fatalf("expected a 32-byte MAC key, got %d bytes", len(key))
	}

	mac := voprf.RequestBinding(key, []byte("redeem"))
	if !voprf.CheckRequestBinding(key, mac, []byte("redeem")) {
		t.Fatal("redemption MAC did not self-check")
	}
}

func TestFullRoundTripBatchOfTen(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := newTestStore(t, iss)

	batch, err := NewBatch(10)
	if err != nil {
		t.Fatal(err)
	}
	signed, proof, err := iss.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}
	blob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		t.Fatal(err)
	}

	unblinded, err := VerifyAndUnblind(batch, signed, blob, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(unblinded) != 10 {
		t.Fatalf("expected 10 unblinded points, got %d", len(unblinded))
	}
	for i, n := range unblinded {
		if !n.IsOnCurve() {
			t.Fatalf("token %d: unblinded point off curve", i)
		}
	}
}

func TestVerifyAndUnblindRejectsWrongIssuerKey(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	impostor, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := newTestStore(t, iss)

	batch, err := NewBatch(3)
	if err != nil {
		t.Fatal(err)
	}
	// Sign with a different key than the one published in the commitment store.
	signed, proof, err := impostor.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}
	blob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAndUnblind(batch, signed, blob, store); err == nil {
		t.Fatal("expected verification to fail against a mismatched commitment")
	}
}

func TestVerifyAndUnblindRequiresPublishedSnapshot(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := commitments.NewStore() // nothing published

	batch, err := NewBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	signed, proof, err := iss.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}
	blob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAndUnblind(batch, signed, blob, store); err != commitments.ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestVerifyAndUnblindRejectsMalformedProofBlob(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := newTestStore(t, iss)

	batch, err := NewBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	signed, _, err := iss.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAndUnblind(batch, signed, []byte("garbage"), store); err == nil {
		t.Fatal("expected a decode error for a malformed proof blob")
	}
}

func TestDeriveRedemptionKeyDependsOnToken(t *testing.T) {
	iss, err := issuerstub.NewIssuer()
	if err != nil {
		t.Fatal(err)
	}
	store := newTestStore(t, iss)

	batch, err := NewBatch(2)
	if err != nil {
		t.Fatal(err)
	}
	signed, proof, err := iss.SignBatch(batch.Points())
	if err != nil {
		t.Fatal(err)
	}
	blob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		t.Fatal(err)
	}
	unblinded, err := VerifyAndUnblind(batch, signed, blob, store)
	if err != nil {
		t.Fatal(err)
	}

	keyA := DeriveRedemptionKey(batch.Tokens[0], unblinded[0])
	keyB := DeriveRedemptionKey(batch.Tokens[1], unblinded[1])
	if string(keyA) == string(keyB) {
		t.Fatal("two distinct tokens derived the same redemption key")
	}
}
