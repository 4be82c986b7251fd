package voprf

import (
	"math/big"
	"testing"
)

// S3: blinding G by 2 and unblinding with the same factor must return G.
func TestUnblindRoundTripFixture(t *testing.T) {
	g := generator(t)
	twoG := pointFromHex(t,
		"7cf27b188d034f7e8a52380304b51ac3c08969e277f21b35a60b48fc47669978",
		"07775510db8ed040293d9ac69f7430dbba7dade63ce982299e04b79d227873d1")
	got := ScalarMult(g, big.NewInt(2).Bytes())
	if got.X.Cmp(twoG.X) != 0 || got.Y.Cmp(twoG.Y) != 0 {
		t.Fatalf("2*G mismatch: got (%x,%x)", got.X, got.Y)
	}
	back, err := Unblind(big.NewInt(2), twoG)
	if err != nil {
		t.Fatal(err)
	}
	if back.X.Cmp(g.X) != 0 || back.Y.Cmp(g.Y) != 0 {
		t.Fatal("Unblind(2, 2*G) != G")
	}
}

func TestBlindUnblindRoundTrip(t *testing.T) {
	g := generator(t)
	bt, err := Blind(g)
	if err != nil {
		t.Fatal(err)
	}
	if bt.Blind.Sign() == 0 {
		t.Fatal("blind factor must not be zero")
	}
	back, err := Unblind(bt.Blind, bt.Point)
	if err != nil {
		t.Fatal(err)
	}
	if back.X.Cmp(g.X) != 0 || back.Y.Cmp(g.Y) != 0 {
		t.Fatal("Unblind(b, Blind(b, P)) != P")
	}
}

func TestBlindProducesDistinctPointsEachCall(t *testing.T) {
	g := generator(t)
	a, err := Blind(g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Blind(g)
	if err != nil {
		t.Fatal(err)
	}
	if a.Blind.Cmp(b.Blind) == 0 {
		t.Fatal("two calls to Blind produced the same scalar")
	}
	if a.Point.X.Cmp(b.Point.X) == 0 && a.Point.Y.Cmp(b.Point.Y) == 0 {
		t.Fatal("two calls to Blind produced the same point")
	}
}

func TestUnblindRejectsZeroBlind(t *testing.T) {
	g := generator(t)
	if _, err := Unblind(big.NewInt(0), g); err != ErrInvalidScalar {
		t.Fatalf("expected ErrInvalidScalar, got %v", err)
	}
}
