package voprf

import (
	"crypto/hmac"
	"crypto/sha256"
)

// deriveKeyLabel is used as both the HMAC key and the first message update
// in DeriveKey. That duplication looks wrong at a glance, but it is exactly
// what the issuer does, and changing it silently would break every MAC this
// client produces against a real issuer. Do not "fix" this without
// cross-checking the issuance server first.
var deriveKeyLabel = []byte("hash_derive_key")

var requestBindingLabel = []byte("hash_request_binding")

// DeriveKey computes the shared redemption MAC key from an unblinded signed
// point N and the token preimage that produced it.
func DeriveKey(n *Point, token []byte) []byte {
	h := hmac.New(sha256.New, deriveKeyLabel)
	h.Write(deriveKeyLabel)
	h.Write(token)
	h.Write(n.Sec1Encode())
	return h.Sum(nil)
}

// RequestBinding computes an HMAC over data under key, with a fixed label as
// the first update, binding a redemption to the observed request data.
func RequestBinding(key []byte, data ...[]byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(requestBindingLabel)
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// CheckRequestBinding recomputes RequestBinding(key, data...) and compares it
// to mac in constant time.
func CheckRequestBinding(key, mac []byte, data ...[]byte) bool {
	return hmac.Equal(mac, RequestBinding(key, data...))
}
