// Package metrics exposes Prometheus counters and histograms for the core
// client operations, in the same shape the teacher repo's btd/issuer.go
// used for its own sign/verify bookkeeping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}

var (
	TokensMinted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voprf_client_tokens_minted_total",
		Help: "count of tokens generated by token.New",
	})
	TokensBlinded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voprf_client_tokens_blinded_total",
		Help: "count of tokens blinded for issuance",
	})
	TokensUnblinded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voprf_client_tokens_unblinded_total",
		Help: "count of signed points unblinded after issuance",
	})

	BatchVerifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "voprf_client_batch_verify_duration_seconds",
		Help:    "duration of DLEQ batch-proof verification",
		Buckets: latencyBuckets,
	})
	BatchVerifySuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voprf_client_batch_verify_success_total",
		Help: "count of DLEQ batch proofs that verified",
	})
	BatchVerifyFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voprf_client_batch_verify_failure_total",
		Help: "count of DLEQ batch proofs that failed to verify",
	})

	DeriveKeyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "voprf_client_derive_key_duration_seconds",
		Help:    "duration of redemption key derivation",
		Buckets: latencyBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		TokensMinted, TokensBlinded, TokensUnblinded,
		BatchVerifyDuration, BatchVerifySuccess, BatchVerifyFailure,
		DeriveKeyDuration,
	)
}

// Handler returns the promhttp handler for the default registry, for
// embedding applications that want to expose a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
