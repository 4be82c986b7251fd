// Command pass-client is a demonstration CLI for the 2HashDH client core:
// it mints a batch of tokens, blinds them, hands them to an in-process
// issuer stub, verifies the returned batch DLEQ proof, unblinds the signed
// points, and derives a redemption key for each — end to end, against a
// real (if toy) issuer rather than canned fixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/privacypass/voprf-client/internal/config"
	"github.com/privacypass/voprf-client/internal/issuerstub"
	"github.com/privacypass/voprf-client/pkg/client"
	"github.com/privacypass/voprf-client/pkg/commitments"
	"github.com/privacypass/voprf-client/pkg/metrics"
	"github.com/privacypass/voprf-client/pkg/voprf"
	"github.com/privacypass/voprf-client/pkg/wire"
)

var log = logrus.WithField("prefix", "pass-client")

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default
	fs := flag.NewFlagSet("pass-client", flag.ContinueOnError)
	configPath := config.RegisterFlags(fs, &cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.WithError(err).Error("failed to load config file")
			return 1
		}
		cfg = loaded
		// Flags given on the command line take precedence over the file.
		if err := fs.Parse(os.Args[1:]); err != nil {
			return 1
		}
	}

	if cfg.MetricsAddr != "" {
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler()); err != nil {
				log.WithError(err).Error("metrics server exited")
			}
		}()
	}

	// The issuer itself is a stand-in for the real issuance server, which
	// is an external collaborator this module deliberately doesn't talk to
	// (§1 of the spec keeps real issuance out of scope). When a commitment
	// source is configured, the snapshot is published from it through the
	// same Refresher/Loader path a real deployment would use; otherwise the
	// stub's own commitment is set on the store directly.
	issuer, err := issuerstub.NewIssuer()
	if err != nil {
		log.WithError(err).Error("failed to set up demo issuer")
		return 1
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Warn("no commitment source configured, demo will publish its own issuer's commitment")
	}

	store := commitments.NewStore()
	if cfg.CommitmentsPath != "" || cfg.CommitmentsURL != "" {
		var loader commitments.Loader
		if cfg.CommitmentsPath != "" {
			loader = &commitments.FileLoader{Path: cfg.CommitmentsPath}
		} else {
			loader = &commitments.HTTPLoader{URL: cfg.CommitmentsURL}
		}
		refresher := commitments.NewRefresher(loader, store, cfg.CommitmentsKey, cfg.Channel, cfg.RefreshTTL)
		if err := refresher.RefreshOnce(context.Background()); err != nil {
			log.WithError(err).Error("failed to load commitment file")
			return 1
		}
	} else {
		log.Info("no commitment source configured, publishing the demo issuer's own commitment")
		store.Set(&commitments.Snapshot{G: issuer.G, H: issuer.H})
	}

	batch, err := client.NewBatch(cfg.BatchSize)
	if err != nil {
		log.WithError(err).Error("failed to mint token batch")
		return 1
	}

	signed, proof, err := issuer.SignBatch(batch.Points())
	if err != nil {
		log.WithError(err).Error("issuer stub failed to sign batch")
		return 1
	}
	proofBlob, err := wire.EncodeBatchProof(proof)
	if err != nil {
		log.WithError(err).Error("failed to encode batch proof")
		return 1
	}

	unblinded, err := client.VerifyAndUnblind(batch, signed, proofBlob, store)
	if err != nil {
		log.WithError(err).Error("batch proof rejected")
		return 2
	}

	requestID := uuid.NewString()
	for i, t := range batch.Tokens {
		key := client.DeriveRedemptionKey(t, unblinded[i])
		mac := voprf.RequestBinding(key, []byte(requestID))
		log.WithFields(logrus.Fields{
			"index":      i,
			"request_id": requestID,
			"mac":        fmt.Sprintf("%x", mac),
		}).Info("redeemable token ready")
	}

	fmt.Printf("minted, blinded, verified, and unblinded %d tokens\n", len(unblinded))
	return 0
}
