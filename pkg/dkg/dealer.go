// Package dkg provides one-shot trusted-dealer key generation for the
// mint's threshold signing key. spec.md and original_source/minimint both
// assume a FederationConfig's mint_secrets/mint_public_keys simply exist;
// neither specifies how they are produced. This package supplements that
// gap (SPEC_FULL.md §5) with a deterministic Shamir dealer, adapted from
// the teacher's protocols/lss/dealer/dealer.go BootstrapDealer — which
// re-shares an existing LSS key — narrowed here to a single initial split,
// since this spec has no resharing concept at all.
//
// This is explicitly a reference/test key generator: a production
// federation would run a real dealerless DKG ceremony (e.g. Feldman VSS or
// Pedersen DKG) so that no single party ever learns the master secret.
package dkg

import (
	"fmt"

	"github.com/luxfi/mintconsensus/pkg/math/polynomial"
	"github.com/luxfi/mintconsensus/pkg/party"
	"github.com/luxfi/mintconsensus/pkg/rng"
)

// Dealer generates a fresh threshold key and splits it into per-peer
// Shamir shares.
type Dealer struct {
	threshold int
	rng       rng.Source
}

// NewDealer returns a Dealer that will produce shares recombinable by any
// threshold of them, drawing every secret/coefficient it samples from
// source (spec.md §4.1's RngSource: a fresh GetRNG() reader per Generate
// call, never a single shared RNG instance).
func NewDealer(threshold int, source rng.Source) *Dealer {
	return &Dealer{threshold: threshold, rng: source}
}

// Shares is the result of a key-generation run: one share per peer, plus
// the master secret itself (returned only so tests and the local
// simulator can cross-check Combine's output; a real dealer would destroy
// it after distributing shares).
type Shares struct {
	Secret *polynomial.Scalar
	Shares map[party.ID]*polynomial.Scalar
}

// Generate runs the dealer for the given peer set, sampling a fresh random
// secret and Shamir-splitting it at degree threshold-1 (so that any
// `threshold` shares recombine it, matching spec.md §4.4.3's t = N-f).
func (d *Dealer) Generate(ids party.Set) (*Shares, error) {
	if d.threshold < 1 || d.threshold > len(ids) {
		return nil, fmt.Errorf("dkg: threshold %d invalid for %d peers", d.threshold, len(ids))
	}
	r := d.rng.GetRNG()
	secret, err := polynomial.RandomScalar(r)
	if err != nil {
		return nil, fmt.Errorf("dkg: sampling master secret: %w", err)
	}
	poly, err := polynomial.NewPolynomial(d.threshold-1, secret, r)
	if err != nil {
		return nil, fmt.Errorf("dkg: building sharing polynomial: %w", err)
	}
	return &Shares{Secret: secret, Shares: poly.Shares(ids)}, nil
}
