package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/mintconsensus/internal/testutil"
	"github.com/luxfi/mintconsensus/pkg/config"
	"github.com/luxfi/mintconsensus/pkg/dkg"
	"github.com/luxfi/mintconsensus/pkg/mint"
)

// TestApplyPartialSigDetectsExtraFaultyShare is a white-box counterpart to
// consensus_test.go's scenario tests: it exercises the branch of
// applyPartialSig where Combine is handed more than threshold distinct
// shares in one call, which only happens if ShareMap already holds extra
// entries before the triggering Add — e.g. a peer that was offline
// catching up on several already-circulating shares in one delivery,
// rather than receiving them one at a time. Seeding ShareMap directly
// (instead of only through applyPartialSig) is the only way to construct
// that precondition deterministically (spec.md §8 scenario S6).
func TestApplyPartialSigDetectsExtraFaultyShare(t *testing.T) {
	const n, f = 5, 1
	threshold := n - f // = 4
	ids := testutil.PeerIDs(n)
	out, err := dkg.NewDealer(threshold, testutil.RNG(t)).Generate(ids)
	require.NoError(t, err)

	ledger := mint.NewLedger()
	cfg := config.FederationConfig{Identity: ids[0], MaxFaulty: f}
	for _, id := range ids {
		cfg.Peers = append(cfg.Peers, config.PeerInfo{ID: id})
	}
	m := mint.NewThresholdMint(ids[0], out.Shares[ids[0]], ledger)
	fc := New(cfg, m)

	req := mint.IssuanceRequest{BlindedTokens: []byte("catch-up")}
	var shares []mint.PartialSigResponse
	for _, id := range ids {
		mm := mint.NewThresholdMint(id, out.Shares[id], ledger)
		s, err := mm.Sign(req)
		require.NoError(t, err)
		shares = append(shares, s)
	}
	// Corrupt one share inside what will become the "extra" set once 4
	// (threshold) others are already present.
	shares[n-1].Share[0] ^= 0xFF

	// Preload threshold-1 honest shares directly: this does not go through
	// applyPartialSig, so no combine attempt happens yet.
	for _, s := range shares[:threshold-1] {
		fc.shares.Add(s)
	}
	require.Equal(t, threshold-1, fc.shares.Len(req.ID()))

	var outcome Outcome
	// The (threshold)-th share triggers the first combine attempt, but by
	// now two more shares (one corrupted) are folded in via a second
	// direct Add before the triggering call, so Combine sees more than
	// threshold entries and can cross-check the extras.
	fc.shares.Add(shares[threshold-1])
	fc.shares.Add(shares[n-1])
	fc.applyPartialSig(shares[threshold-1], &outcome)

	require.Len(t, outcome.Signatures, 1)
	require.NotEmpty(t, outcome.FaultyPeers)
	assert.Equal(t, ids[n-1], outcome.FaultyPeers[0].Peer)
	assert.GreaterOrEqual(t, fc.health.Faults(ids[n-1]), 1)
}
