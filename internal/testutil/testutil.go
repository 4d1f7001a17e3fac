// Package testutil provides small fixtures shared by this module's test
// suites, mirroring the teacher's internal/test helper package (whose
// test.PartyIDs is PeerIDs here, as used by
// pkg/math/polynomial/lagrange_test.go).
package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/luxfi/mintconsensus/pkg/party"
	"github.com/luxfi/mintconsensus/pkg/rng"
)

// PeerIDs returns the peer set {0, 1, ..., n-1}.
func PeerIDs(n int) party.Set {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(i)
	}
	return party.NewSet(ids...)
}

// RNG returns a fresh OS-entropy-seeded rng.Source for tests that need to
// feed dkg.NewDealer without each hand-rolling the same setup.
func RNG(t require.TestingT) rng.Source {
	src, err := rng.NewOSEntropy()
	require.NoError(t, err)
	return src
}
