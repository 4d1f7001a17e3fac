package dkg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/mintconsensus/internal/testutil"
	"github.com/luxfi/mintconsensus/pkg/dkg"
	"github.com/luxfi/mintconsensus/pkg/math/polynomial"
	"github.com/luxfi/mintconsensus/pkg/party"
)

func TestDealerGenerateRecombines(t *testing.T) {
	ids := testutil.PeerIDs(5)
	d := dkg.NewDealer(3, testutil.RNG(t))
	out, err := d.Generate(ids)
	require.NoError(t, err)
	assert.Len(t, out.Shares, 5)

	subset := map[party.ID]*polynomial.Scalar{}
	i := 0
	for _, id := range ids {
		if i >= 3 {
			break
		}
		subset[id] = out.Shares[id]
		i++
	}
	got := polynomial.Recombine(subset)
	assert.True(t, got.Equal(out.Secret))
}

func TestDealerRejectsBadThreshold(t *testing.T) {
	ids := testutil.PeerIDs(3)
	d := dkg.NewDealer(5, testutil.RNG(t))
	_, err := d.Generate(ids)
	assert.Error(t, err)
}
