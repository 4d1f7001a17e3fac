package polynomial_test

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"

	"github.com/luxfi/mintconsensus/internal/testutil"
	"github.com/luxfi/mintconsensus/pkg/math/polynomial"
	"github.com/luxfi/mintconsensus/pkg/party"
)

func TestLagrange(t *testing.T) {
	N := 10
	allIDs := testutil.PeerIDs(N)
	coefsEven := polynomial.Lagrange(allIDs)
	coefsOdd := polynomial.Lagrange(party.NewSet(allIDs[:N-1]...))
	sumEven := polynomial.NewScalar()
	sumOdd := polynomial.NewScalar()
	one := polynomial.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	for _, c := range coefsEven {
		sumEven.Add(c)
	}
	for _, c := range coefsOdd {
		sumOdd.Add(c)
	}
	assert.True(t, sumEven.Equal(one))
	assert.True(t, sumOdd.Equal(one))
}

func TestShamirRoundTrip(t *testing.T) {
	N, threshold := 7, 4
	secret := polynomial.NewScalar().SetUint64(424242)
	poly, err := polynomial.NewPolynomial(threshold-1, secret, nil)
	assert.NoError(t, err)

	ids := testutil.PeerIDs(N)
	shares := poly.Shares(ids)

	// Any threshold-sized subset recombines to the same secret.
	subset := map[party.ID]*polynomial.Scalar{}
	for i, id := range ids {
		if i >= threshold {
			break
		}
		subset[id] = shares[id]
	}
	got := polynomial.Recombine(subset)
	assert.True(t, got.Equal(secret))

	otherSubset := map[party.ID]*polynomial.Scalar{}
	for i := len(ids) - threshold; i < len(ids); i++ {
		otherSubset[ids[i]] = shares[ids[i]]
	}
	gotOther := polynomial.Recombine(otherSubset)
	assert.True(t, gotOther.Equal(secret))
}
