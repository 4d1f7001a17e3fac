package polynomial

import (
	"fmt"
	"io"

	"github.com/luxfi/mintconsensus/pkg/party"
)

// Polynomial is a degree-(t-1) polynomial over Z_Order, used as the
// sharing polynomial in Shamir secret sharing: coefficients[0] is the
// secret, coefficients[1:] are random blinding coefficients.
type Polynomial struct {
	coefficients []*Scalar
}

// NewPolynomial samples a random polynomial of the given degree whose
// constant term is secret, drawing blinding coefficients from r (typically
// one pkg/rng.Source.GetRNG() call per dealer run, per spec.md §4.1). A nil
// r falls back to crypto/rand.Reader.
func NewPolynomial(degree int, secret *Scalar, r io.Reader) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("polynomial: negative degree %d", degree)
	}
	coeffs := make([]*Scalar, degree+1)
	coeffs[0] = secret.Clone()
	for i := 1; i <= degree; i++ {
		c, err := RandomScalar(r)
		if err != nil {
			return nil, fmt.Errorf("polynomial: sampling coefficient %d: %w", i, err)
		}
		coeffs[i] = c
	}
	return &Polynomial{coefficients: coeffs}, nil
}

// Degree returns the polynomial's degree.
func (p *Polynomial) Degree() int { return len(p.coefficients) - 1 }

// x maps a party ID onto a nonzero evaluation point: party IDs start at 0,
// but x=0 is reserved for the secret itself, so every party is evaluated
// at id+1.
func x(id party.ID) *Scalar {
	return NewScalar().SetUint64(uint64(id) + 1)
}

// Evaluate computes p(x) using Horner's method.
func (p *Polynomial) Evaluate(at *Scalar) *Scalar {
	acc := NewScalar()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		acc.Mul(at)
		acc.Add(p.coefficients[i])
	}
	return acc
}

// Share evaluates the polynomial at the point assigned to id.
func (p *Polynomial) Share(id party.ID) *Scalar {
	return p.Evaluate(x(id))
}

// Shares evaluates the polynomial at every id in ids, returning the
// Shamir share for each.
func (p *Polynomial) Shares(ids party.Set) map[party.ID]*Scalar {
	out := make(map[party.ID]*Scalar, len(ids))
	for _, id := range ids {
		out[id] = p.Share(id)
	}
	return out
}

// Lagrange computes, for the given set of contributing party IDs, the
// Lagrange coefficients that recombine their shares into the polynomial's
// value at x=0 (the secret). The coefficients for any subset of size
// exactly p.Degree()+1 sum to one; this is the property the teacher's
// lagrange_test.go already checks.
func Lagrange(ids party.Set) map[party.ID]*Scalar {
	coeffs := make(map[party.ID]*Scalar, len(ids))
	for _, i := range ids {
		xi := x(i)
		num := NewScalar().SetUint64(1)
		den := NewScalar().SetUint64(1)
		for _, j := range ids {
			if j == i {
				continue
			}
			xj := x(j)
			// num *= (0 - xj) = -xj
			num.Mul(NewScalar().SetUint64(0).Sub(xj))
			// den *= (xi - xj)
			den.Mul(xi.Clone().Sub(xj))
		}
		coeffs[i] = num.Mul(den.Inverse())
	}
	return coeffs
}

// Recombine applies the Lagrange coefficients for the contributing set to
// the given shares, returning their interpolated value at x=0.
func Recombine(shares map[party.ID]*Scalar) *Scalar {
	ids := make(party.Set, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	ids = party.NewSet(ids...)
	coeffs := Lagrange(ids)
	acc := NewScalar()
	for _, id := range ids {
		term := coeffs[id].Clone().Mul(shares[id])
		acc.Add(term)
	}
	return acc
}
