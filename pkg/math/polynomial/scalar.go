// Package polynomial implements Shamir secret sharing and Lagrange
// interpolation over the secp256k1 scalar field, used to split and
// recombine the mint's threshold key material.
//
// The teacher repo (github.com/luxfi/threshold) has this package path
// already, backed by an abstract curve.Curve/curve.Scalar interface
// (pkg/math/curve) that was never retrieved into this pack. This rewrite
// keeps the package path and the "coefficients sum to one" property the
// teacher's own lagrange_test.go already checks, but is expressed against
// a concrete Scalar type instead of the missing interface.
package polynomial

import (
	"crypto/rand"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Order is the order of the secp256k1 group, i.e. the modulus every
// Scalar is reduced against.
var Order = func() *big.Int {
	n, ok := new(big.Int).SetString(
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	if !ok {
		panic("polynomial: invalid secp256k1 order constant")
	}
	return n
}()

// Scalar is an element of Z_Order.
type Scalar struct {
	v *big.Int
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{v: new(big.Int)}
}

// SetNat sets s from a saferith.Nat, reducing modulo Order. This matches
// the teacher's existing lagrange_test.go call pattern,
// group.NewScalar().SetNat(...).
func (s *Scalar) SetNat(n *saferith.Nat) *Scalar {
	s.v = new(big.Int).SetBytes(n.Bytes())
	s.v.Mod(s.v, Order)
	return s
}

// Nat returns s as a saferith.Nat.
func (s *Scalar) Nat() *saferith.Nat {
	return new(saferith.Nat).SetBytes(s.v.Bytes())
}

// SetUint64 sets s to the given small integer.
func (s *Scalar) SetUint64(x uint64) *Scalar {
	s.v = new(big.Int).SetUint64(x)
	return s
}

// SetBytes sets s from a big-endian byte slice, reducing modulo Order.
func (s *Scalar) SetBytes(b []byte) *Scalar {
	s.v = new(big.Int).SetBytes(b)
	s.v.Mod(s.v, Order)
	return s
}

// Bytes returns s as a 32-byte big-endian value.
func (s *Scalar) Bytes() []byte {
	out := make([]byte, 32)
	b := s.v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Add sets s = s + other and returns s.
func (s *Scalar) Add(other *Scalar) *Scalar {
	s.v.Add(s.v, other.v)
	s.v.Mod(s.v, Order)
	return s
}

// Sub sets s = s - other and returns s.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	s.v.Sub(s.v, other.v)
	s.v.Mod(s.v, Order)
	return s
}

// Mul sets s = s * other and returns s.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	s.v.Mul(s.v, other.v)
	s.v.Mod(s.v, Order)
	return s
}

// Inverse sets s to its multiplicative inverse modulo Order and returns s.
func (s *Scalar) Inverse() *Scalar {
	s.v.ModInverse(s.v, Order)
	return s
}

// Negate sets s = -s mod Order and returns s.
func (s *Scalar) Negate() *Scalar {
	s.v.Neg(s.v)
	s.v.Mod(s.v, Order)
	return s
}

// Equal reports whether s and other represent the same field element.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.v.Cmp(other.v) == 0
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Clone returns a deep copy of s.
func (s *Scalar) Clone() *Scalar {
	return &Scalar{v: new(big.Int).Set(s.v)}
}

// RandomScalar returns a uniformly random nonzero scalar read from r.
func RandomScalar(r interface{ Read([]byte) (int, error) }) (*Scalar, error) {
	if r == nil {
		r = rand.Reader
	}
	for {
		buf := make([]byte, 32)
		if _, err := r.Read(buf); err != nil {
			return nil, err
		}
		s := NewScalar().SetBytes(buf)
		if !s.IsZero() {
			return s, nil
		}
	}
}
