// Package multisig implements the multi-signature primitive spec.md §1/§4.2
// calls out as an opaque external capability ("the multi-signature primitive
// used to authenticate client reissuances (opaque verify)"). The concrete
// scheme here is deliberately simple: an n-of-n bundle of individual
// BIP340-style Schnorr signatures, one per spend key, all covering the same
// digest. It exists to give RequestAdmission something real to call, not as
// a production key-aggregation scheme.
package multisig

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// PublicKey is a spend public key, as carried by a Coin.
type PublicKey = secp256k1.PublicKey

// PrivateKey is a spend private key, held only by clients.
type PrivateKey = secp256k1.PrivateKey

// Signature bundles one Schnorr signature per signing key, in the same
// order as the key set passed to Verify/Sign.
type Signature struct {
	Shares [][]byte
}

// Sign produces a Signature authorizing digest under every key in keys, in
// order. It is the client-side counterpart of Verify; the consensus core
// never calls it, but tests do.
func Sign(digest [32]byte, keys []*PrivateKey) (Signature, error) {
	sig := Signature{Shares: make([][]byte, len(keys))}
	for i, k := range keys {
		s, err := schnorr.Sign(k, digest[:])
		if err != nil {
			return Signature{}, fmt.Errorf("multisig: signing share %d: %w", i, err)
		}
		sig.Shares[i] = s.Serialize()
	}
	return sig, nil
}

// ParsePubKey parses a compressed secp256k1 public key, as stored on a
// Coin.
func ParsePubKey(b []byte) (*PublicKey, error) {
	return secp256k1.ParsePubKey(b)
}

// Verify reports whether sig authorizes digest under every key in pubKeys.
// It matches spec.md Invariant 4 / §4.2 step 2: a Reissuance is only
// admitted if this holds for the spend keys of every input coin.
func Verify(digest [32]byte, sig Signature, pubKeys []*PublicKey) bool {
	if len(sig.Shares) != len(pubKeys) {
		return false
	}
	for i, pk := range pubKeys {
		parsed, err := schnorr.ParseSignature(sig.Shares[i])
		if err != nil {
			return false
		}
		if !parsed.Verify(digest[:], pk) {
			return false
		}
	}
	return true
}
