package consensus

import (
	"fmt"

	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/multisig"
)

// admitClientRequest runs the pre-pool validation spec.md §4.2 describes:
// cheap, peer-local checks that keep obviously-invalid requests out of the
// proposal pool, with the understanding that only consensus-time
// re-validation (performed again by applyClientRequest, spec.md
// §4.4.1) is authoritative — a request admitted here can still be denied
// once delivered, e.g. because another peer's concurrently-delivered
// request already spent the same coin (spec.md Invariant 5/§8 scenario
// S3, "double spend survives admission but is caught by consensus").
//
// digests is an optional cache of reissuance digests precomputed by
// ProcessConsensusOutcome's concurrent preverifyDigests pass (spec.md §5);
// SubmitClientRequest, which has no such cache, passes nil and
// reissuanceDigestFor falls back to computing the digest inline.
func admitClientRequest(m mint.Mint, cr ClientRequest, digests map[*ReissuanceRequest]reissuanceDigest) error {
	switch cr.Kind {
	case KindPegIn:
		if cr.PegIn == nil || len(cr.PegIn.Proof) == 0 {
			return &AdmissionError{Err: fmt.Errorf("%w: missing peg-in proof", ErrPegInUnverified)}
		}
		return nil

	case KindReissuance:
		r := cr.Reissuance
		if r == nil {
			return &AdmissionError{Err: fmt.Errorf("%w: nil reissuance", ErrInvalidTransactionSignature)}
		}
		digest, err := reissuanceDigestFor(r, digests)
		if err != nil {
			return &AdmissionError{Err: err}
		}
		keys := make([]*multisig.PublicKey, 0, len(r.Coins))
		for _, c := range r.Coins {
			pk, err := c.SpendKey()
			if err != nil {
				return &AdmissionError{Err: fmt.Errorf("%w: %v", ErrInvalidTransactionSignature, err)}
			}
			keys = append(keys, pk)
		}
		if !multisig.Verify(digest, r.Sig, keys) {
			return &AdmissionError{Err: ErrInvalidTransactionSignature}
		}
		if !m.Validate(r.Coins) {
			return &AdmissionError{Err: ErrDeniedByMint}
		}
		return nil

	case KindPegOut:
		return &AdmissionError{Err: ErrUnimplemented}

	default:
		return &AdmissionError{Err: fmt.Errorf("%w: unknown request kind %d", ErrUnimplemented, cr.Kind)}
	}
}

// reissuanceDigestFor returns r's digest, preferring a cached result from
// digests when present so the concurrent preverify pass actually saves the
// sequential path the recomputation.
func reissuanceDigestFor(r *ReissuanceRequest, digests map[*ReissuanceRequest]reissuanceDigest) ([32]byte, error) {
	if digests != nil {
		if d, ok := digests[r]; ok {
			return d.digest, d.err
		}
	}
	return r.Digest()
}
