package consensus

import (
	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/party"
)

// Outcome summarizes what applying one Batch produced, for logging and for
// tests asserting spec.md §8 scenarios.
type Outcome struct {
	Epoch       uint64
	Signatures  []mint.SigResponse
	Denied      []DeniedRequest
	FaultyPeers []mint.FaultyShare
}

// DeniedRequest records a ClientRequest that failed consensus-time
// re-validation (spec.md §4.4.1) even though it was admitted into some
// peer's proposal pool.
type DeniedRequest struct {
	Peer party.ID
	Err  error
}

// applyBatch is EpochProcessor's core step (spec.md §4.4): deterministic
// iteration — peers ascending by ID, then each peer's items in delivered
// order — so that every honest node, given the same Batch, produces an
// identical Outcome and identical pool/ShareMap mutations (spec.md
// Invariant 2, "determinism").
func (f *FederationConsensus) applyBatch(batch Batch, digests map[*ReissuanceRequest]reissuanceDigest) (Outcome, error) {
	outcome := Outcome{Epoch: batch.Epoch}

	peers := make(party.Set, 0, len(batch.Contributions))
	for pid := range batch.Contributions {
		peers = append(peers, pid)
	}
	peers = party.NewSet(peers...)

	for _, pid := range peers {
		for _, item := range batch.Contributions[pid] {
			if err := f.pool.Remove(item); err != nil {
				return outcome, err
			}

			switch item.Kind {
			case ItemClientRequest:
				f.applyClientRequest(pid, *item.ClientRequest, &outcome, digests)
			case ItemPartiallySignedRequest:
				f.applyPartialSig(*item.PartialSig, &outcome)
			}
		}
	}
	return outcome, nil
}

// applyClientRequest re-validates cr (consensus-time validation is
// authoritative, spec.md §4.4.1) and, if accepted, produces this peer's own
// partial signature and re-proposes it as a ConsensusItem so the rest of
// the federation can aggregate it (spec.md §4.3). digests reuses the
// reissuance digest ProcessConsensusOutcome's concurrent pass already
// computed (spec.md §5), rather than recomputing it here.
func (f *FederationConsensus) applyClientRequest(proposer party.ID, cr ClientRequest, outcome *Outcome, digests map[*ReissuanceRequest]reissuanceDigest) {
	if err := admitClientRequest(f.mint, cr, digests); err != nil {
		outcome.Denied = append(outcome.Denied, DeniedRequest{Peer: proposer, Err: err})
		return
	}

	var share mint.PartialSigResponse
	switch cr.Kind {
	case KindPegIn:
		s, err := f.mint.Sign(cr.PegIn.BlindTokens)
		if err != nil {
			outcome.Denied = append(outcome.Denied, DeniedRequest{Peer: proposer, Err: err})
			return
		}
		share = s
	case KindReissuance:
		s, ok := f.mint.Reissue(cr.Reissuance.Coins, cr.Reissuance.BlindTokens)
		if !ok {
			outcome.Denied = append(outcome.Denied, DeniedRequest{Peer: proposer, Err: mint.ErrDeniedByMint})
			return
		}
		share = *s
	default:
		outcome.Denied = append(outcome.Denied, DeniedRequest{Peer: proposer, Err: ErrUnimplemented})
		return
	}

	f.applyPartialSig(share, outcome)
	if _, err := f.pool.Insert(NewPartialSigItem(share)); err != nil {
		outcome.Denied = append(outcome.Denied, DeniedRequest{Peer: proposer, Err: err})
	}
}

// applyPartialSig folds one peer's partial signature into the ShareMap and,
// once at least threshold distinct peers have contributed, attempts
// combination (spec.md §4.4.2/§4.4.3).
func (f *FederationConsensus) applyPartialSig(share mint.PartialSigResponse, outcome *Outcome) {
	f.shares.Add(share)
	if f.shares.Len(share.Request) < f.threshold() {
		return
	}

	all := f.shares.Get(share.Request)
	sig, report, err := f.mint.Combine(f.threshold(), all)
	if err != nil {
		return
	}
	outcome.FaultyPeers = append(outcome.FaultyPeers, report.Faulty...)
	for _, fault := range report.Faulty {
		f.health.RecordFault(fault.Peer)
	}
	outcome.Signatures = append(outcome.Signatures, *sig)
	f.shares.Remove(share.Request)
}

// threshold is t = N - f (spec.md §4.4.3): the minimal distinct-peer share
// count ShareAggregator requires before attempting combination. The
// threshold-th share itself triggers the attempt (spec.md Open Question 4
// resolution, see SPEC_FULL.md §7).
func (f *FederationConsensus) threshold() int { return f.cfg.Threshold() }
