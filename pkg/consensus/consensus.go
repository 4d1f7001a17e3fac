package consensus

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/mintconsensus/pkg/config"
	"github.com/luxfi/mintconsensus/pkg/mint"
)

// FederationConsensus is the per-peer replicated state machine spec.md §4
// describes: it owns this peer's ProposalPool and ShareMap, and applies
// BFT-delivered Batches against its Mint capability.
type FederationConsensus struct {
	mu     sync.Mutex
	cfg    config.FederationConfig
	mint   mint.Mint
	pool   *ProposalPool
	shares *ShareMap
	health *PeerHealthTracker
}

// New wires a FederationConsensus instance for one peer, given its
// federation configuration and its Mint capability (spec.md §1/§6).
func New(cfg config.FederationConfig, m mint.Mint) *FederationConsensus {
	return &FederationConsensus{
		cfg:    cfg,
		mint:   m,
		pool:   NewProposalPool(),
		shares: NewShareMap(),
		health: NewPeerHealthTracker(),
	}
}

// Health exposes the peer-fault tracker (SPEC_FULL.md §5) for operators.
func (f *FederationConsensus) Health() *PeerHealthTracker { return f.health }

// SubmitClientRequest runs admission (spec.md §4.2) and, if accepted,
// inserts cr into the proposal pool so it is offered in this peer's next
// GetConsensusProposal call. It does not mutate ShareMap: that only
// happens once the request has actually been delivered back through
// ProcessConsensusOutcome (spec.md §4.4.1).
func (f *FederationConsensus) SubmitClientRequest(cr ClientRequest) error {
	if err := admitClientRequest(f.mint, cr, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.pool.Insert(NewClientRequestItem(cr))
	return err
}

// GetConsensusProposal returns this peer's current proposal: a snapshot of
// its ProposalPool, handed to the (external) BFT atomic-broadcast layer
// for ordering (spec.md §4.1/§4.3).
func (f *FederationConsensus) GetConsensusProposal() []ConsensusItem {
	return f.pool.Snapshot()
}

// ProcessConsensusOutcome applies one BFT-delivered Batch (spec.md §4.4).
// Before the deterministic sequential application, it fans out the
// expensive reissuance-digest computation across a worker pool via
// errgroup (spec.md §5, "MAY offload cryptographic verification... so long
// as application order is re-serialized to the BFT-delivered order").
// applyBatch's sequential pass then reuses each precomputed digest instead
// of recomputing it, so the concurrent work is actually consumed rather
// than thrown away; a digest that fails to compute is recorded per-request
// and surfaces later as that one request's admission denial (spec.md §7),
// never as a failure of the whole batch.
func (f *FederationConsensus) ProcessConsensusOutcome(batch Batch) (Outcome, error) {
	digests := f.preverifyDigests(batch)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyBatch(batch, digests)
}

// reissuanceDigest is the memoized result of one ReissuanceRequest.Digest()
// call, keyed by the request's own pointer identity: batch.Contributions
// and the ClientRequest handed to applyClientRequest share that same
// pointer, so the cache lookup is exact without needing a second encoding
// pass to derive a key.
type reissuanceDigest struct {
	digest [32]byte
	err    error
}

// preverifyDigests concurrently computes the reissuance digest for every
// Reissuance ClientRequest in batch, so applyBatch's later sequential pass
// never recomputes one. Encoding failures are captured per-request rather
// than aborting the batch (see ProcessConsensusOutcome): a race between the
// concurrent pass and the sequential ledger state it never touches cannot
// change the outcome.
func (f *FederationConsensus) preverifyDigests(batch Batch) map[*ReissuanceRequest]reissuanceDigest {
	out := make(map[*ReissuanceRequest]reissuanceDigest)
	var mu sync.Mutex
	var g errgroup.Group
	for _, items := range batch.Contributions {
		items := items
		g.Go(func() error {
			for _, item := range items {
				if item.Kind != ItemClientRequest || item.ClientRequest == nil {
					continue
				}
				if item.ClientRequest.Kind != KindReissuance || item.ClientRequest.Reissuance == nil {
					continue
				}
				r := item.ClientRequest.Reissuance
				d, err := r.Digest()
				mu.Lock()
				out[r] = reissuanceDigest{digest: d, err: err}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines above never return a non-nil error
	return out
}
