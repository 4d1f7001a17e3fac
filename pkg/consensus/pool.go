package consensus

import (
	"fmt"
	"sync"
)

// ProposalPool holds every ConsensusItem this peer intends to propose in
// its next epoch contribution: outstanding client requests plus this
// peer's own partial signatures (spec.md §4.1/§4.3). It is a set, not a
// list — duplicate Insert calls are no-ops — because the same
// ClientRequest may reach a peer more than once (resubmission, gossip) and
// must only ever be proposed once (spec.md Invariant 3).
type ProposalPool struct {
	mu    sync.Mutex
	items map[string]ConsensusItem
}

// NewProposalPool returns an empty pool.
func NewProposalPool() *ProposalPool {
	return &ProposalPool{items: make(map[string]ConsensusItem)}
}

// Insert adds item to the pool, reporting whether it was new.
func (p *ProposalPool) Insert(item ConsensusItem) (bool, error) {
	key, err := item.key()
	if err != nil {
		return false, fmt.Errorf("proposal pool: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.items[key]; exists {
		return false, nil
	}
	p.items[key] = item
	return true, nil
}

// Remove drops item from the pool. It is idempotent: removing an item not
// present is not an error, matching spec.md §4.4 ("processed items are
// removed from the pool if present").
func (p *ProposalPool) Remove(item ConsensusItem) error {
	key, err := item.key()
	if err != nil {
		return fmt.Errorf("proposal pool: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, key)
	return nil
}

// Contains reports whether item is currently pending proposal.
func (p *ProposalPool) Contains(item ConsensusItem) (bool, error) {
	key, err := item.key()
	if err != nil {
		return false, fmt.Errorf("proposal pool: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.items[key]
	return ok, nil
}

// Snapshot returns every item currently pending, in no particular order.
// Callers that need BFT-submittable proposals should sort or otherwise
// canonicalize the result themselves; ProposalPool makes no ordering
// promise beyond set membership (spec.md §4.1, "no ordering guarantee
// between peers").
func (p *ProposalPool) Snapshot() []ConsensusItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ConsensusItem, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	return out
}

// Len reports the number of pending items.
func (p *ProposalPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
