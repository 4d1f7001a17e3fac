package consensus

import (
	"sync"

	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/party"
)

// ShareMap accumulates PartialSigResponse contributions per RequestID as
// they are delivered by epoch processing (spec.md §4.4.2). Within one
// RequestID, at most one share per peer is kept: a peer resubmitting (or a
// Byzantine peer submitting twice) cannot inflate its own weight toward
// the threshold (spec.md Invariant 1, "first-writer-wins per peer").
type ShareMap struct {
	mu   sync.Mutex
	byID map[mint.RequestID]map[party.ID]mint.PartialSigResponse
}

// NewShareMap returns an empty ShareMap.
func NewShareMap() *ShareMap {
	return &ShareMap{byID: make(map[mint.RequestID]map[party.ID]mint.PartialSigResponse)}
}

// Add records share under its RequestID, keyed by Peer. It reports whether
// the share was newly recorded (false if that peer already contributed to
// this request — a duplicate or Byzantine resubmission, silently dropped
// per spec.md Invariant 1 rather than treated as an error).
func (s *ShareMap) Add(share mint.PartialSigResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers, ok := s.byID[share.Request]
	if !ok {
		peers = make(map[party.ID]mint.PartialSigResponse)
		s.byID[share.Request] = peers
	}
	if _, dup := peers[share.Peer]; dup {
		return false
	}
	peers[share.Peer] = share
	return true
}

// Get returns every distinct-peer share recorded for id, in ascending peer
// order for determinism (spec.md §4.4 determinism requirement).
func (s *ShareMap) Get(id mint.RequestID) []mint.PartialSigResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers, ok := s.byID[id]
	if !ok {
		return nil
	}
	ids := make(party.Set, 0, len(peers))
	for pid := range peers {
		ids = append(ids, pid)
	}
	ids = party.NewSet(ids...)
	out := make([]mint.PartialSigResponse, 0, len(ids))
	for _, pid := range ids {
		out = append(out, peers[pid])
	}
	return out
}

// Len reports how many distinct peers have contributed a share for id.
func (s *ShareMap) Len(id mint.RequestID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID[id])
}

// Remove discards every share recorded for id, once combination has
// succeeded and the request is finalized (spec.md §4.4.2/§4.4.3).
func (s *ShareMap) Remove(id mint.RequestID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}
