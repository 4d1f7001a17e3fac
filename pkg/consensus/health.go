package consensus

import (
	"sync"

	"github.com/luxfi/mintconsensus/pkg/party"
)

// faultsBeforeUnhealthy is how many flagged-faulty shares a peer can
// accrue before PeerHealthTracker reports it unhealthy. Chosen to tolerate
// a single bad signature (e.g. a transient bit-flip) without immediately
// branding a peer Byzantine, while still surfacing a peer that is
// consistently contributing bad shares.
const faultsBeforeUnhealthy = 3

// PeerHealthTracker accumulates per-peer fault counts observed during
// Combine's faulty-share detection (spec.md §4.4.2), adapted from the
// teacher's protocols/cmp/fault_tolerance.go PartyHealth, which tracked
// aborts/inconsistencies across a party during an interactive MPC
// protocol. Here there is no interactive protocol to abort; instead this
// tracker gives operators a monotone signal of which peers are
// misbehaving across epochs, for out-of-band action (alerting, eventual
// federation reconfiguration) — SPEC_FULL.md §5.
type PeerHealthTracker struct {
	mu     sync.Mutex
	faults map[party.ID]int
}

// NewPeerHealthTracker returns an empty tracker.
func NewPeerHealthTracker() *PeerHealthTracker {
	return &PeerHealthTracker{faults: make(map[party.ID]int)}
}

// RecordFault increments peer's observed fault count.
func (h *PeerHealthTracker) RecordFault(peer party.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults[peer]++
}

// Faults reports how many times peer has been flagged faulty.
func (h *PeerHealthTracker) Faults(peer party.ID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.faults[peer]
}

// Unhealthy reports whether peer has crossed faultsBeforeUnhealthy.
func (h *PeerHealthTracker) Unhealthy(peer party.ID) bool {
	return h.Faults(peer) >= faultsBeforeUnhealthy
}

// UnhealthyPeers returns every peer currently over the fault threshold, in
// ascending ID order.
func (h *PeerHealthTracker) UnhealthyPeers() party.Set {
	h.mu.Lock()
	ids := make([]party.ID, 0)
	for pid, n := range h.faults {
		if n >= faultsBeforeUnhealthy {
			ids = append(ids, pid)
		}
	}
	h.mu.Unlock()
	return party.NewSet(ids...)
}
