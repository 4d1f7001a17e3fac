package consensus_test

import (
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/mintconsensus/pkg/consensus"
	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/party"
)

var _ = Describe("ProposalPool", func() {
	It("is idempotent under repeated Insert of the same item (Invariant 3)", func() {
		property := func(tokensRaw uint32) bool {
			pool := consensus.NewProposalPool()
			item := consensus.NewClientRequestItem(consensus.NewPegIn(consensus.PegInRequest{
				Proof:       []byte("proof"),
				BlindTokens: mint.IssuanceRequest{BlindedTokens: uint32Bytes(tokensRaw)},
			}))

			first, err := pool.Insert(item)
			Expect(err).NotTo(HaveOccurred())
			second, err := pool.Insert(item)
			Expect(err).NotTo(HaveOccurred())

			return first && !second && pool.Len() == 1
		}
		Expect(quick.Check(property, &quick.Config{MaxCount: 50})).To(Succeed())
	})

	It("Remove is idempotent even when the item was never present", func() {
		pool := consensus.NewProposalPool()
		item := consensus.NewClientRequestItem(consensus.NewPegOut(consensus.PegOutRequest{
			Destination: []byte("addr"),
			Amount:      1,
		}))
		Expect(pool.Remove(item)).To(Succeed())
		Expect(pool.Remove(item)).To(Succeed())
		Expect(pool.Len()).To(Equal(0))
	})
})

var _ = Describe("ShareMap", func() {
	It("keeps at most one share per peer per request, first write wins (Invariant 1)", func() {
		property := func(peerRaw uint8, first, second [4]byte) bool {
			sm := consensus.NewShareMap()
			peer := party.ID(peerRaw)
			var id mint.RequestID
			id[0] = 0xAB

			s1 := mint.PartialSigResponse{Request: id, Peer: peer, Share: append([]byte{}, first[:]...)}
			s2 := mint.PartialSigResponse{Request: id, Peer: peer, Share: append([]byte{}, second[:]...)}

			ok1 := sm.Add(s1)
			ok2 := sm.Add(s2)

			got := sm.Get(id)
			if len(got) != 1 {
				return false
			}
			return ok1 && !ok2 && string(got[0].Share) == string(s1.Share)
		}
		Expect(quick.Check(property, &quick.Config{MaxCount: 50})).To(Succeed())
	})

	It("Remove clears every recorded share for a request", func() {
		sm := consensus.NewShareMap()
		var id mint.RequestID
		id[0] = 1
		sm.Add(mint.PartialSigResponse{Request: id, Peer: 0, Share: []byte{1}})
		sm.Add(mint.PartialSigResponse{Request: id, Peer: 1, Share: []byte{2}})
		Expect(sm.Len(id)).To(Equal(2))
		sm.Remove(id)
		Expect(sm.Len(id)).To(Equal(0))
		Expect(sm.Get(id)).To(BeEmpty())
	})
})

var _ = Describe("FederationConsensus determinism (Invariant 2)", func() {
	It("produces the identical combined signature regardless of which peer processes the batch, and combines at most once per request", func() {
		const n, f = 5, 2
		fed := newFederationForGinkgo()

		req := mint.IssuanceRequest{BlindedTokens: []byte("determinism-check")}
		contributions := map[party.ID][]consensus.ConsensusItem{}
		for _, pid := range fed.ids {
			s, err := fed.mints[pid].Sign(req)
			Expect(err).NotTo(HaveOccurred())
			contributions[pid] = []consensus.ConsensusItem{consensus.NewPartialSigItem(s)}
		}
		batch := consensus.Batch{Epoch: 1, Contributions: contributions}

		var sigs [][]byte
		for _, p := range fed.peers {
			out, err := p.ProcessConsensusOutcome(batch)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Signatures).To(HaveLen(1), "at-most-one emission per request, reached exactly once")
			sigs = append(sigs, out.Signatures[0].Signature)
		}
		for _, s := range sigs[1:] {
			Expect(s).To(Equal(sigs[0]))
		}
	})

	It("never combines the same request twice for a peer that keeps only threshold shares in flight", func() {
		// A batch delivering exactly threshold shares purges ShareMap for
		// that request on the first combine; redelivering a batch with
		// nothing new for that request (an empty contribution set) cannot
		// manufacture a second signature.
		const n, f = 5, 2
		fed := newFederationForGinkgo()

		req := mint.IssuanceRequest{BlindedTokens: []byte("no-repeat")}
		contributions := map[party.ID][]consensus.ConsensusItem{}
		for _, pid := range fed.ids[:fed.threshold] {
			s, err := fed.mints[pid].Sign(req)
			Expect(err).NotTo(HaveOccurred())
			contributions[pid] = []consensus.ConsensusItem{consensus.NewPartialSigItem(s)}
		}
		batch := consensus.Batch{Epoch: 1, Contributions: contributions}
		out, err := fed.peers[0].ProcessConsensusOutcome(batch)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Signatures).To(HaveLen(1))

		empty := consensus.Batch{Epoch: 2, Contributions: map[party.ID][]consensus.ConsensusItem{}}
		again, err := fed.peers[0].ProcessConsensusOutcome(empty)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Signatures).To(BeEmpty())
	})
})

func newFederationForGinkgo() *federation {
	return newFederation(GinkgoT(), 5, 2)
}

func uint32Bytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
