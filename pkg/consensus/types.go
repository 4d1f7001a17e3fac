// Package consensus implements the replicated state machine described in
// spec.md: request admission, the outstanding-proposal pool, epoch
// application, and threshold-signature aggregation. It is a direct,
// idiomatic-Go translation of original_source/minimint/src/consensus.rs
// (the Rust FediMintConsensus this spec was distilled from), generalized
// to an opaque Mint/multisig boundary per spec.md §1.
package consensus

import (
	"errors"
	"fmt"

	"github.com/luxfi/mintconsensus/pkg/hash"
	"github.com/luxfi/mintconsensus/pkg/mint"
	"github.com/luxfi/mintconsensus/pkg/multisig"
	"github.com/luxfi/mintconsensus/pkg/party"
	"github.com/luxfi/mintconsensus/pkg/wire"
)

// PegInRequest carries an external-chain peg-in proof plus the issuance
// payload to be signed (spec.md §3).
type PegInRequest struct {
	Proof       []byte
	BlindTokens mint.IssuanceRequest
}

// ReissuanceRequest spends input coins for freshly-signed blind tokens
// (spec.md §3). Sig authorizes the request under the coins' spend keys.
type ReissuanceRequest struct {
	Coins       []mint.Coin
	BlindTokens mint.IssuanceRequest
	Sig         multisig.Signature
}

// Digest returns the bytes the multi-signature in Sig must cover: the
// canonical encoding of everything except the signature itself, matching
// original_source's musig::verify(reissuance_req.digest(), ...).
func (r ReissuanceRequest) Digest() ([32]byte, error) {
	unsigned := struct {
		Coins       []mint.Coin
		BlindTokens mint.IssuanceRequest
	}{r.Coins, r.BlindTokens}
	b, err := wire.Marshal(unsigned)
	if err != nil {
		return [32]byte{}, fmt.Errorf("consensus: encoding reissuance digest: %w", err)
	}
	return hash.SumDomain("reissuance.digest", b), nil
}

// PegOutRequest is explicitly unimplemented (spec.md §3/§4.2/§4.4.1).
type PegOutRequest struct {
	Destination []byte
	Amount      uint64
}

// RequestKind tags which variant of ClientRequest is populated.
type RequestKind uint8

const (
	KindPegIn RequestKind = iota
	KindReissuance
	KindPegOut
)

// String names the kind, for log lines (SPEC_FULL.md §5, "dbg_type_name").
func (k RequestKind) String() string {
	switch k {
	case KindPegIn:
		return "peg-in"
	case KindReissuance:
		return "reissuance"
	case KindPegOut:
		return "peg-out"
	default:
		return "unknown"
	}
}

// ClientRequest is the tagged union of spec.md §3: PegIn, Reissuance, or
// PegOut. A plain struct-of-pointers is used instead of an interface so
// that canonical CBOR encoding (and therefore set/hash equality) is
// trivial and unambiguous, per spec.md §9 "Tagged variants over dynamic
// dispatch".
type ClientRequest struct {
	Kind       RequestKind
	PegIn      *PegInRequest      `cbor:",omitempty"`
	Reissuance *ReissuanceRequest `cbor:",omitempty"`
	PegOut     *PegOutRequest     `cbor:",omitempty"`
}

// KindName returns a short name for logging, mirroring the original source's
// cr.dbg_type_name().
func (c ClientRequest) KindName() string { return c.Kind.String() }

// NewPegIn builds a PegIn ClientRequest.
func NewPegIn(req PegInRequest) ClientRequest {
	return ClientRequest{Kind: KindPegIn, PegIn: &req}
}

// NewReissuance builds a Reissuance ClientRequest.
func NewReissuance(req ReissuanceRequest) ClientRequest {
	return ClientRequest{Kind: KindReissuance, Reissuance: &req}
}

// NewPegOut builds a PegOut ClientRequest.
func NewPegOut(req PegOutRequest) ClientRequest {
	return ClientRequest{Kind: KindPegOut, PegOut: &req}
}

// ItemKind tags which variant of ConsensusItem is populated.
type ItemKind uint8

const (
	ItemClientRequest ItemKind = iota
	ItemPartiallySignedRequest
)

// ConsensusItem is either a ClientRequest or a PartiallySignedRequest
// (spec.md §3). Equality and hashing are structural, via its canonical
// wire encoding, so that two peers proposing the same item collapse to
// one ProposalPool entry (spec.md Invariant 3).
type ConsensusItem struct {
	Kind          ItemKind
	ClientRequest *ClientRequest           `cbor:",omitempty"`
	PartialSig    *mint.PartialSigResponse `cbor:",omitempty"`
}

// NewClientRequestItem wraps a ClientRequest as a ConsensusItem.
func NewClientRequestItem(cr ClientRequest) ConsensusItem {
	return ConsensusItem{Kind: ItemClientRequest, ClientRequest: &cr}
}

// NewPartialSigItem wraps a PartialSigResponse as a ConsensusItem.
func NewPartialSigItem(ps mint.PartialSigResponse) ConsensusItem {
	return ConsensusItem{Kind: ItemPartiallySignedRequest, PartialSig: &ps}
}

// key returns the canonical byte encoding used as the ProposalPool's set
// key.
func (ci ConsensusItem) key() (string, error) {
	b, err := wire.Marshal(ci)
	if err != nil {
		return "", fmt.Errorf("consensus: encoding consensus item: %w", err)
	}
	return string(b), nil
}

// Batch is the BFT layer's delivery for one epoch (spec.md §4.4/§6):
// every peer's contribution, in the order that peer's items must be
// applied. Contributions is a map because peer participation per epoch is
// sparse, but EpochProcessor always iterates it in ascending PeerId order
// (spec.md §4.4 step 1) — map iteration order is never relied upon.
type Batch struct {
	Epoch         uint64
	Contributions map[party.ID][]ConsensusItem
}

// AdmissionError is returned by SubmitClientRequest (spec.md §7).
type AdmissionError struct {
	Err error
}

func (e *AdmissionError) Error() string { return e.Err.Error() }
func (e *AdmissionError) Unwrap() error { return e.Err }

// Sentinel admission errors, matching original_source's ClientRequestError
// and spec.md §4.2/§6/§7.
var (
	ErrInvalidTransactionSignature = errors.New("consensus: invalid transaction signature")
	ErrDeniedByMint                = errors.New("consensus: denied by mint (double spend or invalid mint signature)")
	ErrUnimplemented               = errors.New("consensus: request kind not implemented")
	ErrPegInUnverified             = errors.New("consensus: peg-in proof verification not configured")
)
