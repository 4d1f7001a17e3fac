// Package wire provides the canonical, deterministic binary encoding
// spec.md §6 requires for ConsensusItem, ClientRequest, Coin,
// PartialSigResponse and SigResponse: two peers proposing the same item
// must serialize to the same bytes so that set/hash equality agree with
// wire equality.
package wire

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	encMode = m

	dopts := cbor.DecOptions{}
	dm, err := dopts.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Marshal encodes v using CBOR's canonical (RFC 8949 §4.2.1-ish, via
// fxamacker/cbor's CanonicalEncOptions) form: map keys sorted, shortest-form
// integers, no indefinite-length items. This is what pkg/protocol/handler.go
// in the teacher repo relies on cbor.Marshal for when serializing round
// messages; here it backs the consensus layer's set/hash semantics.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}
