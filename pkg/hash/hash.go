// Package hash provides the domain-separated digest primitives used to
// derive RequestIds and reissuance digests, and to hash issuance payloads
// before they enter a threshold-signing computation.
package hash

import "github.com/zeebo/blake3"

// Size is the digest length used throughout the module.
const Size = 32

// Digest is a fixed-size blake3 digest.
type Digest [Size]byte

// Sum hashes data with no domain separation.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// SumDomain hashes data under a domain tag, so that the same bytes hashed
// for two different purposes (e.g. a RequestId vs. a multisig digest)
// never collide. This mirrors the teacher's keyed-hashing idiom in
// protocols/frost/sign/round1.go (blake3.DeriveKey/NewKeyed), simplified
// to the single-writer case this module needs.
func SumDomain(domain string, data ...[]byte) Digest {
	h := blake3.New()
	_, _ = h.Write([]byte(domain))
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Bytes returns d as a byte slice.
func (d Digest) Bytes() []byte { return d[:] }

// String returns a short hex prefix, suitable for log lines.
func (d Digest) String() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 0; i < 8; i++ {
		buf[i*2] = hextable[d[i]>>4]
		buf[i*2+1] = hextable[d[i]&0x0f]
	}
	return string(buf)
}
