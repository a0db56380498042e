// Package tct implements the Tiered Commitment Tree: a three-tier
// quaternary Merkle accumulator over note and swap commitments, with a
// witness index, a forgetting mechanism and an incremental storage
// protocol.
package tct

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"golang.org/x/crypto/blake2b"
)

// Hash is a single element of the BLS12-377 scalar field. It is either the
// hash of a commitment or internal node, or the distinguished empty hash
// used as padding for absent siblings.
type Hash struct {
	el fr.Element
}

// Commitment is an externally-supplied field element denoting a shielded
// note or swap. It is opaque to the tree.
type Commitment struct {
	el fr.Element
}

// CommitmentFromBytes decodes a 32-byte little-endian field element into a
// Commitment, rejecting values that are not canonically reduced.
func CommitmentFromBytes(b [32]byte) (Commitment, error) {
	el, err := canonicalElement(b)
	if err != nil {
		return Commitment{}, err
	}
	return Commitment{el: el}, nil
}

// CommitmentFromUint64 builds a Commitment directly from a small integer,
// useful for tests and tooling that don't need a real note commitment.
func CommitmentFromUint64(v uint64) Commitment {
	var el fr.Element
	el.SetUint64(v)
	return Commitment{el: el}
}

// Bytes returns the canonical 32-byte little-endian encoding of c.
func (c Commitment) Bytes() [32]byte {
	return elementBytes(c.el)
}

// Bytes returns the canonical 32-byte little-endian encoding of h.
func (h Hash) Bytes() [32]byte {
	return elementBytes(h.el)
}

// HashFromBytes decodes a 32-byte little-endian field element into a Hash,
// rejecting values that are not canonically reduced.
func HashFromBytes(b [32]byte) (Hash, error) {
	el, err := canonicalElement(b)
	if err != nil {
		return Hash{}, err
	}
	return Hash{el: el}, nil
}

// Equal reports whether two hashes are the same field element.
func (h Hash) Equal(o Hash) bool {
	return h.el.Equal(&o.el)
}

// domain separators, derived once at init() from human-readable labels
// the way the rest of this module's crypto stack derives fixed constants
// from labels rather than hand-encoding field elements literally.
var (
	leafDomainSep Hash
	nodeDomainSep Hash
	emptyHashVal  Hash

	permutation *poseidonPermutation
)

func init() {
	leafDomainSep = deriveDomainSeparator("penumbra.tct.leaf")
	nodeDomainSep = deriveDomainSeparator("penumbra.tct.node")
	permutation = newPoseidonPermutation()
	emptyHashVal = computeEmptyHash()
}

func deriveDomainSeparator(label string) Hash {
	digest := blake2b.Sum512([]byte(label))
	var el fr.Element
	el.SetBytes(digest[:])
	return Hash{el: el}
}

// emptyHash is the distinguished field element used for absent siblings.
// It is computed once and memoised at process start; hashing is otherwise
// infallible and has no failure mode.
func emptyHash() Hash {
	return emptyHashVal
}

func computeEmptyHash() Hash {
	var zero fr.Element
	return hashNodeFields(nodeDomainSep.el, zero, zero, zero, zero)
}

// leafHash computes H(DS, commitment) for a single witnessed or
// to-be-forgotten commitment.
func leafHash(c Commitment) Hash {
	var zero, zero2, zero3 fr.Element
	return hashNodeFields(leafDomainSep.el, c.el, zero, zero2, zero3)
}

// nodeHashFrom computes node_hash(height, a, b, c, d) = H(DS + height, a, b,
// c, d) with height folded into the domain separator by field addition, so
// that the per-height domain separation stays branch-free (per-height
// preimage confusion is otherwise possible between nodes at different
// depths).
func nodeHashFrom(height uint8, children [4]Hash) Hash {
	var hFr fr.Element
	hFr.SetUint64(uint64(height))
	var ds fr.Element
	ds.Add(&nodeDomainSep.el, &hFr)
	return hashNodeFields(ds, children[0].el, children[1].el, children[2].el, children[3].el)
}

func hashNodeFields(ds, a, b, c, d fr.Element) Hash {
	state := [5]fr.Element{ds, a, b, c, d}
	permutation.permute(&state)
	return Hash{el: state[0]}
}

func elementBytes(el fr.Element) [32]byte {
	be := el.Bytes()
	var out [32]byte
	for i := range be {
		out[i] = be[len(be)-1-i]
	}
	return out
}

func canonicalElement(b [32]byte) (fr.Element, error) {
	if !isCanonical256(b) {
		return fr.Element{}, ErrRootDecode
	}
	var le [32]byte
	for i := range b {
		le[i] = b[len(b)-1-i]
	}
	var el fr.Element
	el.SetBytes(le[:])
	return el, nil
}

// poseidonPermutation is a width-5 Poseidon-style sponge permutation built
// directly from field arithmetic primitives (Add/Mul/Square) rather than a
// prebuilt Poseidon instantiation, so that the exact round structure is
// under this module's control. Round constants and the MDS matrix are
// derived deterministically from labels at init time and memoised; the
// permutation itself is stateless and safe for concurrent use once built.
type poseidonPermutation struct {
	fullRounds    int
	partialRounds int
	roundConstants [][5]fr.Element
	mds           [5][5]fr.Element
}

const (
	poseidonWidth         = 5
	poseidonFullRounds    = 8
	poseidonPartialRounds = 56
)

func newPoseidonPermutation() *poseidonPermutation {
	p := &poseidonPermutation{
		fullRounds:    poseidonFullRounds,
		partialRounds: poseidonPartialRounds,
	}
	total := p.fullRounds + p.partialRounds
	p.roundConstants = make([][5]fr.Element, total)
	for r := 0; r < total; r++ {
		for i := 0; i < poseidonWidth; i++ {
			label := []byte{'p', 'o', 's', 'e', 'i', 'd', 'o', 'n', '.', 'r', 'c', byte(r), byte(i)}
			digest := blake2b.Sum512(label)
			p.roundConstants[r][i].SetBytes(digest[:])
		}
	}
	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			label := []byte{'p', 'o', 's', 'e', 'i', 'd', 'o', 'n', '.', 'm', 'd', 's', byte(i), byte(j)}
			digest := blake2b.Sum512(label)
			p.mds[i][j].SetBytes(digest[:])
		}
	}
	return p
}

// permute applies the full Poseidon-style permutation to state in place.
func (p *poseidonPermutation) permute(state *[5]fr.Element) {
	round := 0
	half := p.fullRounds / 2
	for r := 0; r < half; r++ {
		p.fullRound(state, round)
		round++
	}
	for r := 0; r < p.partialRounds; r++ {
		p.partialRound(state, round)
		round++
	}
	for r := 0; r < half; r++ {
		p.fullRound(state, round)
		round++
	}
}

func (p *poseidonPermutation) fullRound(state *[5]fr.Element, round int) {
	rc := p.roundConstants[round]
	for i := range state {
		state[i].Add(&state[i], &rc[i])
		sbox(&state[i])
	}
	p.mixLayer(state)
}

func (p *poseidonPermutation) partialRound(state *[5]fr.Element, round int) {
	rc := p.roundConstants[round]
	for i := range state {
		state[i].Add(&state[i], &rc[i])
	}
	sbox(&state[0])
	p.mixLayer(state)
}

func (p *poseidonPermutation) mixLayer(state *[5]fr.Element) {
	var out [5]fr.Element
	for i := 0; i < poseidonWidth; i++ {
		var acc fr.Element
		for j := 0; j < poseidonWidth; j++ {
			var term fr.Element
			term.Mul(&p.mds[i][j], &state[j])
			acc.Add(&acc, &term)
		}
		out[i] = acc
	}
	*state = out
}

// sbox applies x^5, the standard Poseidon non-linear layer for this field.
func sbox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(x, &x4)
}
