package tctstore

import "encoding/binary"

// Key schema: a single-byte prefix per record kind, mirroring the
// prefix-based schema used elsewhere in this module's ancestry to avoid
// collisions between unrelated data kinds sharing one keyspace.
const (
	prefixHash       = 'h'
	prefixCommitment = 'c'
	prefixPosition   = 'p'
	prefixForgotten  = 'f'
)

// hashKey is height-major: the height byte fixes a contiguous keyspace per
// height so DeleteRange can erase "every hash of height < BelowHeight" with
// one bounded range-delete per height, without ever touching a record at
// a height it wasn't asked to erase (which position-major keys could not
// guarantee, since nested subtrees of different heights can share the same
// base position).
func hashKey(height uint8, position uint64) []byte {
	k := make([]byte, 0, 10)
	k = append(k, prefixHash, height)
	var posBuf [8]byte
	binary.BigEndian.PutUint64(posBuf[:], position)
	return append(k, posBuf[:]...)
}

func hashKeyPrefix(height uint8) []byte {
	return []byte{prefixHash, height}
}

func decodeHashKey(key []byte) (height uint8, position uint64, ok bool) {
	if len(key) != 10 || key[0] != prefixHash {
		return 0, 0, false
	}
	return key[1], binary.BigEndian.Uint64(key[2:10]), true
}

func commitmentKey(position uint64) []byte {
	k := make([]byte, 0, 9)
	k = append(k, prefixCommitment)
	var posBuf [8]byte
	binary.BigEndian.PutUint64(posBuf[:], position)
	return append(k, posBuf[:]...)
}

func decodeCommitmentKey(key []byte) (position uint64, ok bool) {
	if len(key) != 9 || key[0] != prefixCommitment {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[1:9]), true
}

func positionKey() []byte  { return []byte{prefixPosition} }
func forgottenKey() []byte { return []byte{prefixForgotten} }
