package tct

// StoredPosition is the header value persisted alongside a tree: either the
// position the next insertion would receive, or Full, recording that the
// tree had no remaining capacity when last persisted.
type StoredPosition struct {
	Position Position
	Full     bool
}

// DeleteRange names a half-open range of positions, below a given height,
// whose stored hashes and commitments are no longer reachable and may be
// erased. It is emitted whenever forgetting coalesces a closed subtree into
// a single hash (see forgetInNode), so a backend can reclaim the storage the
// collapsed subtree used to occupy without having to diff two snapshots.
type DeleteRange struct {
	BelowHeight uint8
	Lo, Hi      Position
}

// HashRecord is a single persisted node hash, keyed by the position of the
// subtree it roots and that subtree's height. essential records whether
// this hash was written because its subtree has no stored children (so the
// hash could never be recomputed from anything else) or because it roots a
// closed tier (block or epoch); either way the backend stores it verbatim.
type HashRecord struct {
	Position  Position
	Height    uint8
	Hash      Hash
	Essential bool
}

// CommitmentRecord is a single persisted witnessed commitment.
type CommitmentRecord struct {
	Position   Position
	Commitment Commitment
}

// Writer is the incremental storage protocol's writer contract: the set of
// primitive operations Persist issues to bring a backend's on-disk image up
// to date with an in-memory Tree, without ever reading back what it wrote
// (an append-and-delete-range log, not a read-modify-write interface).
type Writer interface {
	// AddHash stores a single node hash at (position, height). It must be
	// idempotent: storing the same (position, height, hash) twice is not
	// an error.
	AddHash(position Position, height uint8, hash Hash, essential bool) error

	// AddCommitment stores a newly witnessed commitment at position. It
	// must fail if a commitment is already stored at that position.
	AddCommitment(position Position, commitment Commitment) error

	// DeleteRange erases every stored hash below r.BelowHeight and every
	// stored commitment whose position lies in [r.Lo, r.Hi).
	DeleteRange(r DeleteRange) error

	// SetPosition records the tree's current position header.
	SetPosition(position StoredPosition) error

	// SetForgotten records the tree's current forgotten generation.
	SetForgotten(forgotten uint64) error
}

// Reader is the incremental storage protocol's reader contract, used by
// Rebuild to reconstruct a Tree from a backend's stored image.
type Reader interface {
	Position() (StoredPosition, error)
	Forgotten() (uint64, error)

	// Hashes streams every stored hash record to fn, in any order. It
	// stops and returns fn's error as soon as fn returns one.
	Hashes(fn func(HashRecord) error) error

	// Commitments streams every stored commitment record to fn, in any
	// order. It stops and returns fn's error as soon as fn returns one.
	Commitments(fn func(CommitmentRecord) error) error
}
