package tct

import (
	"errors"
	"fmt"
)

// Capacity errors. Non-fatal: the caller should finalise a tier (end_block
// / end_epoch) before retrying, except for ErrFull which means the whole
// tree is exhausted.
var (
	// ErrBlockFull is returned when the current block cannot accept another
	// commitment (its 8-level quaternary subtree holds 4^8 leaves already)
	// and also, distinctly, when EndBlock is called on a block that never
	// received an insertion — there is nothing to close. Both conditions
	// share this sentinel because both are "this block is not in a state
	// that lets the operation proceed" (see DESIGN.md, Open Question
	// resolutions).
	ErrBlockFull = errors.New("tct: block full")
	// ErrEpochFull is returned when the current epoch's block tier is full,
	// or EndEpoch is called with nothing to close.
	ErrEpochFull = errors.New("tct: epoch full")
	// ErrFull is returned when the tree's top tier is exhausted.
	ErrFull = errors.New("tct: tree full")
)

// ErrDuplicateCommitment is the sentinel wrapped by DuplicateCommitmentError.
var ErrDuplicateCommitment = errors.New("tct: duplicate commitment")

// DuplicateCommitmentError reports an attempted insertion of a commitment
// that already has a live index entry.
type DuplicateCommitmentError struct {
	Commitment Commitment
}

func (e *DuplicateCommitmentError) Error() string {
	return fmt.Sprintf("tct: commitment %x already witnessed", e.Commitment.Bytes())
}

func (e *DuplicateCommitmentError) Unwrap() error { return ErrDuplicateCommitment }

// ErrRootDecode is returned when a 32-byte wire value is not the canonical
// encoding of a field element below the scalar field modulus.
var ErrRootDecode = errors.New("tct: invalid root encoding")

// ErrProofDecode is returned when a serialized proof has the wrong length,
// an invalid field element, or a position inconsistent with its auth path.
var ErrProofDecode = errors.New("tct: invalid proof encoding")

// ErrProofVerify is returned when a proof's computed root disagrees with
// the expected root. Non-fatal: the caller simply rejects the proof.
var ErrProofVerify = errors.New("tct: proof does not verify against root")

// ErrRebuildInvariant is returned when a persisted storage image violates
// an invariant during non-incremental rebuild. Fatal to the rebuild; no
// partial tree is returned.
var ErrRebuildInvariant = errors.New("tct: storage image violates tree invariant")
