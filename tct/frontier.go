package tct

// Witness is the caller-supplied retention flag at insertion time: Keep
// retains the commitment as a witnessed leaf; Forget installs it as a
// Hash(leaf_hash(commitment)) leaf directly, so the tree records that the
// commitment was observed without ever indexing it.
type Witness bool

const (
	Keep   Witness = true
	Forget Witness = false
)

// frontierNode is the mutable right-spine representation of a not-yet-
// closed subtree at a given height (1..24). It holds 0..4 already-closed
// children plus, while it has not yet reached capacity, an optional focus
// at height > 1 (the frontier at height-1 currently accepting insertions).
// At height 1 there is no focus at all: a leaf's own capacity is exactly
// one commitment, so the four leaf slots are themselves ordinary closed
// children (commitmentNode or hashNode, i.e. height 0) appended directly
// to children as they are filled, with no further recursive frontier
// beneath them. This keeps every tier exactly 8 levels of fan-out-4 above
// its leaves (4^8 commitments per block), matching the tree's quaternary
// position digits one-for-one.
//
// The cached hash slot is cleared on any mutation reachable from this node
// (insertion, forgetting) but is never invalidated by forgetting alone
// once the subtree is closed (see internalNode), matching the hash cache
// policy: frontier hashes are cleared on structural mutation of the focus,
// which is the only place mutation occurs while still open.
type frontierNode struct {
	height uint8

	children []node // closed siblings, len 0..4; at height 1, leaves themselves

	focus *frontierNode // valid when height > 1 and len(children) < 4

	hash      Hash
	hashSet   bool
	forgotten uint64
}

func newFrontierNode(height uint8) *frontierNode {
	return &frontierNode{height: height}
}

// isTierParent reports whether a frontier node at this height holds a
// tier-root focus (the block root at height 8 or the epoch root at height
// 16) that must be closed explicitly via EndBlock/EndEpoch rather than
// auto-rolled-over when full.
func isTierParent(height uint8) bool {
	return height == blockRootHeight+1 || height == epochRootHeight+1
}

const (
	blockRootHeight = levelsPerTier
	epochRootHeight = 2 * levelsPerTier
	treeRootHeight  = 3 * levelsPerTier
)

// insertLeaf attempts to install (witness, commitment) at the next
// available leaf slot beneath n. It returns false when n has no room:
// either this subtree is a tier parent whose focus is already full (the
// caller must EndBlock/EndEpoch), or n's own 4 children slots are
// exhausted (propagated to n's parent as "n is full").
func (n *frontierNode) insertLeaf(w Witness, c Commitment) bool {
	n.hashSet = false

	if n.height == 1 {
		if len(n.children) >= 4 {
			return false
		}
		if w == Keep {
			n.children = append(n.children, commitmentNode{commitment: c})
		} else {
			n.children = append(n.children, hashNode(leafHash(c)))
		}
		return true
	}

	if n.focus == nil {
		// A node rebuilt from a fully exhausted stored image, or one that
		// has filled its last slot during ordinary operation (below),
		// already holds 4 closed children with no focus allocated; treat
		// that as full rather than handing out a fresh acceptor that has
		// no slot left to occupy.
		if len(n.children) >= 4 {
			return false
		}
		n.focus = newFrontierNode(n.height - 1)
	}
	if n.focus.insertLeaf(w, c) {
		return true
	}

	if isTierParent(n.height) {
		return false
	}
	if len(n.children) >= 3 {
		// The focus about to close is n's 4th and final child: there is no
		// slot left for a further focus, so n is now entirely closed and
		// must report full rather than opening one anyway (which would
		// give n five child subtrees instead of four).
		n.children = append(n.children, n.focus.finalizeSelf())
		n.focus = nil
		return false
	}

	n.children = append(n.children, n.focus.finalizeSelf())
	n.focus = newFrontierNode(n.height - 1)
	return n.focus.insertLeaf(w, c)
}

// isEmpty reports whether nothing has ever been inserted beneath n.
func (n *frontierNode) isEmpty() bool {
	if len(n.children) != 0 {
		return false
	}
	return n.focus == nil || n.focus.isEmpty()
}

// finalizeSelf closes n into its Insert<Complete> representation: Hash(root)
// if no retained descendant remains anywhere beneath it, Keep(Complete)
// otherwise. It does not mutate n — n remains live and may continue to
// accept insertions; this lets the same construction serve both a real
// tier close (whose result is installed into the parent's children) and a
// read-only hash query.
func (n *frontierNode) finalizeSelf() node {
	children := make([]node, 0, 4)
	children = append(children, n.children...)

	if n.focus != nil && !n.focus.isEmpty() {
		children = append(children, n.focus.finalizeSelf())
	}

	if len(children) == 0 {
		return hashNode(emptyHash())
	}
	if !anyKeep(children) {
		return hashNode(hashChildren(n.height, children))
	}
	return &internalNode{height: n.height, children: children}
}

// nodeHash returns n's cached hash, recomputing it if this node or any of
// its descendants has been mutated since the last call.
func (n *frontierNode) nodeHash() Hash {
	if n.hashSet {
		return n.hash
	}
	n.hash = n.finalizeSelf().nodeHash()
	n.hashSet = true
	return n.hash
}

// endTier force-closes the open subtree at the given target height (8 for
// a block, 16 for an epoch) even if it is not full, padding the remainder
// with empty hashes at hash time. It returns ErrBlockFull/ErrEpochFull if
// there is nothing open to close, or if the parent tier has no room for
// the newly-closed child.
func (n *frontierNode) endTier(target uint8) error {
	if n.height == target+1 {
		if n.focus == nil || n.focus.isEmpty() {
			return fullErrorFor(target)
		}
		if len(n.children) >= 4 {
			return parentFullError(n.height)
		}
		n.children = append(n.children, n.focus.finalizeSelf())
		if len(n.children) >= 4 {
			// That was the 4th and final child slot: no room remains for
			// another focus, so n is now sealed until its own parent rolls
			// it over (mirrors the insertLeaf capacity cap above).
			n.focus = nil
		} else {
			n.focus = newFrontierNode(target)
		}
		n.hashSet = false
		return nil
	}

	if n.focus == nil {
		n.focus = newFrontierNode(n.height - 1)
	}
	if err := n.focus.endTier(target); err != nil {
		return err
	}
	n.hashSet = false
	return nil
}

// insertOpaqueTier installs h as an already-closed child at the given
// target tier-root height, bypassing any frontier construction entirely —
// used for insert_block_root/insert_epoch_root, which record content
// observed but deliberately not indexed. It fails if the tier currently
// open at that height already holds partial content, since installing an
// opaque root there would silently discard it.
func (n *frontierNode) insertOpaqueTier(target uint8, h Hash) error {
	if n.height == target+1 {
		if n.focus != nil && !n.focus.isEmpty() {
			return fullErrorFor(target)
		}
		if len(n.children) >= 4 {
			return parentFullError(n.height)
		}
		n.children = append(n.children, hashNode(h))
		if len(n.children) >= 4 {
			// 4th and final child slot: leave no focus (as in endTier).
			n.focus = nil
		} else {
			n.focus = newFrontierNode(target)
		}
		n.hashSet = false
		return nil
	}

	if n.focus == nil {
		n.focus = newFrontierNode(n.height - 1)
	}
	if err := n.focus.insertOpaqueTier(target, h); err != nil {
		return err
	}
	n.hashSet = false
	return nil
}

// fullErrorFor reports the error for "nothing open to close" at the given
// target tier-root height.
func fullErrorFor(targetHeight uint8) error {
	switch targetHeight {
	case blockRootHeight:
		return ErrBlockFull
	case epochRootHeight:
		return ErrEpochFull
	default:
		return ErrFull
	}
}

// parentFullError reports the error for "the enclosing tier has no room
// for another closed child" at the given tier-parent height (9 or 17).
func parentFullError(parentHeight uint8) error {
	switch parentHeight {
	case blockRootHeight + 1:
		return ErrEpochFull
	default:
		return ErrFull
	}
}
