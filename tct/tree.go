package tct

// recentEpochRootsCap bounds the ring buffer of past epoch roots kept for
// cheap "was this a past epoch root" checks, mirroring the bounded history
// the original design keeps for the same purpose.
const recentEpochRootsCap = 16

// Tree is a Tiered Commitment Tree: an append-only, sparse, incrementally
// built Merkle accumulator over note and swap commitments. It is not
// internally synchronised; a single logical owner should hold it, per the
// single-threaded cooperative scheduling model this module assumes.
type Tree struct {
	root *frontierNode

	epoch      uint16
	block      uint16
	commitment uint16

	forgotten uint64
	index     map[Commitment]indexEntry

	recentEpochRoots []Hash
	pendingDeletes   []DeleteRange
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		root:  newFrontierNode(treeRootHeight),
		index: make(map[Commitment]indexEntry),
	}
}

// Position returns the position the next successful Insert would receive.
func (t *Tree) Position() Position {
	return NewPosition(t.epoch, t.block, t.commitment)
}

// Forgotten returns the tree-wide forgotten generation counter.
func (t *Tree) Forgotten() uint64 { return t.forgotten }

// Insert records commitment c at the next position, retaining it as a
// witnessed leaf if w is Keep or recording only its hash if w is Forget.
// It returns ErrDuplicateCommitment if c is already witnessed, and
// ErrBlockFull if the current block has no remaining capacity (the caller
// should call EndBlock and retry).
func (t *Tree) Insert(w Witness, c Commitment) (Position, error) {
	if _, exists := t.index[c]; exists {
		return 0, &DuplicateCommitmentError{Commitment: c}
	}

	pos := t.Position()
	if !t.root.insertLeaf(w, c) {
		return 0, ErrBlockFull
	}

	if w == Keep {
		t.index[c] = indexEntry{position: pos, forgotten: t.forgotten}
	}
	t.commitment++
	return pos, nil
}

// EndBlock finalizes the current block's frontier into a complete
// subtree, even if it is not full (the remainder is padded with empty
// hashes at hash time), and opens a fresh block. It returns ErrBlockFull
// if the current block received no insertions since it was opened (or
// since the tree began/the last EndBlock), and ErrEpochFull if the
// enclosing epoch has no room for another block.
func (t *Tree) EndBlock() error {
	if err := t.root.endTier(blockRootHeight); err != nil {
		return err
	}
	t.block++
	t.commitment = 0
	return nil
}

// EndEpoch finalizes the current epoch (first closing any still-open
// block within it) into a complete subtree and opens a fresh epoch. It
// returns ErrEpochFull if there is nothing to close, or ErrFull if the
// tree's top tier has no room for another epoch.
func (t *Tree) EndEpoch() error {
	switch err := t.root.endTier(blockRootHeight); err {
	case nil:
		t.block++
		t.commitment = 0
	case ErrBlockFull:
		// The open block is empty: nothing to close before the epoch.
	default:
		return err
	}
	epochRoot := t.CurrentEpochRoot()
	if err := t.root.endTier(epochRootHeight); err != nil {
		return err
	}
	t.recordEpochRoot(epochRoot)
	t.epoch++
	t.block = 0
	return nil
}

// InsertBlockRoot installs h as an opaque, unindexed block — content
// observed but deliberately not witnessed — at the next block slot. It
// fails if the current block already has partial content (EndBlock it
// first) or if the epoch has no room for another block.
func (t *Tree) InsertBlockRoot(h Hash) error {
	if t.commitment != 0 {
		return ErrBlockFull
	}
	if err := t.root.insertOpaqueTier(blockRootHeight, h); err != nil {
		return err
	}
	t.block++
	t.commitment = 0
	return nil
}

// InsertEpochRoot installs h as an opaque, unindexed epoch at the next
// epoch slot. It fails if the current epoch already has partial content
// or if the tree has no room for another epoch.
func (t *Tree) InsertEpochRoot(h Hash) error {
	if t.commitment != 0 || t.block != 0 {
		return ErrEpochFull
	}
	if err := t.root.insertOpaqueTier(epochRootHeight, h); err != nil {
		return err
	}
	t.recordEpochRoot(h)
	t.epoch++
	t.block = 0
	return nil
}

// Forget removes commitment c's witness if present, replacing its leaf
// with a bare hash and coalescing any ancestor that becomes entirely
// hash-only, without changing any node's hash (invariant 9). It returns
// whether c was previously witnessed; it is idempotent.
func (t *Tree) Forget(c Commitment) bool {
	entry, ok := t.index[c]
	if !ok {
		return false
	}
	gen := t.forgotten + 1
	forgetFrontier(t.root, entry.position, 0, gen, &t.pendingDeletes)
	t.forgotten = gen
	delete(t.index, c)
	return true
}

// ForgetMany forgets every commitment in cs, returning those that were
// actually witnessed (and so actually forgotten).
func (t *Tree) ForgetMany(cs []Commitment) []Commitment {
	var actually []Commitment
	for _, c := range cs {
		if t.Forget(c) {
			actually = append(actually, c)
		}
	}
	return actually
}

// Root returns the hash of the tree's top frontier, padded with empty
// hashes as necessary.
func (t *Tree) Root() Hash {
	return t.root.nodeHash()
}

// CurrentBlockRoot returns the hash of the block currently being built.
func (t *Tree) CurrentBlockRoot() Hash {
	return t.tierFocusHash(blockRootHeight)
}

// CurrentEpochRoot returns the hash of the epoch currently being built.
func (t *Tree) CurrentEpochRoot() Hash {
	return t.tierFocusHash(epochRootHeight)
}

// tierFocusHash descends the live frontier to the node whose height
// equals target and returns its hash (the empty hash if nothing has been
// opened there yet).
func (t *Tree) tierFocusHash(target uint8) Hash {
	n := t.root
	for n.height > target {
		if n.focus == nil {
			return emptyHash()
		}
		n = n.focus
	}
	return n.nodeHash()
}

func (t *Tree) recordEpochRoot(h Hash) {
	t.recentEpochRoots = append(t.recentEpochRoots, h)
	if len(t.recentEpochRoots) > recentEpochRootsCap {
		t.recentEpochRoots = t.recentEpochRoots[len(t.recentEpochRoots)-recentEpochRootsCap:]
	}
}

// RecentEpochRoots returns up to n of the most recently closed epoch
// roots, most recent last.
func (t *Tree) RecentEpochRoots(n int) []Hash {
	if n > len(t.recentEpochRoots) {
		n = len(t.recentEpochRoots)
	}
	out := make([]Hash, n)
	copy(out, t.recentEpochRoots[len(t.recentEpochRoots)-n:])
	return out
}
