package tct

import "sort"

// Rebuild reconstructs a Tree from a backend's stored image. The result is
// bit-for-bit equivalent in externally observable behavior (root, witness
// outputs, position, forgotten) to the tree that produced the image,
// whether that image was written incrementally or in one batch (Property
// 5). It returns ErrRebuildInvariant if the reconstructed root does not
// match the structure implied by the stored records, which would indicate
// a corrupted or inconsistent image.
func Rebuild(r Reader) (*Tree, error) {
	sp, err := r.Position()
	if err != nil {
		return nil, err
	}
	forgotten, err := r.Forgotten()
	if err != nil {
		return nil, err
	}

	hashes := make(map[uint64]Hash)
	commitments := make(map[uint64]Commitment)
	var positions []uint64

	if err := r.Hashes(func(rec HashRecord) error {
		hashes[hashSlotKey(rec.Height, uint64(rec.Position))] = rec.Hash
		positions = append(positions, uint64(rec.Position))
		return nil
	}); err != nil {
		return nil, err
	}
	if err := r.Commitments(func(rec CommitmentRecord) error {
		commitments[uint64(rec.Position)] = rec.Commitment
		positions = append(positions, uint64(rec.Position))
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	built := buildSubtree(treeRootHeight, 0, hashes, commitments, positions)

	t := &Tree{
		forgotten: forgotten,
		index:     make(map[Commitment]indexEntry),
	}

	if sp.Full {
		t.root = closeWhole(built, treeRootHeight)
	} else {
		var digits [totalLevels]int
		for level := 0; level < totalLevels; level++ {
			digits[level] = sp.Position.digit(level)
		}
		t.root = reopenPath(built, treeRootHeight, digits, 0)
		t.epoch = sp.Position.Epoch()
		t.block = sp.Position.Block()
		t.commitment = sp.Position.Commitment()
	}

	for pos, c := range commitments {
		t.index[c] = indexEntry{position: Position(pos), forgotten: forgotten}
	}

	if !t.Root().Equal(built.nodeHash()) {
		return nil, ErrRebuildInvariant
	}
	return t, nil
}

func hashSlotKey(height uint8, base uint64) uint64 {
	return uint64(height)<<56 | base
}

// buildSubtree reconstructs the closed node rooted at (height, base) from
// the stored hash and commitment records, consulting positions (sorted) to
// decide in O(log n) whether any record falls strictly within a candidate
// child's range before recursing into it.
func buildSubtree(height uint8, base uint64, hashes map[uint64]Hash, commitments map[uint64]Commitment, positions []uint64) node {
	if height == 0 {
		if c, ok := commitments[base]; ok {
			return commitmentNode{commitment: c}
		}
		if h, ok := hashes[hashSlotKey(0, base)]; ok {
			return hashNode(h)
		}
		return hashNode(emptyHash())
	}

	span := uint64(1) << (2 * uint(height))
	childSpan := span / 4

	var children []node
	for i := 0; i < 4; i++ {
		childBase := base + uint64(i)*childSpan
		if !rangeHasContent(positions, childBase, childBase+childSpan) {
			break
		}
		children = append(children, buildSubtree(height-1, childBase, hashes, commitments, positions))
	}

	key := hashSlotKey(height, base)
	if len(children) == 0 {
		if h, ok := hashes[key]; ok {
			return hashNode(h)
		}
		return hashNode(emptyHash())
	}
	n := &internalNode{height: height, children: children}
	if h, ok := hashes[key]; ok {
		n.hash, n.hashSet = h, true
	}
	return n
}

// rangeHasContent reports whether any stored record's position falls in
// [lo, hi).
func rangeHasContent(sorted []uint64, lo, hi uint64) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= lo })
	return i < len(sorted) && sorted[i] < hi
}

// reopenPath converts the single branch of the built tree that leads to
// the next insertion point (the header's stored position) back into a live
// frontierNode spine, leaving every other branch as plain, already-closed
// node values — exactly the shape a live Tree keeps during normal
// operation, where only the current path from the root down to the
// in-progress leaf is ever mutable.
func reopenPath(n node, height uint8, digits [totalLevels]int, level int) *frontierNode {
	f := newFrontierNode(height)
	d := digits[level]
	if in, ok := n.(*internalNode); ok {
		closed := in.children
		if d < len(closed) {
			closed = closed[:d]
		}
		f.children = append(f.children, closed...)
	}
	if height == 1 {
		return f
	}
	f.focus = reopenPath(descendChild(n, d), height-1, digits, level+1)
	return f
}

func descendChild(n node, digit int) node {
	in, ok := n.(*internalNode)
	if !ok || digit >= len(in.children) {
		return hashNode(emptyHash())
	}
	return in.children[digit]
}

// closeWhole represents a tree rebuilt from an image stored at exactly its
// capacity limit: the root's 4 children are already closed and its focus is
// left nil. insertLeaf treats 4 closed children with a nil focus as full
// without allocating a fresh acceptor, so no further insertion succeeds
// until a tier is explicitly ended to make room.
func closeWhole(n node, height uint8) *frontierNode {
	f := newFrontierNode(height)
	if in, ok := n.(*internalNode); ok {
		f.children = append(f.children, in.children...)
	}
	return f
}
