package tct

import "errors"

// Persist writes every essential hash and witnessed commitment currently
// reachable from t to w, drains any delete_range entries accumulated by
// Forget since the last call, and finally writes the tree's current
// position and forgotten header.
//
// AddHash is idempotent for a fixed key, and an AddCommitment that the
// backend rejects with ErrDuplicateCommitment is treated as a record it
// already holds, so calling Persist repeatedly against the same backend as
// the tree grows adds only the records the backend didn't already have; the
// resulting stored image is identical whether Persist is called after every
// block or once at the end (Property 6, incremental == batch).
func (t *Tree) Persist(w Writer) error {
	emitted := make(map[Commitment]struct{})
	if err := persistFrontier(t.root, 0, w, emitted); err != nil {
		return err
	}
	for _, r := range t.pendingDeletes {
		if err := w.DeleteRange(r); err != nil {
			return err
		}
	}
	t.pendingDeletes = nil

	sp := StoredPosition{Position: t.Position()}
	if err := w.SetPosition(sp); err != nil {
		return err
	}
	return w.SetForgotten(t.forgotten)
}

// isTierBoundaryHeight reports whether height roots a block, an epoch or
// the whole tree — the three heights whose hash is written even though
// their children are also stored, since re-deriving a tier root from
// scratch on every read would be wasteful.
func isTierBoundaryHeight(height uint8) bool {
	return height == blockRootHeight || height == epochRootHeight || height == treeRootHeight
}

func persistFrontier(n *frontierNode, base uint64, w Writer, emitted map[Commitment]struct{}) error {
	span := uint64(1) << (2 * uint(n.height))
	childSpan := span / 4

	for i, c := range n.children {
		childBase := base + uint64(i)*childSpan
		if err := persistInNode(c, childBase, n.height-1, w, emitted); err != nil {
			return err
		}
	}

	// At height 1, every leaf that has ever been inserted is already one of
	// n.children (handled by the loop above) and focus is always nil: a
	// leaf's own capacity is one commitment, so there is nothing further
	// to open beneath it.
	if n.focus != nil && !n.focus.isEmpty() {
		childBase := base + uint64(len(n.children))*childSpan
		if err := persistFrontier(n.focus, childBase, w, emitted); err != nil {
			return err
		}
	}

	if isTierBoundaryHeight(n.height) {
		if err := w.AddHash(Position(base), n.height, n.nodeHash(), true); err != nil {
			return err
		}
	}
	return nil
}

func persistInNode(n node, base uint64, height uint8, w Writer, emitted map[Commitment]struct{}) error {
	switch v := n.(type) {
	case hashNode:
		return w.AddHash(Position(base), height, Hash(v), true)
	case commitmentNode:
		if _, done := emitted[v.commitment]; done {
			return nil
		}
		emitted[v.commitment] = struct{}{}
		if err := w.AddCommitment(Position(base), v.commitment); err != nil && !errors.Is(err, ErrDuplicateCommitment) {
			return err
		}
		return nil
	case *internalNode:
		span := uint64(1) << (2 * uint(height))
		childSpan := span / 4
		for i, c := range v.children {
			if err := persistInNode(c, base+uint64(i)*childSpan, height-1, w, emitted); err != nil {
				return err
			}
		}
		if isTierBoundaryHeight(height) {
			if err := w.AddHash(Position(base), height, v.nodeHash(), true); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
