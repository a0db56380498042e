package tct

// forgetFrontier walks into a live frontier node at the given level,
// looking for the slot addressed by pos's digit there. It mutates the
// tree in place, converting the target leaf's Keep representation to
// Hash, and stamps the new forgotten-generation on every node it touches.
// Coalescing an already-closed child that becomes entirely hash-only is
// handled on the way back up (see forgetInNode); a still-open focus is
// never coalesced away since it is not a closed child slot at all, only a
// live frontier that will naturally finalize to Hash later if nothing in
// it remains retained.
func forgetFrontier(n *frontierNode, pos Position, level int, gen uint64, deletes *[]DeleteRange) bool {
	d := pos.digit(level)
	closed := len(n.children)

	var removed bool
	switch {
	case d < closed:
		replacement, rem := forgetInNode(n.children[d], pos, level+1, gen, deletes)
		if rem {
			n.children[d] = replacement
			removed = true
		}
	case d == closed:
		if n.focus != nil && !n.focus.isEmpty() {
			removed = forgetFrontier(n.focus, pos, level+1, gen, deletes)
		}
	}

	if removed {
		n.hashSet = false
		n.forgotten = gen
	}
	return removed
}

// forgetInNode forgets within an already-closed subtree (internalNode or
// commitmentNode). It returns the node's possibly-collapsed replacement —
// a hashNode when no retained descendant remains, matching invariant 4 —
// and whether anything was actually un-kept. Every time a commitment leaf
// or an internalNode collapses to a hashNode, the position range and height
// it used to occupy is appended to deletes, for the storage layer's
// delete_range emission (§4.10).
func forgetInNode(n node, pos Position, level int, gen uint64, deletes *[]DeleteRange) (node, bool) {
	switch v := n.(type) {
	case hashNode:
		return n, false
	case commitmentNode:
		*deletes = append(*deletes, rangeForPosition(pos, 0))
		return hashNode(leafHash(v.commitment)), true
	case *internalNode:
		d := pos.digit(level)
		if d >= len(v.children) {
			return n, false
		}
		child, rem := forgetInNode(v.children[d], pos, level+1, gen, deletes)
		if !rem {
			return n, false
		}
		v.children[d] = child
		v.forgotten = gen
		if !anyKeep(v.children) {
			h := v.nodeHash()
			*deletes = append(*deletes, rangeForPosition(pos, v.height))
			return hashNode(h), true
		}
		return v, true
	default:
		return n, false
	}
}

// rangeForPosition computes the half-open position range covered by the
// subtree of the given height that contains pos.
func rangeForPosition(pos Position, height uint8) DeleteRange {
	span := uint64(1) << (2 * uint(height))
	lo := uint64(pos) &^ (span - 1)
	return DeleteRange{BelowHeight: height, Lo: Position(lo), Hi: Position(lo + span)}
}
