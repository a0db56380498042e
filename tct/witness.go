package tct

// Proof is the authentication path for a witnessed commitment: enough
// sibling hashes to recompute the tree root starting from leaf_hash(c).
// It additionally carries the commitment's own position, matching the
// original design's Proof struct (see SPEC_FULL.md §4).
type Proof struct {
	Commitment Commitment
	Position   Position
	AuthPath   [totalLevels][3]Hash
}

// Witness walks the path to c's recorded position, collecting the three
// non-path sibling hashes at every level (padded with the empty hash
// where a sibling slot is absent), and returns the resulting Proof. It
// returns false if c is not currently witnessed.
func (t *Tree) Witness(c Commitment) (Proof, bool) {
	entry, ok := t.index[c]
	if !ok {
		return Proof{}, false
	}
	var path [totalLevels][3]Hash
	if !proofPathFrontier(t.root, entry.position, 0, &path) {
		return Proof{}, false
	}
	return Proof{Commitment: c, Position: entry.position, AuthPath: path}, true
}

func proofPathFrontier(n *frontierNode, pos Position, level int, path *[totalLevels][3]Hash) bool {
	d := pos.digit(level)
	path[level] = siblingTriple(frontierChildHash(n, 0), frontierChildHash(n, 1), frontierChildHash(n, 2), frontierChildHash(n, 3), d)

	closed := len(n.children)
	switch {
	case d < closed:
		return proofPathInNode(n.children[d], pos, level+1, path)
	case d == closed:
		if n.focus == nil || n.focus.isEmpty() {
			return false
		}
		return proofPathFrontier(n.focus, pos, level+1, path)
	default:
		return false
	}
}

func proofPathInNode(n node, pos Position, level int, path *[totalLevels][3]Hash) bool {
	switch v := n.(type) {
	case hashNode:
		return false
	case commitmentNode:
		return true
	case *internalNode:
		d := pos.digit(level)
		path[level] = siblingTriple(internalChildHash(v, 0), internalChildHash(v, 1), internalChildHash(v, 2), internalChildHash(v, 3), d)
		if d >= len(v.children) {
			return false
		}
		return proofPathInNode(v.children[d], pos, level+1, path)
	default:
		return false
	}
}

func frontierChildHash(n *frontierNode, idx int) Hash {
	closed := len(n.children)
	switch {
	case idx < closed:
		return n.children[idx].nodeHash()
	case idx == closed:
		if n.focus != nil && !n.focus.isEmpty() {
			return n.focus.nodeHash()
		}
		return emptyHash()
	default:
		return emptyHash()
	}
}

func internalChildHash(n *internalNode, idx int) Hash {
	if idx < len(n.children) {
		return n.children[idx].nodeHash()
	}
	return emptyHash()
}

func siblingTriple(h0, h1, h2, h3 Hash, pathDigit int) [3]Hash {
	all := [4]Hash{h0, h1, h2, h3}
	var out [3]Hash
	j := 0
	for i, h := range all {
		if i == pathDigit {
			continue
		}
		out[j] = h
		j++
	}
	return out
}

// Verify recomputes the root implied by the proof and reports whether it
// matches root. Starting from leaf_hash(commitment), at each level the
// four children are reassembled by inserting the running hash at the
// path's digit and the three siblings in the other slots, then
// node_hash(height, ...) is computed; after all levels the result must
// equal root (invariant 10).
func (p Proof) Verify(root Hash) error {
	running := leafHash(p.Commitment)
	for level := totalLevels - 1; level >= 0; level-- {
		height := heightAtLevel(level)
		digit := p.Position.digit(level)
		siblings := p.AuthPath[level]

		var slots [4]Hash
		j := 0
		for i := 0; i < 4; i++ {
			if i == digit {
				slots[i] = running
				continue
			}
			slots[i] = siblings[j]
			j++
		}
		running = nodeHashFrom(height, slots)
	}
	if !running.Equal(root) {
		return ErrProofVerify
	}
	return nil
}
