package tct

// node is any constituent of a closed (non-frontier) subtree: either a
// hash standing in for structure that was never retained or has since been
// forgotten, a single witnessed commitment leaf, or a structured internal
// node with at least one kept descendant. This mirrors the node /
// hashNode / valueNode split used by this module's reference trie
// implementation, generalized from two variants to the tree's Keep/Hash
// sum type at every height.
type node interface {
	nodeHash() Hash
}

// hashNode is the Insert::Hash(h) variant: a subtree collapsed to its root
// hash, either because it was never witnessed or because every witness
// beneath it has since been forgotten.
type hashNode Hash

func (h hashNode) nodeHash() Hash { return Hash(h) }

// commitmentNode is the Insert::Keep(commitment) variant at height 0: a
// single retained leaf.
type commitmentNode struct {
	commitment Commitment
}

func (c commitmentNode) nodeHash() Hash { return leafHash(c.commitment) }

// internalNode is the Insert::Keep(Complete) variant at height > 0: an
// immutable (except for in-place forgetting) closed subtree. children has
// length 1..4 — there is no padding representation, only padding in
// hashing (missing slots hash against emptyHash). By construction an
// internalNode always has at least one non-hashNode descendant; once the
// last one is forgotten the parent replaces this node with a hashNode
// (invariant 4).
type internalNode struct {
	height    uint8
	children  []node
	hash      Hash
	hashSet   bool
	forgotten uint64
}

func (n *internalNode) nodeHash() Hash {
	if !n.hashSet {
		n.hash = hashChildren(n.height, n.children)
		n.hashSet = true
	}
	return n.hash
}

// hashChildren computes node_hash(height, c0, c1, c2, c3), padding any
// missing slot (beyond len(children), which is always 1..4) with the empty
// hash.
func hashChildren(height uint8, children []node) Hash {
	if len(children) > 4 {
		panic("tct: node has more than 4 children")
	}
	var slots [4]Hash
	for i := range slots {
		slots[i] = emptyHash()
	}
	for i, c := range children {
		slots[i] = c.nodeHash()
	}
	return nodeHashFrom(height, slots)
}

// anyKeep reports whether children contains at least one retained
// (non-hashNode) entry. An internalNode entry always counts, since by
// construction it is only ever built when it itself contains a kept
// descendant.
func anyKeep(children []node) bool {
	for _, c := range children {
		if _, isHash := c.(hashNode); !isHash {
			return true
		}
	}
	return false
}
