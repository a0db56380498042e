package tct

// indexEntry records a witnessed commitment's position and the
// forgotten-generation active when it was inserted (for an entry restored
// by Rebuild, the stored generation). The generation is recorded only; no
// lookup in this package consults it.
type indexEntry struct {
	position  Position
	forgotten uint64
}

// PositionOf returns the position at which c was inserted, if it is
// currently witnessed.
func (t *Tree) PositionOf(c Commitment) (Position, bool) {
	e, ok := t.index[c]
	if !ok {
		return 0, false
	}
	return e.position, true
}

// WitnessedCount returns the number of commitments currently indexed.
func (t *Tree) WitnessedCount() int {
	return len(t.index)
}

// Commitments calls fn for every witnessed commitment and its position, in
// unspecified order.
func (t *Tree) Commitments(fn func(Commitment, Position)) {
	for c, e := range t.index {
		fn(c, e.position)
	}
}

// CommitmentsOrdered calls fn for every witnessed commitment and its
// position, in ascending position order.
func (t *Tree) CommitmentsOrdered(fn func(Commitment, Position)) {
	type pair struct {
		c Commitment
		p Position
	}
	pairs := make([]pair, 0, len(t.index))
	for c, e := range t.index {
		pairs = append(pairs, pair{c, e.position})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j-1].p > pairs[j].p; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
	for _, pr := range pairs {
		fn(pr.c, pr.p)
	}
}
