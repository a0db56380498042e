package tct

import "testing"

// memWriter and memReader are minimal in-package fakes of Writer/Reader so
// persist/rebuild round trips can be tested without importing tctstore
// (which itself imports tct, and so cannot be imported back from here).
type memWriter struct {
	hashes      map[uint64]HashRecord
	commitments map[uint64]CommitmentRecord
	position    StoredPosition
	forgotten   uint64
}

func newMemWriter() *memWriter {
	return &memWriter{
		hashes:      make(map[uint64]HashRecord),
		commitments: make(map[uint64]CommitmentRecord),
	}
}

func slotKey(height uint8, position Position) uint64 {
	return uint64(height)<<56 | uint64(position)
}

func (w *memWriter) AddHash(position Position, height uint8, hash Hash, essential bool) error {
	w.hashes[slotKey(height, position)] = HashRecord{Position: position, Height: height, Hash: hash, Essential: essential}
	return nil
}

func (w *memWriter) AddCommitment(position Position, commitment Commitment) error {
	w.commitments[uint64(position)] = CommitmentRecord{Position: position, Commitment: commitment}
	return nil
}

func (w *memWriter) DeleteRange(r DeleteRange) error {
	for k, rec := range w.hashes {
		if rec.Height < r.BelowHeight && rec.Position >= r.Lo && rec.Position < r.Hi {
			delete(w.hashes, k)
		}
	}
	for k, rec := range w.commitments {
		if rec.Position >= r.Lo && rec.Position < r.Hi {
			delete(w.commitments, k)
		}
	}
	return nil
}

func (w *memWriter) SetPosition(p StoredPosition) error { w.position = p; return nil }
func (w *memWriter) SetForgotten(f uint64) error        { w.forgotten = f; return nil }

func (w *memWriter) Position() (StoredPosition, error) { return w.position, nil }
func (w *memWriter) Forgotten() (uint64, error)         { return w.forgotten, nil }

func (w *memWriter) Hashes(fn func(HashRecord) error) error {
	for _, r := range w.hashes {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (w *memWriter) Commitments(fn func(CommitmentRecord) error) error {
	for _, r := range w.commitments {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func buildSampleTree(t *testing.T) *Tree {
	t.Helper()
	tree := New()
	for i := 0; i < 10; i++ {
		if _, err := tree.Insert(Keep, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if err := tree.EndBlock(); err != nil {
		t.Fatalf("EndBlock: %v", err)
	}
	for i := 10; i < 15; i++ {
		w := Keep
		if i%2 == 0 {
			w = Forget
		}
		if _, err := tree.Insert(w, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	tree.Forget(CommitmentFromUint64(3))
	return tree
}

func TestPersistRebuildRoundTrip(t *testing.T) {
	tree := buildSampleTree(t)
	wantRoot := tree.Root()
	wantPosition := tree.Position()
	wantForgotten := tree.Forgotten()

	w := newMemWriter()
	if err := tree.Persist(w); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	rebuilt, err := Rebuild(w)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if !rebuilt.Root().Equal(wantRoot) {
		t.Fatalf("rebuilt root = %x, want %x", rebuilt.Root().Bytes(), wantRoot.Bytes())
	}
	if rebuilt.Position() != wantPosition {
		t.Fatalf("rebuilt position = %v, want %v", rebuilt.Position(), wantPosition)
	}
	if rebuilt.Forgotten() != wantForgotten {
		t.Fatalf("rebuilt forgotten = %d, want %d", rebuilt.Forgotten(), wantForgotten)
	}

	for i := 0; i < 15; i++ {
		c := CommitmentFromUint64(uint64(i))
		_, wantOK := tree.Witness(c)
		_, gotOK := rebuilt.Witness(c)
		if wantOK != gotOK {
			t.Fatalf("commitment %d witness presence = %v, want %v", i, gotOK, wantOK)
		}
	}
}

func TestPersistIncrementalMatchesBatch(t *testing.T) {
	incremental := New()
	wIncremental := newMemWriter()
	for i := 0; i < 20; i++ {
		if _, err := incremental.Insert(Keep, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if (i+1)%5 == 0 {
			if err := incremental.Persist(wIncremental); err != nil {
				t.Fatalf("incremental persist at %d: %v", i, err)
			}
		}
	}
	if err := incremental.Persist(wIncremental); err != nil {
		t.Fatalf("final incremental persist: %v", err)
	}

	batch := New()
	for i := 0; i < 20; i++ {
		if _, err := batch.Insert(Keep, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("batch insert %d: %v", i, err)
		}
	}
	wBatch := newMemWriter()
	if err := batch.Persist(wBatch); err != nil {
		t.Fatalf("batch persist: %v", err)
	}

	rebuiltIncremental, err := Rebuild(wIncremental)
	if err != nil {
		t.Fatalf("rebuild incremental: %v", err)
	}
	rebuiltBatch, err := Rebuild(wBatch)
	if err != nil {
		t.Fatalf("rebuild batch: %v", err)
	}

	if !rebuiltIncremental.Root().Equal(rebuiltBatch.Root()) {
		t.Fatal("incremental and batch persistence produced different roots (Property 6 violated)")
	}
}

// TestInsertLeafTreatsClosedQuadAsFullWithoutFocus exercises the defensive
// guard in insertLeaf directly: a frontierNode holding four closed children
// with no focus allocated must report itself full rather than silently
// opening a fresh acceptor. Ordinary insertion reaches this state whenever a
// node's fourth child closes, and Rebuild's closeWhole path produces it from
// a stored image marked Full; here the state is set up directly at the
// frontier level.
func TestInsertLeafTreatsClosedQuadAsFullWithoutFocus(t *testing.T) {
	n := newFrontierNode(2)
	for i := 0; i < 4; i++ {
		n.children = append(n.children, hashNode(emptyHash()))
	}
	if n.focus != nil {
		t.Fatal("test setup: expected nil focus")
	}
	if n.insertLeaf(Keep, CommitmentFromUint64(0)) {
		t.Fatal("insertLeaf on 4 closed children with nil focus succeeded, want false")
	}
}

func TestRebuildFullImageClosesWithoutFocus(t *testing.T) {
	tree := New()
	for i := 0; i < tierSpan; i++ {
		if _, err := tree.Insert(Keep, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if err := tree.EndBlock(); err != nil {
		t.Fatalf("EndBlock: %v", err)
	}

	w := newMemWriter()
	if err := tree.Persist(w); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	rebuilt, err := Rebuild(w)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !rebuilt.Root().Equal(tree.Root()) {
		t.Fatal("rebuilt root disagrees with original root")
	}
	if _, err := rebuilt.Insert(Keep, CommitmentFromUint64(tierSpan)); err != nil {
		t.Fatalf("insert into rebuilt tree after EndBlock: %v", err)
	}
}
