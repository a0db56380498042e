package tct

import (
	"errors"
	"testing"
)

func TestScenarioASingleWitness(t *testing.T) {
	tree := New()
	c1 := CommitmentFromUint64(1)
	p1, err := tree.Insert(Keep, c1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p1 != NewPosition(0, 0, 0) {
		t.Fatalf("p1 = %v, want 0.0.0", p1)
	}
	root := tree.Root()
	proof, ok := tree.Witness(c1)
	if !ok {
		t.Fatal("witness(C1) = false, want true")
	}
	if err := proof.Verify(root); err != nil {
		t.Fatalf("proof did not verify: %v", err)
	}
}

func TestScenarioBForgottenLeafPreservesRoot(t *testing.T) {
	tree := New()
	c1 := CommitmentFromUint64(1)
	c2 := CommitmentFromUint64(2)

	if _, err := tree.Insert(Keep, c1); err != nil {
		t.Fatalf("insert c1: %v", err)
	}
	if _, err := tree.Insert(Forget, c2); err != nil {
		t.Fatalf("insert c2: %v", err)
	}

	before := tree.Root()
	if !tree.Forget(c1) {
		t.Fatal("forget(c1) = false, want true")
	}
	after := tree.Root()
	if !before.Equal(after) {
		t.Fatal("root changed across forget (invariant 9 violated)")
	}
	if _, ok := tree.Witness(c1); ok {
		t.Fatal("witness(c1) still present after forget")
	}
	if _, ok := tree.Witness(c2); ok {
		t.Fatal("witness(c2) present for a Forget-inserted commitment")
	}
}

func TestForgetIdempotent(t *testing.T) {
	tree := New()
	c1 := CommitmentFromUint64(1)
	tree.Insert(Keep, c1)

	first := tree.Forget(c1)
	second := tree.Forget(c1)
	if !first || second {
		t.Fatalf("forget(c1) sequence = (%v, %v), want (true, false)", first, second)
	}
}

func TestScenarioCBlockBoundary(t *testing.T) {
	tree := New()
	c1 := CommitmentFromUint64(1)
	c2 := CommitmentFromUint64(2)

	p1, _ := tree.Insert(Keep, c1)
	blockRootBefore := tree.CurrentBlockRoot()

	if err := tree.EndBlock(); err != nil {
		t.Fatalf("EndBlock: %v", err)
	}

	p2, err := tree.Insert(Keep, c2)
	if err != nil {
		t.Fatalf("insert c2: %v", err)
	}
	if p2.Block() != p1.Block()+1 {
		t.Fatalf("p2.Block() = %d, want %d", p2.Block(), p1.Block()+1)
	}
	if p2.Commitment() != 0 {
		t.Fatalf("p2.Commitment() = %d, want 0", p2.Commitment())
	}
	blockRootAfter := tree.CurrentBlockRoot()
	if blockRootBefore.Equal(blockRootAfter) {
		t.Fatal("current_block_root did not change across the block boundary")
	}
}

func TestScenarioDInsertedBlockRoot(t *testing.T) {
	tree := New()
	opaque := leafHash(CommitmentFromUint64(999))

	if err := tree.InsertBlockRoot(opaque); err != nil {
		t.Fatalf("InsertBlockRoot: %v", err)
	}
	c1 := CommitmentFromUint64(1)
	p, err := tree.Insert(Keep, c1)
	if err != nil {
		t.Fatalf("insert after InsertBlockRoot: %v", err)
	}
	if p.Block() != 1 {
		t.Fatalf("p.Block() = %d, want 1", p.Block())
	}
	if p.Commitment() != 0 {
		t.Fatalf("p.Commitment() = %d, want 0", p.Commitment())
	}

	plain := New()
	plain.Insert(Keep, c1)
	if tree.Root().Equal(plain.Root()) {
		t.Fatal("root did not change when the first block was opaque instead of containing C1 directly")
	}
}

func TestScenarioFCapacityOverflow(t *testing.T) {
	tree := New()
	for i := 0; i < tierSpan; i++ {
		if _, err := tree.Insert(Keep, CommitmentFromUint64(uint64(i))); err != nil {
			t.Fatalf("insert %d: unexpected error %v", i, err)
		}
	}
	if _, err := tree.Insert(Keep, CommitmentFromUint64(tierSpan)); err != ErrBlockFull {
		t.Fatalf("overflowing insert = %v, want ErrBlockFull", err)
	}
	if err := tree.EndBlock(); err != nil {
		t.Fatalf("EndBlock after full block: %v", err)
	}
	p, err := tree.Insert(Keep, CommitmentFromUint64(tierSpan))
	if err != nil {
		t.Fatalf("insert after EndBlock: %v", err)
	}
	if p.Commitment() != 0 || p.Block() != 1 {
		t.Fatalf("p = %v, want commitment=0 block=1", p)
	}
}

func TestMonotonePositions(t *testing.T) {
	tree := New()
	var last Position
	for i := 0; i < 100; i++ {
		p, err := tree.Insert(Keep, CommitmentFromUint64(uint64(i)))
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if i > 0 && p <= last {
			t.Fatalf("position did not increase: %v <= %v", p, last)
		}
		last = p
		if i%37 == 0 {
			_ = tree.EndBlock()
		}
	}
}

func TestDuplicateCommitmentIsAnError(t *testing.T) {
	tree := New()
	c := CommitmentFromUint64(5)
	if _, err := tree.Insert(Keep, c); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := tree.Insert(Keep, c)
	if err == nil {
		t.Fatal("duplicate insert succeeded, want error")
	}
	var dup *DuplicateCommitmentError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want *DuplicateCommitmentError", err)
	}
}

func TestReinsertAfterForgetIsNotDuplicate(t *testing.T) {
	tree := New()
	c := CommitmentFromUint64(9)
	tree.Insert(Keep, c)
	tree.Forget(c)
	if _, err := tree.Insert(Keep, c); err != nil {
		t.Fatalf("re-insert after forget: %v", err)
	}
}

func TestEmptyTreeRootIsEmptyHash(t *testing.T) {
	tree := New()
	if !tree.Root().Equal(emptyHash()) {
		t.Fatal("empty tree root != emptyHash")
	}
}
