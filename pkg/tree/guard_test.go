package tree

import (
	"errors"
	"testing"
)

// TestInvalidParentsBlocksSelfAndDescendants verifies the guard returns
// the record itself plus its whole subtree.
func TestInvalidParentsBlocksSelfAndDescendants(t *testing.T) {
	invalid := InvalidParents(chainRecords(), recAccessors(), "A")
	for _, id := range []string{"A", "B", "C"} {
		if !invalid[id] {
			t.Errorf("expected %s to be an invalid parent for A", id)
		}
	}
	if len(invalid) != 3 {
		t.Errorf("expected exactly 3 invalid parents, got %d", len(invalid))
	}
}

// TestInvalidParentsLeaf verifies a leaf blocks only itself.
func TestInvalidParentsLeaf(t *testing.T) {
	invalid := InvalidParents(chainRecords(), recAccessors(), "C")
	if len(invalid) != 1 || !invalid["C"] {
		t.Errorf("expected only C to be invalid, got %v", invalid)
	}
}

// TestInvalidParentsUnknownSelf verifies an id absent from the records
// still blocks itself and nothing else.
func TestInvalidParentsUnknownSelf(t *testing.T) {
	invalid := InvalidParents(chainRecords(), recAccessors(), "ghost")
	if len(invalid) != 1 || !invalid["ghost"] {
		t.Errorf("expected only ghost to be invalid, got %v", invalid)
	}
}

// TestInvalidParentsIgnoresDanglingBranch verifies records under a
// dangling parent do not leak into the invalid set of an unrelated
// record.
func TestInvalidParentsIgnoresDanglingBranch(t *testing.T) {
	records := append(chainRecords(), rec{id: "X", parent: "missing", label: "X"})
	invalid := InvalidParents(records, recAccessors(), "A")
	if invalid["X"] {
		t.Errorf("expected X to stay a valid parent choice")
	}
}

// TestValidateReparentAllowsValidMove verifies moving a subtree under an
// unrelated node passes.
func TestValidateReparentAllowsValidMove(t *testing.T) {
	records := append(chainRecords(), rec{id: "D", label: "Delta"})
	if err := ValidateReparent(records, recAccessors(), "B", "D"); err != nil {
		t.Errorf("expected valid reparent, got %v", err)
	}
}

// TestValidateReparentAllowsMoveToRoot verifies an empty parent id is
// always accepted.
func TestValidateReparentAllowsMoveToRoot(t *testing.T) {
	if err := ValidateReparent(chainRecords(), recAccessors(), "C", ""); err != nil {
		t.Errorf("expected move to root to pass, got %v", err)
	}
}

// TestValidateReparentRejectsSelf verifies self-parenting returns
// ErrCycle.
func TestValidateReparentRejectsSelf(t *testing.T) {
	err := ValidateReparent(chainRecords(), recAccessors(), "B", "B")
	if !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

// TestValidateReparentRejectsDescendant verifies moving a node under its
// own descendant returns ErrCycle.
func TestValidateReparentRejectsDescendant(t *testing.T) {
	err := ValidateReparent(chainRecords(), recAccessors(), "A", "C")
	if !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

// TestValidateReparentUnknownIDs verifies unknown child or parent ids
// return ErrUnknownID.
func TestValidateReparentUnknownIDs(t *testing.T) {
	if err := ValidateReparent(chainRecords(), recAccessors(), "ghost", "A"); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID for unknown child, got %v", err)
	}
	if err := ValidateReparent(chainRecords(), recAccessors(), "A", "ghost"); !errors.Is(err, ErrUnknownID) {
		t.Errorf("expected ErrUnknownID for unknown parent, got %v", err)
	}
}
