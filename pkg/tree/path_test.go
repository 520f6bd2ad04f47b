package tree

import (
	"reflect"
	"testing"
)

// TestFindPathReturnsRootToTargetChain verifies the id chain runs from
// the root down to the target inclusive.
func TestFindPathReturnsRootToTargetChain(t *testing.T) {
	forest := Build(chainRecords(), recAccessors())
	got := FindPath(forest, "C")
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected path %v, got %v", want, got)
	}
}

// TestFindPathRootTarget verifies a root target yields a single-element
// chain.
func TestFindPathRootTarget(t *testing.T) {
	forest := Build(chainRecords(), recAccessors())
	got := FindPath(forest, "A")
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("expected [A], got %v", got)
	}
}

// TestFindPathMissingValue verifies an absent value returns nil.
func TestFindPathMissingValue(t *testing.T) {
	forest := Build(chainRecords(), recAccessors())
	if got := FindPath(forest, "ghost"); got != nil {
		t.Errorf("expected nil path for unknown value, got %v", got)
	}
}

// TestFindPathEmptyForest verifies searching an empty forest returns nil.
func TestFindPathEmptyForest(t *testing.T) {
	if got := FindPath[rec](nil, "A"); got != nil {
		t.Errorf("expected nil path, got %v", got)
	}
}

// TestFindPathSearchesAcrossRoots verifies later roots are reached when
// earlier subtrees miss.
func TestFindPathSearchesAcrossRoots(t *testing.T) {
	records := []rec{
		{id: "A", label: "Alpha"},
		{id: "B", parent: "A", label: "Beta"},
		{id: "Z", label: "Zulu"},
		{id: "Y", parent: "Z", label: "Yankee"},
	}
	forest := Build(records, recAccessors())
	got := FindPath(forest, "Y")
	want := []string{"Z", "Y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected path %v, got %v", want, got)
	}
}
