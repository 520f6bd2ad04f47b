package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle reports a re-parent that would make a record its own
	// ancestor.
	ErrCycle = errors.New("cycle detected")
	// ErrUnknownID reports an id that is absent from the record set.
	ErrUnknownID = errors.New("unknown id")
)

// InvalidParents returns the ids that must not be offered as parent
// choices for the record selfID: selfID itself plus every record whose
// ancestor path contains it. Ancestry follows the same linking rules as
// Build, so dangling and self-referencing parents do not taint anything.
// The result is advisory; callers use it to disable picker nodes, not to
// reject assignments. ValidateReparent is the enforcing entry point.
func InvalidParents[T any](records []T, acc Accessors[T], selfID string) map[string]bool {
	invalid := map[string]bool{selfID: true}
	node := IndexAll(Build(records, acc))[selfID]
	if node == nil {
		return invalid
	}
	for _, v := range Descendants(node) {
		invalid[v] = true
	}
	return invalid
}

// ValidateReparent checks whether childID may be re-parented under
// newParentID without creating a cycle. An empty newParentID moves the
// record to the root level and is always allowed. Unknown ids return an
// error wrapping ErrUnknownID; cyclic assignments return an error
// wrapping ErrCycle.
func ValidateReparent[T any](records []T, acc Accessors[T], childID, newParentID string) error {
	known := make(map[string]bool, len(records))
	for _, rec := range records {
		known[acc.ID(rec)] = true
	}
	if !known[childID] {
		return fmt.Errorf("%w: %s", ErrUnknownID, childID)
	}
	if newParentID == "" {
		return nil
	}
	if !known[newParentID] {
		return fmt.Errorf("%w: %s", ErrUnknownID, newParentID)
	}
	if newParentID == childID {
		return fmt.Errorf("%w: %s cannot be its own parent", ErrCycle, childID)
	}
	if InvalidParents(records, acc, childID)[newParentID] {
		return fmt.Errorf("%w: %s is a descendant of %s", ErrCycle, newParentID, childID)
	}
	return nil
}
