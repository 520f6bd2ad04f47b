package tree

import "sort"

// Build converts a flat list of parent-referencing records into a sorted
// forest of nodes. A record whose parent id is empty, names itself, or is
// absent from the input set becomes a root instead of failing. Duplicate
// ids keep the first occurrence. The result depends only on the set of
// records, never on their input order.
func Build[T any](records []T, acc Accessors[T]) []*Node[T] {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]*Node[T], len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		id := acc.ID(rec)
		if _, seen := byID[id]; seen {
			continue
		}
		n := &Node[T]{ID: id, Value: id, Label: acc.Label(rec), Record: rec}
		if acc.Description != nil {
			n.Description = acc.Description(rec)
		}
		if acc.Disabled != nil {
			n.Disabled = acc.Disabled(rec)
		}
		byID[id] = n
		order = append(order, id)
	}

	// Effective parent edges. Empty, self-referencing and dangling parent
	// ids all demote the record to a root.
	parentOf := make(map[string]string, len(order))
	for _, id := range order {
		pid := acc.ParentID(byID[id].Record)
		if pid == "" || pid == id {
			continue
		}
		if _, ok := byID[pid]; !ok {
			continue
		}
		parentOf[id] = pid
	}

	breakCycles(order, parentOf)

	roots := make([]*Node[T], 0, len(order))
	for _, id := range order {
		n := byID[id]
		pid, ok := parentOf[id]
		if !ok {
			roots = append(roots, n)
			continue
		}
		byID[pid].Children = append(byID[pid].Children, n)
	}

	less := acc.Less
	if less == nil {
		less = defaultLess[T]
	}
	sortForest(roots, orderedLess(less))
	return roots
}

// breakCycles deletes one parent edge per cycle so every node stays
// reachable from a root. Mutually-parented records are corrupt input and
// degrade the same way dangling parents do: the cycle member with the
// smallest id becomes a root. Picking by id keeps the result independent
// of input order.
func breakCycles(order []string, parentOf map[string]string) {
	const (
		unvisited = iota
		inPath
		done
	)
	state := make(map[string]int, len(order))

	for _, start := range order {
		if state[start] != unvisited {
			continue
		}
		var path []string
		id := start
		for {
			if state[id] == done {
				break
			}
			if state[id] == inPath {
				demoteCycleMember(path, id, parentOf)
				break
			}
			state[id] = inPath
			path = append(path, id)
			pid, ok := parentOf[id]
			if !ok {
				break
			}
			id = pid
		}
		for _, p := range path {
			state[p] = done
		}
	}
}

// demoteCycleMember removes the parent edge of the smallest id on the
// cycle that closes at entry.
func demoteCycleMember(path []string, entry string, parentOf map[string]string) {
	first := 0
	for i, id := range path {
		if id == entry {
			first = i
			break
		}
	}
	smallest := path[first]
	for _, id := range path[first+1:] {
		if id < smallest {
			smallest = id
		}
	}
	delete(parentOf, smallest)
}

func sortForest[T any](nodes []*Node[T], less func(a, b *Node[T]) bool) {
	sort.Slice(nodes, func(i, j int) bool { return less(nodes[i], nodes[j]) })
	for _, n := range nodes {
		sortForest(n.Children, less)
	}
}
