package tree

// FindPath returns the root-to-target chain of node ids for the first
// node whose value equals target, or nil when the value is absent. The
// chain includes the target node's own id as its last element. Depth
// first, so in a well-formed forest the unique occurrence is found.
func FindPath[T any](forest []*Node[T], target string) []string {
	for _, root := range forest {
		if path := pathFrom(root, target); path != nil {
			return path
		}
	}
	return nil
}

func pathFrom[T any](n *Node[T], target string) []string {
	if n.Value == target {
		return []string{n.ID}
	}
	for _, child := range n.Children {
		if rest := pathFrom(child, target); rest != nil {
			return append([]string{n.ID}, rest...)
		}
	}
	return nil
}
