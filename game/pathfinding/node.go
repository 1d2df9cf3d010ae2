package pathfinding

// noParent marks a node without a back-link in the lattice.
const noParent = -1

// Node is a single search cell of the lattice.
type Node struct {
	X         int
	Y         int
	Depth     int
	Cost      float64
	Heuristic float64

	// parent is the lattice index of the node this one was reached from.
	parent int
}

func newNode(x, y int) Node {
	return Node{X: x, Y: y, parent: noParent}
}

// Key returns the ordering key of the node (cost + heuristic).
func (n *Node) Key() float64 {
	return n.Cost + n.Heuristic
}

// Less reports whether n orders strictly before other.
func (n *Node) Less(other *Node) bool {
	return n.Key() < other.Key()
}

// HasParent reports whether the node holds a back-link.
func (n *Node) HasParent() bool {
	return n.parent != noParent
}

// setParent links n to the node at index, updating its depth, and returns the new depth.
func (n *Node) setParent(index int, parent *Node) int {
	n.parent = index
	n.Depth = parent.Depth + 1
	return n.Depth
}

func (n *Node) clearParent() {
	n.parent = noParent
}
