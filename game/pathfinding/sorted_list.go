package pathfinding

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// SortedList is the open list of the search, kept ordered by node key.
// Nodes with equal keys stay in insertion order.
type SortedList struct {
	items   []*Node
	members mapset.Set[*Node]
}

// NewSortedList creates an empty list.
func NewSortedList() *SortedList {
	return &SortedList{
		members: mapset.New[*Node](),
	}
}

// First returns the node with the lowest key, or nil when empty.
func (l *SortedList) First() *Node {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[0]
}

// Add inserts the node after every node with a lower or equal key.
func (l *SortedList) Add(node *Node) {
	i := sort.Search(len(l.items), func(i int) bool {
		return node.Less(l.items[i])
	})
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = node
	l.members.Put(node)
}

// Remove drops the node from the list if present.
func (l *SortedList) Remove(node *Node) {
	if !l.members.Has(node) {
		return
	}
	for i, item := range l.items {
		if item == node {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	l.members.Remove(node)
}

// Contains reports whether the node is in the list.
func (l *SortedList) Contains(node *Node) bool {
	return l.members.Has(node)
}

// Size returns the number of nodes in the list.
func (l *SortedList) Size() int {
	return len(l.items)
}

// Clear empties the list.
func (l *SortedList) Clear() {
	l.items = l.items[:0]
	l.members = mapset.New[*Node]()
}
