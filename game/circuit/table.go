package circuit

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// Table maps circuits to their candidate tile references
type Table struct {
	circuits map[Circuit]mapset.Set[tilemap.TileRef]
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{circuits: make(map[Circuit]mapset.Set[tilemap.TileRef])}
}

// Add registers the references as candidates of the circuit
func (t *Table) Add(c Circuit, refs ...tilemap.TileRef) {
	set, ok := t.circuits[c]
	if !ok {
		set = mapset.New[tilemap.TileRef]()
		t.circuits[c] = set
	}
	for _, ref := range refs {
		set.Put(ref)
	}
}

// Has reports whether the circuit is known
func (t *Table) Has(c Circuit) bool {
	_, ok := t.circuits[c]
	return ok
}

// Tiles returns the candidates of a circuit ordered by sheet then number
func (t *Table) Tiles(c Circuit) []tilemap.TileRef {
	set, ok := t.circuits[c]
	if !ok {
		return nil
	}
	refs := make([]tilemap.TileRef, 0, set.Size())
	set.Each(func(ref tilemap.TileRef) {
		refs = append(refs, ref)
	})
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// Circuits returns the known circuits in order
func (t *Table) Circuits() []Circuit {
	circuits := make([]Circuit, 0, len(t.circuits))
	for c := range t.circuits {
		circuits = append(circuits, c)
	}
	sort.Slice(circuits, func(i, j int) bool { return circuits[i].Less(circuits[j]) })
	return circuits
}

// Len returns the number of circuits
func (t *Table) Len() int {
	return len(t.circuits)
}

// Merge adds every candidate of other to the table
func (t *Table) Merge(other *Table) {
	for c, set := range other.circuits {
		t.Add(c)
		target := t.circuits[c]
		set.Each(func(ref tilemap.TileRef) {
			target.Put(ref)
		})
	}
}

// Equal reports whether both tables hold the same candidate sets per circuit
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.circuits) != len(other.circuits) {
		return false
	}
	for c, set := range t.circuits {
		o, ok := other.circuits[c]
		if !ok || o.Size() != set.Size() {
			return false
		}
		equal := true
		set.Each(func(ref tilemap.TileRef) {
			if !o.Has(ref) {
				equal = false
			}
		})
		if !equal {
			return false
		}
	}
	return true
}
