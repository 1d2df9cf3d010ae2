package circuit

import "github.com/b3dgs/lionengine-sub021/game/tilemap"

// EditableMap is a TileMap whose tiles can be replaced
type EditableMap interface {
	TileMap
	SetTile(x, y int, ref tilemap.TileRef) error
}

// Model picks transition variants around edited tiles
type Model struct {
	tileMap   EditableMap
	extractor *Extractor
	table     *Table
}

// NewModel creates a model resolving tiles of the map with the table
func NewModel(tileMap EditableMap, table *Table) *Model {
	if table == nil {
		table = NewTable()
	}
	return &Model{
		tileMap:   tileMap,
		extractor: NewExtractor(tileMap),
		table:     table,
	}
}

// Table returns the circuit table in use
func (m *Model) Table() *Table {
	return m.table
}

// SetTable replaces the circuit table
func (m *Model) SetTable(table *Table) {
	if table == nil {
		table = NewTable()
	}
	m.table = table
}

// Resolve re-evaluates the edited tile and its direct neighbours. Each of them
// sharing the edited tile group and holding a known circuit gets the first
// candidate of that group. Tiles without candidate are left as they are.
// It returns the tiles actually replaced.
func (m *Model) Resolve(tile tilemap.Tile) []tilemap.Tile {
	current, ok := m.tileMap.Tile(tile.X, tile.Y)
	if !ok {
		return nil
	}
	group := m.tileMap.Group(current.Ref)

	var changed []tilemap.Tile
	around := append([]tilemap.Tile{current}, m.tileMap.Neighbors(tile.X, tile.Y)...)
	for _, t := range around {
		// neighbours may have changed since the snapshot above
		t, _ = m.tileMap.Tile(t.X, t.Y)
		if m.tileMap.Group(t.Ref) != group {
			continue
		}
		c, ok := m.extractor.Circuit(t)
		if !ok {
			continue
		}
		ref, ok := m.candidate(c, group)
		if !ok || ref == t.Ref {
			continue
		}
		if err := m.tileMap.SetTile(t.X, t.Y, ref); err != nil {
			continue
		}
		changed = append(changed, tilemap.Tile{X: t.X, Y: t.Y, Ref: ref})
	}
	return changed
}

// candidate returns the first reference of the circuit belonging to the group
func (m *Model) candidate(c Circuit, group string) (tilemap.TileRef, bool) {
	for _, ref := range m.table.Tiles(c) {
		if m.tileMap.Group(ref) == group {
			return ref, true
		}
	}
	return tilemap.TileRef{}, false
}
