package tilemap

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Map is a tile grid with groups, categories and occupancy references
type Map struct {
	name   string
	width  int
	height int
	tiles  []TileRef

	groups     map[TileRef]string
	groupTypes map[string]GroupType
	categories map[string]string // group name -> category name
	occupants  map[int]mapset.Set[string]
}

// New creates a map filled with the given tile reference
func New(name string, width, height int, fill TileRef) *Map {
	m := &Map{
		name:       name,
		width:      width,
		height:     height,
		tiles:      make([]TileRef, width*height),
		groups:     make(map[TileRef]string),
		groupTypes: make(map[string]GroupType),
		categories: make(map[string]string),
		occupants:  make(map[int]mapset.Set[string]),
	}
	for i := range m.tiles {
		m.tiles[i] = fill
	}
	return m
}

// NewMap builds a map from its configuration
func NewMap(config *Config) (*Map, error) {
	if err := checkLayout(config); err != nil {
		return nil, err
	}

	m := New(config.Name, config.Width, config.Height, TileRef{})
	for y, row := range config.Layout {
		for x := 0; x < len(row); x++ {
			m.tiles[m.index(x, y)] = config.Legend[string(row[x])]
		}
	}
	for _, group := range config.Groups {
		var refs []TileRef
		for _, r := range group.Tiles {
			refs = append(refs, r.Refs()...)
		}
		m.AddGroup(group.Name, group.Type, refs...)
	}
	for _, category := range config.Categories {
		m.SetCategory(category.Name, category.Groups...)
	}
	return m, nil
}

// AddGroup declares a group and assigns the references to it
func (m *Map) AddGroup(name string, groupType GroupType, refs ...TileRef) {
	if groupType == "" {
		groupType = GroupNone
	}
	m.groupTypes[name] = groupType
	for _, ref := range refs {
		m.groups[ref] = name
	}
}

// SetCategory assigns the groups to a category
func (m *Map) SetCategory(category string, groups ...string) {
	for _, g := range groups {
		m.categories[g] = category
	}
}

// Name returns the map name
func (m *Map) Name() string {
	return m.name
}

// Width returns the number of horizontal tiles
func (m *Map) Width() int {
	return m.width
}

// Height returns the number of vertical tiles
func (m *Map) Height() int {
	return m.height
}

// InBounds reports whether (x, y) lies on the map
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// Tile returns the tile at (x, y)
func (m *Map) Tile(x, y int) (Tile, bool) {
	if !m.InBounds(x, y) {
		return Tile{}, false
	}
	return Tile{X: x, Y: y, Ref: m.tiles[m.index(x, y)]}, true
}

// SetTile places a tile reference at (x, y)
func (m *Map) SetTile(x, y int, ref TileRef) error {
	if !m.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	m.tiles[m.index(x, y)] = ref
	return nil
}

// Group returns the group of a tile reference, empty when groupless
func (m *Map) Group(ref TileRef) string {
	return m.groups[ref]
}

// GroupOf returns the group of the tile at (x, y)
func (m *Map) GroupOf(x, y int) string {
	if !m.InBounds(x, y) {
		return ""
	}
	return m.groups[m.tiles[m.index(x, y)]]
}

// GroupType returns the type of a group, GroupNone when unknown
func (m *Map) GroupType(name string) GroupType {
	if t, ok := m.groupTypes[name]; ok {
		return t
	}
	return GroupNone
}

// Groups returns the declared group names in alphabetical order
func (m *Map) Groups() []string {
	names := make([]string, 0, len(m.groupTypes))
	for name := range m.groupTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupRefs returns the references of a group ordered by sheet and number
func (m *Map) GroupRefs(name string) []TileRef {
	var refs []TileRef
	for ref, g := range m.groups {
		if g == name {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// Category returns the category of the tile at (x, y), empty when none
func (m *Map) Category(x, y int) string {
	return m.categories[m.GroupOf(x, y)]
}

// Neighbors returns the direct neighbours of (x, y) in south, west, north, east order.
// Positions outside the map are skipped.
func (m *Map) Neighbors(x, y int) []Tile {
	offsets := [4][2]int{{0, 1}, {-1, 0}, {0, -1}, {1, 0}}
	neighbors := make([]Tile, 0, len(offsets))
	for _, o := range offsets {
		if tile, ok := m.Tile(x+o[0], y+o[1]); ok {
			neighbors = append(neighbors, tile)
		}
	}
	return neighbors
}

// Occupy leaves the object reference on the tile at (x, y)
func (m *Map) Occupy(id string, x, y int) error {
	if !m.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	i := m.index(x, y)
	refs, ok := m.occupants[i]
	if !ok {
		refs = mapset.New[string]()
		m.occupants[i] = refs
	}
	refs.Put(id)
	return nil
}

// Release removes the object reference from the tile at (x, y)
func (m *Map) Release(id string, x, y int) {
	if !m.InBounds(x, y) {
		return
	}
	i := m.index(x, y)
	refs, ok := m.occupants[i]
	if !ok {
		return
	}
	refs.Remove(id)
	if refs.Size() == 0 {
		delete(m.occupants, i)
	}
}

// Occupants returns the references left on (x, y) in alphabetical order
func (m *Map) Occupants(x, y int) []string {
	if !m.InBounds(x, y) {
		return nil
	}
	refs, ok := m.occupants[m.index(x, y)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, refs.Size())
	refs.Each(func(id string) {
		ids = append(ids, id)
	})
	sort.Strings(ids)
	return ids
}

// Tiles returns every tile, row by row
func (m *Map) Tiles() []Tile {
	tiles := make([]Tile, 0, len(m.tiles))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			tiles = append(tiles, Tile{X: x, Y: y, Ref: m.tiles[m.index(x, y)]})
		}
	}
	return tiles
}

// Restore places back tiles taken from a snapshot
func (m *Map) Restore(tiles []Tile) error {
	for _, tile := range tiles {
		if err := m.SetTile(tile.X, tile.Y, tile.Ref); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy of the map without occupancy references
func (m *Map) Clone() *Map {
	c := New(m.name, m.width, m.height, TileRef{})
	copy(c.tiles, m.tiles)
	for ref, g := range m.groups {
		c.groups[ref] = g
	}
	for g, t := range m.groupTypes {
		c.groupTypes[g] = t
	}
	for g, category := range m.categories {
		c.categories[g] = category
	}
	return c
}

func (m *Map) index(x, y int) int {
	return y*m.width + x
}
