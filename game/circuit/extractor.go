package circuit

import "github.com/b3dgs/lionengine-sub021/game/tilemap"

// TileMap is the map capability needed to classify tiles
type TileMap interface {
	Width() int
	Height() int
	Tile(x, y int) (tilemap.Tile, bool)
	Group(ref tilemap.TileRef) string
	GroupType(name string) tilemap.GroupType
	Neighbors(x, y int) []tilemap.Tile
}

// Extractor classifies tiles of a map into circuits
type Extractor struct {
	tileMap TileMap
}

// NewExtractor creates an extractor reading the map
func NewExtractor(tileMap TileMap) *Extractor {
	return &Extractor{tileMap: tileMap}
}

// Circuit returns the circuit of the tile. ok is false when the tile has no
// group or its neighbourhood is not a simple two-group transition.
func (e *Extractor) Circuit(tile tilemap.Tile) (Circuit, bool) {
	group := e.tileMap.Group(tile.Ref)
	if group == "" {
		return Circuit{}, false
	}

	// south, west, north, east
	neighbors := make([]string, 0, 4)
	distinct := make(map[string]bool, 4)
	for _, n := range e.tileMap.Neighbors(tile.X, tile.Y) {
		g := e.tileMap.Group(n.Ref)
		if g == "" {
			continue
		}
		neighbors = append(neighbors, g)
		distinct[g] = true
	}

	if len(distinct) == 1 {
		other := neighbors[0]
		if other == group {
			return New(Middle, group, group), true
		}
		return New(Block, group, other), true
	}

	if len(neighbors) != 4 || len(distinct) != 2 || !distinct[group] {
		return Circuit{}, false
	}
	if e.tileMap.GroupType(group) != tilemap.GroupCircuit {
		return Circuit{}, false
	}

	var out string
	for g := range distinct {
		if g != group {
			out = g
		}
	}
	circuitType := FromSides(neighbors[0] == group, neighbors[1] == group, neighbors[2] == group, neighbors[3] == group)
	return New(circuitType, group, out), true
}
