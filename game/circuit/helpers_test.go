package circuit

import (
	"testing"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

var (
	grass      = tilemap.TileRef{Sheet: 0, Number: 0}
	tree       = tilemap.TileRef{Sheet: 0, Number: 1}
	sand       = tilemap.TileRef{Sheet: 0, Number: 3}
	water      = tilemap.TileRef{Sheet: 1, Number: 0}
	waterVert  = tilemap.TileRef{Sheet: 1, Number: 1}
	waterHoriz = tilemap.TileRef{Sheet: 1, Number: 2}
)

// buildMap creates a map from layout rows: G grass, T tree, S sand, W water,
// | and - water variants, . groupless.
func buildMap(t *testing.T, rows ...string) *tilemap.Map {
	t.Helper()
	legend := map[byte]tilemap.TileRef{
		'G': grass,
		'T': tree,
		'S': sand,
		'W': water,
		'|': waterVert,
		'-': waterHoriz,
		'.': {Sheet: 9, Number: 9},
	}

	m := tilemap.New("test", len(rows[0]), len(rows), grass)
	m.AddGroup("grass", tilemap.GroupNone, grass)
	m.AddGroup("tree", tilemap.GroupNone, tree)
	m.AddGroup("sand", tilemap.GroupNone, sand)
	m.AddGroup("water", tilemap.GroupCircuit, water, waterVert, waterHoriz)

	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			ref, ok := legend[row[x]]
			if !ok {
				t.Fatalf("unknown layout character %q", row[x])
			}
			if err := m.SetTile(x, y, ref); err != nil {
				t.Fatal(err)
			}
		}
	}
	return m
}

func tileAt(t *testing.T, m *tilemap.Map, x, y int) tilemap.Tile {
	t.Helper()
	tile, ok := m.Tile(x, y)
	if !ok {
		t.Fatalf("no tile at (%d,%d)", x, y)
	}
	return tile
}
