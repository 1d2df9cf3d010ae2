package engine

import (
	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// PathCost sums the mover cost of every step of a path after the origin
func PathCost(m pathfinding.TileMapPath, mover pathfinding.Mover, path *pathfinding.Path) float64 {
	total := 0.0
	for i := 1; i < path.Length(); i++ {
		total += m.Cost(mover, path.X(i-1), path.Y(i-1), path.X(i), path.Y(i))
	}
	return total
}

// CountGroups counts the tiles of each group, groupless tiles under ""
func CountGroups(m *tilemap.Map) map[string]int {
	counts := make(map[string]int)
	for _, tile := range m.Tiles() {
		counts[m.Group(tile.Ref)]++
	}
	return counts
}

// PassableTiles returns the tiles the mover can stand on, ignoring units
func PassableTiles(m *tilemap.Map, mover pathfinding.Mover) []Position {
	var tiles []Position
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.IsBlocked(mover, x, y, true) {
				tiles = append(tiles, Position{X: x, Y: y})
			}
		}
	}
	return tiles
}
