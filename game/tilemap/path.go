package tilemap

import (
	"math"

	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
)

// IsBlocked reports whether the mover cannot stand on (x, y): outside the map,
// on a category it does not cross, or on a tile referenced by another object
// unless ignoreRef is set.
func (m *Map) IsBlocked(mover pathfinding.Mover, x, y int, ignoreRef bool) bool {
	if !m.InBounds(x, y) {
		return true
	}
	if mover.Blocks(m.Category(x, y)) {
		return true
	}
	if ignoreRef {
		return false
	}
	refs, ok := m.occupants[m.index(x, y)]
	if !ok {
		return false
	}
	blocked := false
	refs.Each(func(id string) {
		if id != mover.ID() {
			blocked = true
		}
	})
	return blocked
}

// Cost returns the mover cost of entering the destination tile
func (m *Map) Cost(mover pathfinding.Mover, sx, sy, dx, dy int) float64 {
	return mover.Cost(m.Category(dx, dy))
}

// ClosestAvailableTile scans square rings of growing radius around (dx, dy).
// In the first ring holding free tiles, the one nearest to (sx, sy) wins.
func (m *Map) ClosestAvailableTile(mover pathfinding.Mover, dx, dy, radius, sx, sy int) (pathfinding.Step, bool) {
	for r := 1; r <= radius; r++ {
		best := pathfinding.Step{}
		bestDist := math.MaxFloat64
		found := false
		for y := dy - r; y <= dy+r; y++ {
			for x := dx - r; x <= dx+r; x++ {
				if y != dy-r && y != dy+r && x != dx-r && x != dx+r {
					continue
				}
				if m.IsBlocked(mover, x, y, false) {
					continue
				}
				dist := pathfinding.ClosestHeuristic{}.Cost(x, y, sx, sy)
				if dist < bestDist {
					best = pathfinding.Step{X: x, Y: y}
					bestDist = dist
					found = true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return pathfinding.Step{}, false
}

var _ pathfinding.TileMapPath = (*Map)(nil)
