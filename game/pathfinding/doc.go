// Package pathfinding implements A* search over tile grids.
//
// The package provides:
//   - A reusable node lattice, one Node per tile, owned by the PathFinder
//   - A sorted open list and a set-based closed list
//   - Pluggable heuristics (Euclidean by default)
//   - Path results as ordered tile steps from origin to destination
//
// Map Capability:
//
// The PathFinder does not own the map. It consumes a TileMapPath, which
// answers grid dimensions, blocked-tile queries, movement costs and the
// closest available tile around a blocked destination. Movers describe
// which tile categories they can cross and at which cost.
//
// Usage:
//
//	finder := pathfinding.NewPathFinder(tileMap, 64, true)
//	path, ok := finder.FindPath(walker, 0, 0, 4, 4, false)
//	if !ok {
//		// no path within the search budget
//	}
//	for i := 0; i < path.Length(); i++ {
//		fmt.Println(path.X(i), path.Y(i))
//	}
//
// Concurrency:
//
// A PathFinder keeps mutable search state between calls and is not safe for
// concurrent or recursive use. Use one instance per goroutine.
package pathfinding
