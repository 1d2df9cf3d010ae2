// Package tilemap provides the tile grid shared by pathfinding and circuit resolution.
//
// The tilemap package implements:
//   - Tile references (sheet + number) and their placement on a grid
//   - Tile groups ("water", "grass", ...) with a group type driving transitions
//   - Categories mapping groups to the terrain a mover can cross
//   - Occupancy references left by units standing on tiles
//   - Map configuration loading from JSON or YAML files
//
// Core Types:
//
// Config describes a map: its layout rows, the legend turning layout
// characters into tile references, groups, categories and mover profiles.
// Map is the live grid built from a Config. It satisfies the
// pathfinding.TileMapPath capability, so a PathFinder can run over it.
//
// Orientation:
//
// Rows grow downward: north of (x, y) is (x, y-1) and south is (x, y+1).
// Neighbors are always reported in south, west, north, east order.
//
// Usage:
//
//	cfg, err := tilemap.LoadConfig("configs/meadow.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := tilemap.NewMap(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(m.GroupOf(3, 3))
package tilemap
