// Package circuit classifies tiles by the groups surrounding them and picks
// matching tile variants when a map is edited.
//
// A circuit is the local adjacency pattern of a tile: which of its four direct
// neighbours (south, west, north, east) belong to the tile's own group, plus
// the two groups involved in the transition. Circuits are harvested from
// existing maps into a Table (circuit -> candidate tile references), stored
// as XML, and consulted when a tile changes so its neighbourhood gets the
// right transition variants.
//
// Core Types:
//
//   - CircuitType is the 4-bit neighbour pattern, south being the highest bit
//   - Circuit is the comparable (type, in, out) key
//   - Extractor classifies a single tile of a live map
//   - Model resolves the neighbourhood of an edited tile
//   - Table is the circuit lookup, built by Extract and stored by Export
//
// Usage:
//
//	table := circuit.Extract(levels...)
//	model := circuit.NewModel(m, table)
//	m.SetTile(3, 3, water)
//	changed := model.Resolve(tilemap.Tile{X: 3, Y: 3, Ref: water})
//
// Extraction reads maps only and builds fresh collections on every call.
// A Model mutates its map and is not safe for concurrent use.
package circuit
