// Package engine provides the per-session world of the tile navigation service.
//
// The engine package ties the core packages together:
//   - A tile map built from a map configuration
//   - A path finder running A* over that map
//   - A circuit model resolving transitions when tiles are painted
//   - Units moving along planned paths, leaving references on their tiles
//   - An action history preserved across resets
//
// Core Types:
//
// The Engine interface defines the contract used by the service layer,
// implemented by WorldEngine. State is the serializable snapshot of a world
// (grid, units, history) used for persistence and broadcasting.
//
// Usage:
//
//	config, err := tilemap.LoadConfig("configs/meadow.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	world, err := engine.NewEngine(config, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	world.AddUnit("scout", "walker", 0, 0)
//	result, err := world.MoveUnit("scout", 9, 7, 0)
//
// Units:
//
// Every unit uses one of the mover profiles of the configuration. A unit
// never blocks itself, but other units block its paths. A unit cannot be
// placed on a tile occupied by another unit or on terrain its profile cannot
// cross.
//
// A WorldEngine is not safe for concurrent use; the service layer serializes
// access to it.
package engine
