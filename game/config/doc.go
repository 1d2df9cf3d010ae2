// Package config provides map configuration management.
//
// Configurations are JSON or YAML files in the config directory. The file
// name without extension is the config ID used to create sessions:
//
//	configs/
//	  meadow.json
//	  islands.yaml
//	  circuits/
//	    islands.xml
//
// Each configuration defines the layout characters, the legend mapping them
// to tile references, the tile groups, the categories seen by movers and the
// mover profiles. See tilemap.Config.
//
// Circuit tables are stored as XML under circuits/<config>.xml. When a map has
// no stored table, the table is extracted from its own layout.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mapConfig, err := manager.LoadConfig("islands")
//	table, err := manager.LoadCircuits("islands")
//
// The default configuration is meadow.json when present, else the first valid
// file, else the built-in meadow map.
package config
