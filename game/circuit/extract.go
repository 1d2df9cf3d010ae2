package circuit

import (
	"fmt"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// Extract harvests the circuits of every interior tile of the maps. The outer
// ring is skipped since its tiles miss neighbours. Results of several maps
// are merged by set union.
func Extract(maps ...TileMap) *Table {
	table := NewTable()
	for _, m := range maps {
		extractor := NewExtractor(m)
		for y := 1; y < m.Height()-1; y++ {
			for x := 1; x < m.Width()-1; x++ {
				tile, ok := m.Tile(x, y)
				if !ok {
					continue
				}
				if c, ok := extractor.Circuit(tile); ok {
					table.Add(c, tile.Ref)
				}
			}
		}
	}
	return table
}

// ExtractConfigs builds the maps described by the configurations and
// harvests their circuits.
func ExtractConfigs(configs ...*tilemap.Config) (*Table, error) {
	maps := make([]TileMap, 0, len(configs))
	for _, config := range configs {
		m, err := tilemap.NewMap(config)
		if err != nil {
			return nil, fmt.Errorf("failed to build map '%s': %w", config.Name, err)
		}
		maps = append(maps, m)
	}
	return Extract(maps...), nil
}
