package tilemap

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
)

// ValidateConfig validates a map configuration for correctness
func ValidateConfig(config *Config) error {
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}
	if err := checkLayout(config); err != nil {
		return err
	}

	// Validate groups
	owners := make(map[TileRef]string)
	groups := make(map[string]bool)
	declared := 0
	for _, group := range config.Groups {
		if group.Name == "" {
			return fmt.Errorf("%w: group name is required", ErrInvalidConfig)
		}
		if groups[group.Name] {
			return fmt.Errorf("%w: duplicate group '%s'", ErrInvalidConfig, group.Name)
		}
		groups[group.Name] = true

		switch group.Type {
		case "", GroupNone, GroupTransition, GroupCircuit:
		default:
			return fmt.Errorf("%w: group '%s' has unknown type '%s'", ErrInvalidConfig, group.Name, group.Type)
		}

		for _, r := range group.Tiles {
			if !r.Valid() {
				return fmt.Errorf("%w: group '%s' has invalid range %d..%d (at most %d tiles)",
					ErrInvalidConfig, group.Name, r.Start, r.End, MaxTileRange)
			}
			declared += r.Len()
			if declared > MaxDeclaredTiles {
				return fmt.Errorf("%w: groups declare more than %d tiles", ErrInvalidConfig, MaxDeclaredTiles)
			}
			for _, ref := range r.Refs() {
				if owner, ok := owners[ref]; ok {
					return fmt.Errorf("%w: tile %s belongs to groups '%s' and '%s'", ErrInvalidConfig, ref, owner, group.Name)
				}
				owners[ref] = group.Name
			}
		}
	}

	// Validate categories
	categories := make(map[string]bool)
	grouped := make(map[string]string)
	for _, category := range config.Categories {
		if category.Name == "" {
			return fmt.Errorf("%w: category name is required", ErrInvalidConfig)
		}
		if categories[category.Name] {
			return fmt.Errorf("%w: duplicate category '%s'", ErrInvalidConfig, category.Name)
		}
		categories[category.Name] = true
		for _, g := range category.Groups {
			if !groups[g] {
				return fmt.Errorf("%w: category '%s' references unknown group '%s'", ErrInvalidConfig, category.Name, g)
			}
			if other, ok := grouped[g]; ok {
				return fmt.Errorf("%w: group '%s' belongs to categories '%s' and '%s'", ErrInvalidConfig, g, other, category.Name)
			}
			grouped[g] = category.Name
		}
	}

	// Validate mover profiles
	if len(config.Movers) == 0 {
		return fmt.Errorf("%w: at least one mover profile is required", ErrInvalidConfig)
	}
	for profile, costs := range config.Movers {
		if len(costs) == 0 {
			return fmt.Errorf("%w: mover '%s' crosses no category", ErrInvalidConfig, profile)
		}
		for category, cost := range costs {
			if !categories[category] {
				return fmt.Errorf("%w: mover '%s' references unknown category '%s'", ErrInvalidConfig, profile, category)
			}
			if !(cost > 0) || math.IsInf(cost, 0) {
				return fmt.Errorf("%w: mover '%s' cost for '%s' must be positive and finite, got %v", ErrInvalidConfig, profile, category, cost)
			}
		}
	}

	if config.MaxSearchDistance < 0 {
		return fmt.Errorf("%w: max_search_distance must not be negative, got %d", ErrInvalidConfig, config.MaxSearchDistance)
	}
	if _, ok := pathfinding.HeuristicByName(config.Heuristic); !ok {
		return fmt.Errorf("%w: unknown heuristic '%s'", ErrInvalidConfig, config.Heuristic)
	}

	return nil
}

// checkLayout verifies the layout can be turned into a grid
func checkLayout(config *Config) error {
	if config.Width < MinMapSize || config.Width > MaxMapSize {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidConfig, MinMapSize, MaxMapSize, config.Width)
	}
	if config.Height < MinMapSize || config.Height > MaxMapSize {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidConfig, MinMapSize, MaxMapSize, config.Height)
	}
	if len(config.Layout) != config.Height {
		return fmt.Errorf("%w: layout must have %d rows to match height, got %d", ErrInvalidConfig, config.Height, len(config.Layout))
	}
	for key := range config.Legend {
		if len(key) != 1 {
			return fmt.Errorf("%w: legend key '%s' must be a single character", ErrInvalidConfig, key)
		}
	}
	for i, row := range config.Layout {
		if len(row) != config.Width {
			return fmt.Errorf("%w: row %d must have %d characters to match width, got %d",
				ErrInvalidConfig, i+1, config.Width, len(row))
		}
		for j := 0; j < len(row); j++ {
			if _, ok := config.Legend[string(row[j])]; !ok {
				return fmt.Errorf("%w: character '%c' at row %d, col %d is missing from legend", ErrInvalidConfig, row[j], i+1, j+1)
			}
		}
	}
	return nil
}

// LoadConfig loads a map configuration from a JSON or YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseConfig decodes a configuration in the format given by its file extension
func ParseConfig(data []byte, ext string) (*Config, error) {
	var config Config
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format '%s'", ext)
	}
	return &config, nil
}

// MarshalConfig encodes a configuration in the format given by its file extension
func MarshalConfig(config *Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	default:
		return nil, fmt.Errorf("unsupported config format '%s'", ext)
	}
}

// IsConfigFile reports whether the file name has a supported config extension
func IsConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DefaultConfig returns the built-in meadow map: grass split by a river with
// three bridges.
func DefaultConfig() *Config {
	return &Config{
		Name:        "meadow",
		Description: "Grass meadow crossed by a river with three bridges",
		Width:       10,
		Height:      8,
		Layout: []string{
			"GGGGG|GGGG",
			"GTGGG|GGTG",
			"GGGGG|GGGG",
			"--B--W-B--",
			"GGGGG|GGGG",
			"GGTGGBGGGG",
			"GGGGG|GGTG",
			"GGGGG|GGGG",
		},
		Legend: map[string]TileRef{
			"G": {Sheet: 0, Number: 0},
			"T": {Sheet: 0, Number: 1},
			"B": {Sheet: 0, Number: 2},
			"W": {Sheet: 1, Number: 0},
			"|": {Sheet: 1, Number: 1},
			"-": {Sheet: 1, Number: 2},
		},
		Groups: []GroupConfig{
			{Name: "grass", Type: GroupNone, Tiles: []TileRange{{Sheet: 0, Start: 0, End: 0}}},
			{Name: "tree", Type: GroupNone, Tiles: []TileRange{{Sheet: 0, Start: 1, End: 1}}},
			{Name: "bridge", Type: GroupNone, Tiles: []TileRange{{Sheet: 0, Start: 2, End: 2}}},
			{Name: "water", Type: GroupCircuit, Tiles: []TileRange{{Sheet: 1, Start: 0, End: 15}}},
		},
		Categories: []CategoryConfig{
			{Name: "ground", Groups: []string{"grass"}},
			{Name: "obstacle", Groups: []string{"tree"}},
			{Name: "bridge", Groups: []string{"bridge"}},
			{Name: "sea", Groups: []string{"water"}},
		},
		Movers: map[string]map[string]float64{
			"walker":    {"ground": 1, "bridge": 1},
			"boat":      {"sea": 1, "bridge": 1},
			"amphibian": {"ground": 1, "bridge": 1, "sea": 2},
		},
		MaxSearchDistance: DefaultMaxSearchDistance,
		AllowDiagonal:     true,
	}
}
