package tilemap

import (
	"errors"
	"fmt"
)

// GroupType tells how tiles of a group take part in transitions
type GroupType string

const (
	GroupNone       GroupType = "none"
	GroupTransition GroupType = "transition"
	GroupCircuit    GroupType = "circuit"

	// Validation constants
	MinMapSize               = 3
	MaxMapSize               = 256
	DefaultMaxSearchDistance = 64

	// MaxTileRange is the number of tiles a single range may span
	MaxTileRange = 1024
	// MaxDeclaredTiles caps the tiles declared by the groups of a config or a circuits table
	MaxDeclaredTiles = 1 << 16
)

var (
	ErrOutOfBounds   = errors.New("position out of bounds")
	ErrInvalidConfig = errors.New("config validation")
)

// TileRef identifies a tile variant within a sheet
type TileRef struct {
	Sheet  int `json:"sheet" yaml:"sheet"`
	Number int `json:"number" yaml:"number"`
}

// Less orders references by sheet then number
func (r TileRef) Less(other TileRef) bool {
	if r.Sheet != other.Sheet {
		return r.Sheet < other.Sheet
	}
	return r.Number < other.Number
}

func (r TileRef) String() string {
	return fmt.Sprintf("%d:%d", r.Sheet, r.Number)
}

// Tile is a tile reference placed on the map
type Tile struct {
	X   int     `json:"x"`
	Y   int     `json:"y"`
	Ref TileRef `json:"ref"`
}

// TileRange covers the numbers Start..End (inclusive) of a sheet
type TileRange struct {
	Sheet int `json:"sheet" yaml:"sheet"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of tiles of the range, 0 when reversed
func (r TileRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Valid reports whether the range is ordered, non negative and at most MaxTileRange long
func (r TileRange) Valid() bool {
	return r.Sheet >= 0 && r.Start >= 0 && r.End >= r.Start && r.End-r.Start < MaxTileRange
}

// Refs expands the range into tile references, nil for an invalid range
func (r TileRange) Refs() []TileRef {
	if !r.Valid() {
		return nil
	}
	refs := make([]TileRef, 0, r.End-r.Start+1)
	for n := r.Start; n <= r.End; n++ {
		refs = append(refs, TileRef{Sheet: r.Sheet, Number: n})
	}
	return refs
}

// GroupConfig declares a named group of tile references
type GroupConfig struct {
	Name  string      `json:"name" yaml:"name"`
	Type  GroupType   `json:"type" yaml:"type"`
	Tiles []TileRange `json:"tiles" yaml:"tiles"`
}

// CategoryConfig gathers groups sharing the same crossing rules
type CategoryConfig struct {
	Name   string   `json:"name" yaml:"name"`
	Groups []string `json:"groups" yaml:"groups"`
}

// Config represents a map configuration loaded from JSON or YAML
type Config struct {
	Name              string                        `json:"name" yaml:"name"`
	Description       string                        `json:"description" yaml:"description"`
	Width             int                           `json:"width" yaml:"width"`
	Height            int                           `json:"height" yaml:"height"`
	Layout            []string                      `json:"layout" yaml:"layout"`
	Legend            map[string]TileRef            `json:"legend" yaml:"legend"`
	Groups            []GroupConfig                 `json:"groups" yaml:"groups"`
	Categories        []CategoryConfig              `json:"categories" yaml:"categories"`
	Movers            map[string]map[string]float64 `json:"movers" yaml:"movers"`
	MaxSearchDistance int                           `json:"max_search_distance,omitempty" yaml:"max_search_distance,omitempty"`
	AllowDiagonal     bool                          `json:"allow_diagonal" yaml:"allow_diagonal"`
	Heuristic         string                        `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
}

// SearchDistance returns the configured search budget or the default one
func (c *Config) SearchDistance() int {
	if c.MaxSearchDistance > 0 {
		return c.MaxSearchDistance
	}
	return DefaultMaxSearchDistance
}
