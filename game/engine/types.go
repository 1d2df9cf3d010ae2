package engine

import (
	"errors"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// Action names recorded in the history
const (
	ActionAddUnit    = "add_unit"
	ActionRemoveUnit = "remove_unit"
	ActionMove       = "move"
	ActionPaint      = "paint"
)

const (
	// Validation constants
	MaxUnits            = 64
	MaxUnitIDLength     = 32
	MaxMoveSteps        = 256
	WebSocketBufferSize = 256
)

var (
	ErrUnknownUnit    = errors.New("unknown unit")
	ErrUnknownProfile = errors.New("unknown mover profile")
	ErrUnitExists     = errors.New("unit already exists")
	ErrInvalidUnitID  = errors.New("invalid unit id")
	ErrTooManyUnits   = errors.New("too many units")
	ErrTileOccupied   = errors.New("tile occupied")
	ErrTileBlocked    = errors.New("tile blocked for mover")
	ErrOutOfBounds    = tilemap.ErrOutOfBounds
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Unit is a game object moving over the map with a mover profile
type Unit struct {
	ID      string `json:"id"`
	Profile string `json:"profile"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Position returns the tile the unit stands on
func (u Unit) Position() Position {
	return Position{X: u.X, Y: u.Y}
}

// MoveResult describes a unit move along a planned path
type MoveResult struct {
	UnitID  string             `json:"unit_id"`
	From    Position           `json:"from"`
	To      Position           `json:"to"`
	Target  Position           `json:"target"`
	Path    []pathfinding.Step `json:"path"`
	Steps   int                `json:"steps"`
	Found   bool               `json:"found"`
	Arrived bool               `json:"arrived"`
}

// TileInfo describes a single tile of the map
type TileInfo struct {
	X         int               `json:"x"`
	Y         int               `json:"y"`
	Ref       tilemap.TileRef   `json:"ref"`
	Group     string            `json:"group,omitempty"`
	GroupType tilemap.GroupType `json:"group_type,omitempty"`
	Category  string            `json:"category,omitempty"`
	Circuit   *circuit.Circuit  `json:"circuit,omitempty"`
	Occupants []string          `json:"occupants,omitempty"`
}

// HistoryEntry represents a single action in the session history
type HistoryEntry struct {
	Action       string           `json:"action"`
	UnitID       string           `json:"unit_id,omitempty"`
	From         Position         `json:"from"`
	To           Position         `json:"to"`
	Tile         *tilemap.TileRef `json:"tile,omitempty"`
	Steps        int              `json:"steps,omitempty"`
	Changed      int              `json:"changed,omitempty"`
	Timestamp    int64            `json:"timestamp"`
	Success      bool             `json:"success"`
	ActionNumber int              `json:"action_number"`
}

// State represents the complete world state of a session
type State struct {
	ConfigName   string              `json:"config_name"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Grid         [][]tilemap.TileRef `json:"grid"`
	Units        []Unit              `json:"units"`
	Message      string              `json:"message"`
	History      []HistoryEntry      `json:"history"`
	TotalActions int                 `json:"total_actions"`

	// CurrentActions tracks only the actions since the last reset. It mirrors History
	// entries but gets cleared on reset while History remains cumulative.
	CurrentActions      []HistoryEntry `json:"current_actions"`
	CurrentActionsCount int            `json:"current_actions_count"`

	// View renders the grid with the legend characters of the config
	View []string `json:"view,omitempty"`
}
