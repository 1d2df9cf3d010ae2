package service

import (
	"time"

	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// SessionInfo provides information about a map session
type SessionInfo struct {
	ID             string          `json:"id"`
	ConfigName     string          `json:"config_name"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	State          *engine.State   `json:"state"`
	Config         *tilemap.Config `json:"config"`
}

// UnitResult contains the result of placing a unit
type UnitResult struct {
	Unit    engine.Unit   `json:"unit"`
	State   *engine.State `json:"state"`
	Message string        `json:"message"`
}

// PathRequest describes a path search. The search starts from the unit when
// UnitID is set, otherwise from From with the mover Profile.
type PathRequest struct {
	UnitID    string           `json:"unit_id,omitempty"`
	Profile   string           `json:"profile,omitempty"`
	From      *engine.Position `json:"from,omitempty"`
	To        engine.Position  `json:"to"`
	IgnoreRef bool             `json:"ignore_ref,omitempty"`
}

// PathResult contains a planned path and its cost for the mover
type PathResult struct {
	Found       bool               `json:"found"`
	Profile     string             `json:"profile"`
	From        engine.Position    `json:"from"`
	To          engine.Position    `json:"to"`
	Destination *engine.Position   `json:"destination,omitempty"` // last step, differs from To when redirected
	Steps       []pathfinding.Step `json:"steps"`
	Length      int                `json:"length"`
	Cost        float64            `json:"cost"`
	Message     string             `json:"message"`
}

// MoveResult contains the result of a unit move
type MoveResult struct {
	Success bool               `json:"success"`
	Move    *engine.MoveResult `json:"move"`
	State   *engine.State      `json:"state"`
	Message string             `json:"message"`
	Events  []MapEvent         `json:"events,omitempty"`
}

// PaintResult contains the tiles changed by a paint operation
type PaintResult struct {
	Changed []tilemap.Tile `json:"changed"`
	State   *engine.State  `json:"state"`
	Message string         `json:"message"`
	Events  []MapEvent     `json:"events,omitempty"`
}

// MapEvent represents an event that occurred on the map
type MapEvent struct {
	Type      string          `json:"type"` // "unit_added", "move", "arrived", "blocked", "paint", "transition", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.HistoryEntry `json:"actions"`
	TotalActions int                   `json:"total_actions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a map configuration
type ConfigInfo struct {
	Filename    string         `json:"filename"`
	ConfigID    string         `json:"config_id"` // The identifier to use for session creation
	Name        string         `json:"name"`      // Display name
	Description string         `json:"description"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Profiles    []string       `json:"profiles"`
	Groups      map[string]int `json:"groups"` // tiles per group
	HasCircuits bool           `json:"has_circuits"`
}
