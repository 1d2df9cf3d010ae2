package service

import (
	"context"
	"errors"
	"time"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// MapService defines all map-related operations
type MapService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Map Operations
	AddUnit(ctx context.Context, sessionID, unitID, profile string, x, y int) (*UnitResult, error)
	RemoveUnit(ctx context.Context, sessionID, unitID string) (*engine.State, error)
	FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error)
	MoveUnit(ctx context.Context, sessionID, unitID string, x, y, maxSteps int) (*MoveResult, error)
	PaintTile(ctx context.Context, sessionID string, x, y int, ref tilemap.TileRef) (*PaintResult, error)
	DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error)
	Reset(ctx context.Context, sessionID string) (*engine.State, error)

	// Map State
	GetState(ctx context.Context, sessionID string) (*engine.State, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Circuits
	ExtractCircuits(ctx context.Context, configNames []string) (*circuit.Table, error)
	ExportCircuits(ctx context.Context, sessionID, configName string) ([]byte, error)
	SaveCircuits(ctx context.Context, configName string, table *circuit.Table) error

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*tilemap.Config, error)
	SaveConfig(ctx context.Context, configName string, config *tilemap.Config) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *tilemap.Config, table *circuit.Table) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *tilemap.Config, table *circuit.Table) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles map configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*tilemap.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *tilemap.Config
	SaveConfig(name string, config *tilemap.Config) error

	// LoadCircuits returns the circuit table stored for the config, or the
	// table extracted from its map when none is stored.
	LoadCircuits(name string) (*circuit.Table, error)
	SaveCircuits(name string, table *circuit.Table) error
}

// Session represents an active map session
type Session struct {
	ID             string
	Engine         *engine.WorldEngine
	Config         *tilemap.Config
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
