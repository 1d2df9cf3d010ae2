package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// mapServiceImpl implements the MapService interface
type mapServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewMapService creates a new map service instance
func NewMapService(sessions SessionManager, configs ConfigManager) MapService {
	return &mapServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *mapServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// session fetches a session and marks it accessed
func (s *mapServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// persist saves a session after a change; failures only warn
func (s *mapServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after %s: %v\n", sessionID, after, err)
	}
}

func (s *mapServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.GetState(),
		Config:         sess.Config,
	}
}

// CreateSession creates a new session on a map configuration
func (s *mapServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *tilemap.Config
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	table, err := s.configs.LoadCircuits(configID)
	if err != nil {
		fmt.Printf("Warning: Failed to load circuits for %s, extracting from map: %v\n", configID, err)
		table = nil
	}

	sess, err := s.sessions.Create("", config, table)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	info := s.info(sess)
	info.ConfigName = configID
	return info, nil
}

// GetSession retrieves session information
func (s *mapServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *mapServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *mapServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// AddUnit places a unit with a mover profile on the map
func (s *mapServiceImpl) AddUnit(ctx context.Context, sessionID, unitID, profile string, x, y int) (*UnitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	unit, err := sess.Engine.AddUnit(unitID, profile, x, y)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	s.persist(sessionID, "adding unit")

	return &UnitResult{Unit: unit, State: state, Message: state.Message}, nil
}

// RemoveUnit takes a unit off the map
func (s *mapServiceImpl) RemoveUnit(ctx context.Context, sessionID, unitID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.RemoveUnit(unitID); err != nil {
		return nil, err
	}
	s.persist(sessionID, "removing unit")
	return sess.Engine.GetState(), nil
}

// FindPath plans a path without moving anything
func (s *mapServiceImpl) FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine

	result := &PathResult{To: req.To, Steps: []pathfinding.Step{}}
	var path *pathfinding.Path
	if req.UnitID != "" {
		unit, err := eng.GetUnit(req.UnitID)
		if err != nil {
			return nil, err
		}
		result.Profile = unit.Profile
		result.From = unit.Position()
		p, found, err := eng.FindPath(req.UnitID, req.To.X, req.To.Y, req.IgnoreRef)
		if err != nil {
			return nil, err
		}
		result.Found = found
		path = p
	} else {
		if req.Profile == "" || req.From == nil {
			return nil, fmt.Errorf("%w: either unit_id or profile and from are required", ErrInvalidRequest)
		}
		result.Profile = req.Profile
		result.From = *req.From
		p, found, err := eng.FindPathFrom(req.Profile, req.From.X, req.From.Y, req.To.X, req.To.Y, req.IgnoreRef)
		if err != nil {
			return nil, err
		}
		result.Found = found
		path = p
	}

	if !result.Found {
		result.Message = fmt.Sprintf("No path for %s from (%d,%d) to (%d,%d)",
			result.Profile, result.From.X, result.From.Y, req.To.X, req.To.Y)
		return result, nil
	}

	walker, err := eng.Walker(result.Profile)
	if err != nil {
		return nil, err
	}
	last, _ := path.Last()
	if last.X != req.To.X || last.Y != req.To.Y {
		result.Destination = &engine.Position{X: last.X, Y: last.Y}
	}
	result.Steps = path.Steps()
	result.Length = path.Length()
	result.Cost = engine.PathCost(eng.Map(), walker, path)
	result.Message = fmt.Sprintf("Path of %d tile(s) found for %s, cost %.2f", result.Length, result.Profile, result.Cost)
	return result, nil
}

// MoveUnit moves a unit along a planned path
func (s *mapServiceImpl) MoveUnit(ctx context.Context, sessionID, unitID string, x, y, maxSteps int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	move, err := sess.Engine.MoveUnit(unitID, x, y, maxSteps)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success: move.Found && (move.Steps > 0 || move.Arrived),
		Move:    move,
		State:   state,
		Message: state.Message,
		Events:  moveEvents(move),
	}

	s.persist(sessionID, "move")
	return result, nil
}

// PaintTile places a tile and resolves the transitions around it
func (s *mapServiceImpl) PaintTile(ctx context.Context, sessionID string, x, y int, ref tilemap.TileRef) (*PaintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	changed, err := sess.Engine.PaintTile(x, y, ref)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()

	now := time.Now()
	events := []MapEvent{{
		Type:      "paint",
		Message:   fmt.Sprintf("Painted %s at (%d,%d)", ref, x, y),
		Timestamp: now,
		Position:  engine.Position{X: x, Y: y},
	}}
	for _, t := range changed[1:] {
		events = append(events, MapEvent{
			Type:      "transition",
			Message:   fmt.Sprintf("Tile (%d,%d) resolved to %s", t.X, t.Y, t.Ref),
			Timestamp: now,
			Position:  engine.Position{X: t.X, Y: t.Y},
		})
	}

	s.persist(sessionID, "paint")
	return &PaintResult{Changed: changed, State: state, Message: state.Message, Events: events}, nil
}

// DescribeTile returns the group, category, circuit and occupants of a tile
func (s *mapServiceImpl) DescribeTile(ctx context.Context, sessionID string, x, y int) (*engine.TileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.DescribeTile(x, y)
}

// Reset restores the map of a session and removes its units
func (s *mapServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.Reset()

	s.persist(sessionID, "reset")
	return state, nil
}

// GetState returns the current state of a session
func (s *mapServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetHistory returns paginated action history
func (s *mapServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []engine.HistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				actions = append(actions, history[i])
			}
		} else {
			actions = append(actions, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ExtractCircuits harvests the circuits of several configurations into one table
func (s *mapServiceImpl) ExtractCircuits(ctx context.Context, configNames []string) (*circuit.Table, error) {
	if len(configNames) == 0 {
		return nil, fmt.Errorf("%w: at least one config is required", ErrInvalidRequest)
	}
	configs := make([]*tilemap.Config, 0, len(configNames))
	for _, name := range configNames {
		config, err := s.configs.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return circuit.ExtractConfigs(configs...)
}

// ExportCircuits encodes the circuits of a session, or of a configuration
// when sessionID is empty, as XML
func (s *mapServiceImpl) ExportCircuits(ctx context.Context, sessionID, configName string) ([]byte, error) {
	var table *circuit.Table
	switch {
	case sessionID != "":
		s.mu.RLock()
		sess, err := s.session(sessionID)
		if err == nil {
			table = sess.Engine.Circuits()
		}
		s.mu.RUnlock()
		if err != nil {
			return nil, err
		}
	case configName != "":
		var err error
		table, err = s.configs.LoadCircuits(configName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: a session or a config is required", ErrInvalidRequest)
	}

	var buf bytes.Buffer
	if err := circuit.Export(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveCircuits stores a circuit table for a configuration
func (s *mapServiceImpl) SaveCircuits(ctx context.Context, configName string, table *circuit.Table) error {
	if table == nil {
		return fmt.Errorf("%w: circuit table is required", ErrInvalidRequest)
	}
	return s.configs.SaveCircuits(configName, table)
}

// ListConfigs returns available map configurations
func (s *mapServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific map configuration
func (s *mapServiceImpl) LoadConfig(ctx context.Context, configName string) (*tilemap.Config, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a map configuration to disk
func (s *mapServiceImpl) SaveConfig(ctx context.Context, configName string, config *tilemap.Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is required", ErrInvalidRequest)
	}
	if err := tilemap.ValidateConfig(config); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, config)
}

// moveEvents generates events from a unit move
func moveEvents(move *engine.MoveResult) []MapEvent {
	now := time.Now()
	var events []MapEvent
	if !move.Found {
		return append(events, MapEvent{
			Type:      "blocked",
			Message:   fmt.Sprintf("No path for unit %s to (%d,%d)", move.UnitID, move.Target.X, move.Target.Y),
			Timestamp: now,
			Position:  move.From,
		})
	}
	if move.Steps > 0 {
		events = append(events, MapEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Unit %s moved %d step(s)", move.UnitID, move.Steps),
			Timestamp: now,
			Position:  move.To,
		})
	}
	if move.Arrived {
		events = append(events, MapEvent{
			Type:      "arrived",
			Message:   fmt.Sprintf("Unit %s arrived at (%d,%d)", move.UnitID, move.To.X, move.To.Y),
			Timestamp: now,
			Position:  move.To,
		})
	}
	return events
}
