package engine

import (
	"fmt"
	"sort"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// Engine provides the main interface for world operations
type Engine interface {
	// State management
	GetState() *State
	SetState(state *State) error
	Reset() *State

	// Configuration
	GetConfig() *tilemap.Config
	Map() *tilemap.Map

	// Units
	Units() []Unit
	GetUnit(id string) (Unit, error)
	AddUnit(id, profile string, x, y int) (Unit, error)
	RemoveUnit(id string) error
	Walker(profile string) (*pathfinding.Walker, error)

	// Pathfinding and movement
	FindPath(unitID string, x, y int, ignoreRef bool) (*pathfinding.Path, bool, error)
	FindPathFrom(profile string, sx, sy, dx, dy int, ignoreRef bool) (*pathfinding.Path, bool, error)
	MoveUnit(unitID string, x, y, maxSteps int) (*MoveResult, error)

	// Tiles and circuits
	PaintTile(x, y int, ref tilemap.TileRef) ([]tilemap.Tile, error)
	DescribeTile(x, y int) (*TileInfo, error)
	Circuit(x, y int) (circuit.Circuit, bool, error)
	ExtractCircuits() *circuit.Table
	SetCircuits(table *circuit.Table)
	Circuits() *circuit.Table

	// History
	GetHistory() []HistoryEntry
	GetLastAction() *HistoryEntry
}

// WorldEngine implements the Engine interface over a tile map
type WorldEngine struct {
	config  *tilemap.Config
	tileMap *tilemap.Map
	finder  *pathfinding.PathFinder
	model   *circuit.Model
	walkers map[string]*pathfinding.Walker
	units   map[string]*Unit
	state   *State
}

// NewEngine creates a world engine for the configuration. When table is nil
// the circuits are extracted from the map itself.
func NewEngine(config *tilemap.Config, table *circuit.Table) (*WorldEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := tilemap.ValidateConfig(config); err != nil {
		return nil, err
	}

	e := &WorldEngine{
		config:  config,
		walkers: NewWalkers(config),
	}
	if err := e.build(); err != nil {
		return nil, err
	}
	if table == nil {
		table = circuit.Extract(e.tileMap)
	}
	e.model = circuit.NewModel(e.tileMap, table)
	return e, nil
}

// NewEngineWithDefaults creates a world engine on the built-in meadow map
func NewEngineWithDefaults() *WorldEngine {
	e, err := NewEngine(tilemap.DefaultConfig(), nil)
	if err != nil {
		panic(fmt.Sprintf("engine: default config is invalid: %v", err))
	}
	return e
}

// build creates the map, the path finder and an empty state from the config
func (e *WorldEngine) build() error {
	m, err := tilemap.NewMap(e.config)
	if err != nil {
		return err
	}
	finder, err := NewPathFinder(e.config, m)
	if err != nil {
		return err
	}

	e.tileMap = m
	e.finder = finder
	e.units = make(map[string]*Unit)
	e.state = InitStateFromConfig(e.config)
	if e.model != nil {
		e.model = circuit.NewModel(m, e.model.Table())
	}
	return nil
}

// GetState returns a snapshot of the state. The snapshot shares nothing
// mutable with the engine and stays valid after later changes.
func (e *WorldEngine) GetState() *State {
	grid := make([][]tilemap.TileRef, e.tileMap.Height())
	for y := range grid {
		grid[y] = make([]tilemap.TileRef, e.tileMap.Width())
		for x := range grid[y] {
			tile, _ := e.tileMap.Tile(x, y)
			grid[y][x] = tile.Ref
		}
	}

	snapshot := *e.state
	snapshot.Grid = grid
	snapshot.Units = e.Units()
	snapshot.View = renderView(e.config, grid)
	snapshot.History = append([]HistoryEntry{}, e.state.History...)
	snapshot.CurrentActions = append([]HistoryEntry{}, e.state.CurrentActions...)
	return &snapshot
}

// SetState restores a state (used for persistence loading)
func (e *WorldEngine) SetState(state *State) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Width != e.tileMap.Width() || state.Height != e.tileMap.Height() || len(state.Grid) != state.Height {
		return fmt.Errorf("state size %dx%d does not match map size %dx%d",
			state.Width, state.Height, e.tileMap.Width(), e.tileMap.Height())
	}

	var tiles []tilemap.Tile
	for y, row := range state.Grid {
		if len(row) != state.Width {
			return fmt.Errorf("state row %d has %d tiles, expected %d", y, len(row), state.Width)
		}
		for x, ref := range row {
			tiles = append(tiles, tilemap.Tile{X: x, Y: y, Ref: ref})
		}
	}
	for _, u := range state.Units {
		if _, ok := e.walkers[u.Profile]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProfile, u.Profile)
		}
		if !e.tileMap.InBounds(u.X, u.Y) {
			return fmt.Errorf("%w: unit %s at (%d, %d)", ErrOutOfBounds, u.ID, u.X, u.Y)
		}
	}

	for _, u := range e.units {
		e.tileMap.Release(u.ID, u.X, u.Y)
	}
	if err := e.tileMap.Restore(tiles); err != nil {
		return err
	}
	e.units = make(map[string]*Unit, len(state.Units))
	for _, u := range state.Units {
		unit := u
		e.units[unit.ID] = &unit
		e.tileMap.Occupy(unit.ID, unit.X, unit.Y)
	}

	restored := *state
	restored.History = append([]HistoryEntry{}, state.History...)
	restored.CurrentActions = append([]HistoryEntry{}, state.CurrentActions...)
	e.state = &restored
	return nil
}

// Reset restores the map from the configuration and removes every unit
func (e *WorldEngine) Reset() *State {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalActions

	if err := e.build(); err != nil {
		// the config was validated when the engine was created
		panic(fmt.Sprintf("engine: rebuild failed: %v", err))
	}

	// Restore cumulative history and totals; clear only the current segment
	e.state.History = prevHistory
	e.state.TotalActions = prevTotal
	e.state.CurrentActions = []HistoryEntry{}
	e.state.CurrentActionsCount = 0
	e.state.Message = "Map reset to initial state"

	return e.GetState()
}

// GetConfig returns the map configuration
func (e *WorldEngine) GetConfig() *tilemap.Config {
	return e.config
}

// Map returns the live tile map
func (e *WorldEngine) Map() *tilemap.Map {
	return e.tileMap
}

// Units returns the units ordered by id
func (e *WorldEngine) Units() []Unit {
	units := make([]Unit, 0, len(e.units))
	for _, u := range e.units {
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// GetUnit returns a unit by id
func (e *WorldEngine) GetUnit(id string) (Unit, error) {
	u, ok := e.units[id]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %s", ErrUnknownUnit, id)
	}
	return *u, nil
}

// AddUnit places a new unit on a free tile its profile can stand on
func (e *WorldEngine) AddUnit(id, profile string, x, y int) (Unit, error) {
	if id == "" || len(id) > MaxUnitIDLength {
		return Unit{}, fmt.Errorf("%w: %q", ErrInvalidUnitID, id)
	}
	if _, exists := e.units[id]; exists {
		return Unit{}, fmt.Errorf("%w: %s", ErrUnitExists, id)
	}
	if len(e.units) >= MaxUnits {
		return Unit{}, fmt.Errorf("%w: limit is %d", ErrTooManyUnits, MaxUnits)
	}
	walker, ok := e.walkers[profile]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
	}
	if !e.tileMap.InBounds(x, y) {
		return Unit{}, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}

	mover := newUnitMover(id, walker)
	if e.tileMap.IsBlocked(mover, x, y, false) {
		if occupants := e.tileMap.Occupants(x, y); len(occupants) > 0 {
			return Unit{}, fmt.Errorf("%w: (%d, %d) by %v", ErrTileOccupied, x, y, occupants)
		}
		return Unit{}, fmt.Errorf("%w: %s cannot stand on %s at (%d, %d)",
			ErrTileBlocked, profile, e.tileMap.GroupOf(x, y), x, y)
	}

	unit := &Unit{ID: id, Profile: profile, X: x, Y: y}
	e.units[id] = unit
	e.tileMap.Occupy(id, x, y)

	e.state.Message = fmt.Sprintf("Unit %s (%s) placed at (%d,%d)", id, profile, x, y)
	e.state.addHistory(HistoryEntry{
		Action:  ActionAddUnit,
		UnitID:  id,
		From:    unit.Position(),
		To:      unit.Position(),
		Success: true,
	})
	return *unit, nil
}

// RemoveUnit takes a unit off the map
func (e *WorldEngine) RemoveUnit(id string) error {
	u, ok := e.units[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUnit, id)
	}
	e.tileMap.Release(id, u.X, u.Y)
	delete(e.units, id)

	e.state.Message = fmt.Sprintf("Unit %s removed", id)
	e.state.addHistory(HistoryEntry{
		Action:  ActionRemoveUnit,
		UnitID:  id,
		From:    u.Position(),
		To:      u.Position(),
		Success: true,
	})
	return nil
}

// FindPath searches a path for an existing unit, avoiding other units unless ignoreRef is set
func (e *WorldEngine) FindPath(unitID string, x, y int, ignoreRef bool) (*pathfinding.Path, bool, error) {
	u, ok := e.units[unitID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownUnit, unitID)
	}
	if !e.tileMap.InBounds(x, y) {
		return nil, false, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	path, found := e.finder.FindPath(e.moverOf(u), u.X, u.Y, x, y, ignoreRef)
	return path, found, nil
}

// FindPathFrom searches a path for a mover profile between two tiles
func (e *WorldEngine) FindPathFrom(profile string, sx, sy, dx, dy int, ignoreRef bool) (*pathfinding.Path, bool, error) {
	walker, ok := e.walkers[profile]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
	}
	if !e.tileMap.InBounds(sx, sy) {
		return nil, false, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, sx, sy)
	}
	if !e.tileMap.InBounds(dx, dy) {
		return nil, false, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, dx, dy)
	}
	path, found := e.finder.FindPath(walker, sx, sy, dx, dy, ignoreRef)
	return path, found, nil
}

// PaintTile places a tile reference and resolves the transitions around it.
// It returns every tile changed, the painted one first.
func (e *WorldEngine) PaintTile(x, y int, ref tilemap.TileRef) ([]tilemap.Tile, error) {
	before, ok := e.tileMap.Tile(x, y)
	if !ok {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	if err := e.tileMap.SetTile(x, y, ref); err != nil {
		return nil, err
	}

	resolved := e.model.Resolve(tilemap.Tile{X: x, Y: y, Ref: ref})
	painted, _ := e.tileMap.Tile(x, y)
	changed := []tilemap.Tile{painted}
	for _, t := range resolved {
		if t.X != x || t.Y != y {
			changed = append(changed, t)
		}
	}

	e.state.Message = fmt.Sprintf("Painted %s at (%d,%d), %d tile(s) changed", painted.Ref, x, y, len(changed))
	e.state.addHistory(HistoryEntry{
		Action:  ActionPaint,
		From:    Position{X: x, Y: y},
		To:      Position{X: x, Y: y},
		Tile:    &painted.Ref,
		Changed: len(changed),
		Success: before.Ref != painted.Ref || len(changed) > 1,
	})
	return changed, nil
}

// DescribeTile returns the group, category, circuit and occupants of a tile
func (e *WorldEngine) DescribeTile(x, y int) (*TileInfo, error) {
	tile, ok := e.tileMap.Tile(x, y)
	if !ok {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	group := e.tileMap.Group(tile.Ref)
	info := &TileInfo{
		X:         x,
		Y:         y,
		Ref:       tile.Ref,
		Group:     group,
		Category:  e.tileMap.Category(x, y),
		Occupants: e.tileMap.Occupants(x, y),
	}
	if group != "" {
		info.GroupType = e.tileMap.GroupType(group)
	}
	if c, ok := circuit.NewExtractor(e.tileMap).Circuit(tile); ok {
		info.Circuit = &c
	}
	return info, nil
}

// Circuit classifies the tile at (x, y)
func (e *WorldEngine) Circuit(x, y int) (circuit.Circuit, bool, error) {
	tile, ok := e.tileMap.Tile(x, y)
	if !ok {
		return circuit.Circuit{}, false, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	c, found := circuit.NewExtractor(e.tileMap).Circuit(tile)
	return c, found, nil
}

// ExtractCircuits harvests the circuits of a snapshot of the current map
func (e *WorldEngine) ExtractCircuits() *circuit.Table {
	return circuit.Extract(e.tileMap.Clone())
}

// SetCircuits replaces the table used to resolve painted tiles
func (e *WorldEngine) SetCircuits(table *circuit.Table) {
	e.model.SetTable(table)
}

// Circuits returns the table used to resolve painted tiles
func (e *WorldEngine) Circuits() *circuit.Table {
	return e.model.Table()
}

// GetHistory returns the complete action history
func (e *WorldEngine) GetHistory() []HistoryEntry {
	return append([]HistoryEntry{}, e.state.History...)
}

// GetLastAction returns the last action, or nil if none
func (e *WorldEngine) GetLastAction() *HistoryEntry {
	if len(e.state.History) == 0 {
		return nil
	}
	last := e.state.History[len(e.state.History)-1]
	return &last
}

// Walker returns the mover profile of the config by name
func (e *WorldEngine) Walker(profile string) (*pathfinding.Walker, error) {
	walker, ok := e.walkers[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, profile)
	}
	return walker, nil
}

func (e *WorldEngine) moverOf(u *Unit) pathfinding.Mover {
	return newUnitMover(u.ID, e.walkers[u.Profile])
}
