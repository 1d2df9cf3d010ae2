package engine

import (
	"fmt"

	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
)

// unitMover is a walker acting under the identity of a unit, so the unit's
// own tile reference never blocks it.
type unitMover struct {
	id     string
	walker *pathfinding.Walker
}

func newUnitMover(id string, walker *pathfinding.Walker) *unitMover {
	return &unitMover{id: id, walker: walker}
}

func (m *unitMover) ID() string                   { return m.id }
func (m *unitMover) Blocks(category string) bool  { return m.walker.Blocks(category) }
func (m *unitMover) Cost(category string) float64 { return m.walker.Cost(category) }

// MoveUnit plans a path to (x, y) and steps the unit along it, at most
// maxSteps tiles (0 means the whole path). Tiles referenced by other units
// are avoided. A blocked destination is replaced by the closest free tile.
func (e *WorldEngine) MoveUnit(unitID string, x, y, maxSteps int) (*MoveResult, error) {
	u, ok := e.units[unitID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, unitID)
	}
	if !e.tileMap.InBounds(x, y) {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	if maxSteps <= 0 || maxSteps > MaxMoveSteps {
		maxSteps = MaxMoveSteps
	}

	from := u.Position()
	result := &MoveResult{
		UnitID: unitID,
		From:   from,
		To:     from,
		Target: Position{X: x, Y: y},
		Path:   []pathfinding.Step{},
	}

	if from == result.Target {
		result.Found = true
		result.Arrived = true
		result.Path = []pathfinding.Step{{X: x, Y: y}}
		e.state.Message = fmt.Sprintf("Unit %s already at (%d,%d)", unitID, x, y)
		return result, nil
	}

	mover := e.moverOf(u)
	path, found := e.finder.FindPath(mover, u.X, u.Y, x, y, false)
	if !found {
		e.state.Message = fmt.Sprintf("No path for unit %s from (%d,%d) to (%d,%d)", unitID, u.X, u.Y, x, y)
		e.state.addHistory(HistoryEntry{
			Action:  ActionMove,
			UnitID:  unitID,
			From:    from,
			To:      from,
			Success: false,
		})
		return result, nil
	}
	result.Found = true
	result.Path = path.Steps()

	for i := 1; i < path.Length() && result.Steps < maxSteps; i++ {
		nx, ny := path.X(i), path.Y(i)
		if e.tileMap.IsBlocked(mover, nx, ny, false) {
			break
		}
		e.tileMap.Release(u.ID, u.X, u.Y)
		u.X, u.Y = nx, ny
		e.tileMap.Occupy(u.ID, u.X, u.Y)
		result.Steps++
	}

	result.To = u.Position()
	last, _ := path.Last()
	result.Arrived = result.To == Position{X: last.X, Y: last.Y}

	switch {
	case result.To == result.Target:
		e.state.Message = fmt.Sprintf("Unit %s reached (%d,%d) in %d step(s)", unitID, x, y, result.Steps)
	case result.Arrived:
		e.state.Message = fmt.Sprintf("Unit %s stopped at (%d,%d), closest to blocked (%d,%d)", unitID, u.X, u.Y, x, y)
	default:
		e.state.Message = fmt.Sprintf("Unit %s moved %d step(s) toward (%d,%d)", unitID, result.Steps, x, y)
	}

	e.state.addHistory(HistoryEntry{
		Action:  ActionMove,
		UnitID:  unitID,
		From:    from,
		To:      result.To,
		Steps:   result.Steps,
		Success: result.Steps > 0,
	})
	return result, nil
}
