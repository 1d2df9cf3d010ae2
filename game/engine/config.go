package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/b3dgs/lionengine-sub021/game/pathfinding"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// InitStateFromConfig creates the initial state of a map configuration
func InitStateFromConfig(config *tilemap.Config) *State {
	return &State{
		ConfigName:          config.Name,
		Width:               config.Width,
		Height:              config.Height,
		Units:               []Unit{},
		Message:             fmt.Sprintf("Welcome to %s", config.Name),
		History:             []HistoryEntry{},
		CurrentActions:      []HistoryEntry{},
		CurrentActionsCount: 0,
	}
}

// NewWalkers creates one walker per mover profile of the configuration
func NewWalkers(config *tilemap.Config) map[string]*pathfinding.Walker {
	walkers := make(map[string]*pathfinding.Walker, len(config.Movers))
	for name, costs := range config.Movers {
		walkers[name] = pathfinding.NewWalker(name, costs)
	}
	return walkers
}

// Profiles returns the mover profile names of the configuration in order
func Profiles(config *tilemap.Config) []string {
	names := make([]string, 0, len(config.Movers))
	for name := range config.Movers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPathFinder creates the path finder described by the configuration
func NewPathFinder(config *tilemap.Config, m *tilemap.Map) (*pathfinding.PathFinder, error) {
	heuristic, ok := pathfinding.HeuristicByName(config.Heuristic)
	if !ok {
		return nil, fmt.Errorf("%w: unknown heuristic '%s'", tilemap.ErrInvalidConfig, config.Heuristic)
	}
	return pathfinding.NewPathFinder(m, config.SearchDistance(), config.AllowDiagonal, pathfinding.WithHeuristic(heuristic)), nil
}

// renderView draws the grid with the legend characters, '?' for unknown references
func renderView(config *tilemap.Config, grid [][]tilemap.TileRef) []string {
	chars := make(map[tilemap.TileRef]byte, len(config.Legend))
	keys := make([]string, 0, len(config.Legend))
	for key := range config.Legend {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ref := config.Legend[key]
		if _, exists := chars[ref]; !exists {
			chars[ref] = key[0]
		}
	}

	view := make([]string, len(grid))
	for y, row := range grid {
		line := make([]byte, len(row))
		for x, ref := range row {
			c, ok := chars[ref]
			if !ok {
				c = '?'
			}
			line[x] = c
		}
		view[y] = string(line)
	}
	return view
}

// addHistory records an action in both the cumulative and current histories
func (s *State) addHistory(entry HistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.ActionNumber = s.TotalActions + 1

	// Append to cumulative history (never cleared by reset) and increment total
	s.History = append(s.History, entry)
	s.TotalActions++

	// Append to current segment history and increment its counter
	s.CurrentActions = append(s.CurrentActions, entry)
	s.CurrentActionsCount++
}
