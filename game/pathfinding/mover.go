package pathfinding

// Mover is an object travelling over the map.
type Mover interface {
	// ID identifies the mover, matching the references it leaves on tiles.
	ID() string

	// Blocks reports whether tiles of the category are impassable for the mover.
	Blocks(category string) bool

	// Cost returns the cost of entering a tile of the category.
	Cost(category string) float64
}

// TileMapPath is the map capability consumed by the PathFinder.
type TileMapPath interface {
	Width() int
	Height() int

	// IsBlocked reports whether the mover cannot stand on (x, y). References
	// left by other objects are skipped when ignoreRef is set.
	IsBlocked(mover Mover, x, y int, ignoreRef bool) bool

	// Cost returns the cost for the mover to go from (sx, sy) to (dx, dy).
	Cost(mover Mover, sx, sy, dx, dy int) float64

	// ClosestAvailableTile searches around (dx, dy), up to radius tiles away,
	// for a free tile closest to (sx, sy).
	ClosestAvailableTile(mover Mover, dx, dy, radius, sx, sy int) (Step, bool)
}

// Walker is a mover profile defined by a cost per crossable category.
type Walker struct {
	Name  string             `json:"name" yaml:"name"`
	Costs map[string]float64 `json:"costs" yaml:"costs"`
}

// NewWalker creates a walker crossing the given categories.
func NewWalker(name string, costs map[string]float64) *Walker {
	return &Walker{Name: name, Costs: costs}
}

// ID returns the walker name.
func (w *Walker) ID() string {
	return w.Name
}

// Blocks reports whether the category is missing from the cost table.
func (w *Walker) Blocks(category string) bool {
	_, ok := w.Costs[category]
	return !ok
}

// Cost returns the cost of the category, 0 when blocked.
func (w *Walker) Cost(category string) float64 {
	return w.Costs[category]
}
