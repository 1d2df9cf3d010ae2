package pathfinding

import "github.com/zyedidia/generic/mapset"

// PathFinder runs A* searches over a TileMapPath.
type PathFinder struct {
	mapPath           TileMapPath
	heuristic         Heuristic
	maxSearchDistance int
	allowDiagMovement bool

	width  int
	height int
	nodes  []Node
	open   *SortedList
	closed mapset.Set[*Node]
}

// Option customizes a PathFinder.
type Option func(*PathFinder)

// WithHeuristic replaces the default closest heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(p *PathFinder) {
		if h != nil {
			p.heuristic = h
		}
	}
}

// NewPathFinder creates a path finder for the map. maxSearchDistance bounds
// the depth of explored nodes; allowDiagMovement enables 8-neighbour moves.
func NewPathFinder(mapPath TileMapPath, maxSearchDistance int, allowDiagMovement bool, opts ...Option) *PathFinder {
	p := &PathFinder{
		mapPath:           mapPath,
		heuristic:         ClosestHeuristic{},
		maxSearchDistance: maxSearchDistance,
		allowDiagMovement: allowDiagMovement,
		width:             mapPath.Width(),
		height:            mapPath.Height(),
		open:              NewSortedList(),
		closed:            mapset.New[*Node](),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.nodes = make([]Node, p.width*p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.nodes[p.index(x, y)] = newNode(x, y)
		}
	}
	return p
}

// MaxSearchDistance returns the search depth budget.
func (p *PathFinder) MaxSearchDistance() int {
	return p.maxSearchDistance
}

// AllowDiagMovement reports whether diagonal moves are explored.
func (p *PathFinder) AllowDiagMovement() bool {
	return p.allowDiagMovement
}

// FindPath searches a path for the mover from (sx, sy) to (dx, dy).
//
// When the destination is blocked the search is redirected to the closest
// available tile around it, which goes through the same checks as the
// original destination. ok is false when no path exists within the search
// budget.
func (p *PathFinder) FindPath(mover Mover, sx, sy, dx, dy int, ignoreRef bool) (*Path, bool) {
	if !p.inBounds(sx, sy) || !p.inBounds(dx, dy) {
		return nil, false
	}

	// An adjacent blocked target is never searched for.
	if p.mapPath.IsBlocked(mover, dx, dy, false) && abs(sx-dx) <= 1 && abs(sy-dy) <= 1 {
		return nil, false
	}

	if p.mapPath.IsBlocked(mover, dx, dy, ignoreRef) {
		tile, found := p.mapPath.ClosestAvailableTile(mover, dx, dy, p.height, sx, sy)
		// A blocked substitute would redirect forever.
		if !found || !p.inBounds(tile.X, tile.Y) || p.mapPath.IsBlocked(mover, tile.X, tile.Y, ignoreRef) {
			return nil, false
		}
		return p.FindPath(mover, sx, sy, tile.X, tile.Y, ignoreRef)
	}
	return p.search(mover, sx, sy, dx, dy, ignoreRef)
}

func (p *PathFinder) search(mover Mover, sx, sy, dx, dy int, ignoreRef bool) (*Path, bool) {
	start := p.node(sx, sy)
	target := p.node(dx, dy)

	start.Cost = 0
	start.Depth = 0
	p.closed = mapset.New[*Node]()
	p.open.Clear()
	p.open.Add(start)
	target.clearParent()

	maxDepth := 0
	for maxDepth < p.maxSearchDistance && p.open.Size() != 0 {
		current := p.open.First()
		if current == target {
			break
		}
		p.open.Remove(current)
		p.closed.Put(current)

		maxDepth = p.expand(mover, sx, sy, dx, dy, ignoreRef, current, maxDepth)
	}

	if !target.HasParent() {
		return nil, false
	}

	path := NewPath()
	for node := target; node != start; node = &p.nodes[node.parent] {
		path.Prepend(node.X, node.Y)
	}
	path.Prepend(sx, sy)
	return path, true
}

// expand evaluates the neighbours of current and returns the deepest depth reached.
func (p *PathFinder) expand(mover Mover, sx, sy, dx, dy int, ignoreRef bool, current *Node, maxDepth int) int {
	currentIndex := p.index(current.X, current.Y)
	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			if x == 0 && y == 0 {
				continue
			}
			if !p.allowDiagMovement && x != 0 && y != 0 {
				continue
			}

			xp := current.X + x
			yp := current.Y + y
			if !p.isValidLocation(mover, sx, sy, xp, yp, ignoreRef) {
				continue
			}

			nextStepCost := current.Cost + p.mapPath.Cost(mover, current.X, current.Y, xp, yp)
			neighbour := p.node(xp, yp)

			if nextStepCost < neighbour.Cost {
				p.open.Remove(neighbour)
				p.closed.Remove(neighbour)
			}
			if !p.open.Contains(neighbour) && !p.closed.Has(neighbour) {
				neighbour.Cost = nextStepCost
				neighbour.Heuristic = p.heuristic.Cost(xp, yp, dx, dy)
				maxDepth = max(maxDepth, neighbour.setParent(currentIndex, current))
				p.open.Add(neighbour)
			}
		}
	}
	return maxDepth
}

// isValidLocation accepts in-bounds tiles that are free, the start tile always being free.
func (p *PathFinder) isValidLocation(mover Mover, sx, sy, x, y int, ignoreRef bool) bool {
	if !p.inBounds(x, y) {
		return false
	}
	return (sx == x && sy == y) || !p.mapPath.IsBlocked(mover, x, y, ignoreRef)
}

func (p *PathFinder) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < p.width && y < p.height
}

func (p *PathFinder) index(x, y int) int {
	return y*p.width + x
}

func (p *PathFinder) node(x, y int) *Node {
	return &p.nodes[p.index(x, y)]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
