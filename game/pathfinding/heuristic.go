package pathfinding

import "math"

// Heuristic estimates the remaining cost from (sx, sy) to (dx, dy).
//
// A* only returns optimal paths when the estimate never exceeds the real
// remaining cost. This is not checked.
type Heuristic interface {
	Cost(sx, sy, dx, dy int) float64
}

// HeuristicFunc adapts a plain function to the Heuristic interface.
type HeuristicFunc func(sx, sy, dx, dy int) float64

// Cost calls f(sx, sy, dx, dy).
func (f HeuristicFunc) Cost(sx, sy, dx, dy int) float64 {
	return f(sx, sy, dx, dy)
}

// ClosestHeuristic is the straight line distance to the target.
type ClosestHeuristic struct{}

// Cost returns the Euclidean distance between both tiles.
func (ClosestHeuristic) Cost(sx, sy, dx, dy int) float64 {
	x := float64(dx - sx)
	y := float64(dy - sy)
	return math.Sqrt(x*x + y*y)
}

// ManhattanHeuristic sums horizontal and vertical distances. It overestimates
// when diagonal movement is allowed at unit cost.
type ManhattanHeuristic struct{}

// Cost returns |dx-sx| + |dy-sy|.
func (ManhattanHeuristic) Cost(sx, sy, dx, dy int) float64 {
	return math.Abs(float64(dx-sx)) + math.Abs(float64(dy-sy))
}

// ChebyshevHeuristic is the number of king moves to the target.
type ChebyshevHeuristic struct{}

// Cost returns max(|dx-sx|, |dy-sy|).
func (ChebyshevHeuristic) Cost(sx, sy, dx, dy int) float64 {
	return math.Max(math.Abs(float64(dx-sx)), math.Abs(float64(dy-sy)))
}

// HeuristicByName returns a built-in heuristic: "closest" (default), "manhattan" or "chebyshev".
func HeuristicByName(name string) (Heuristic, bool) {
	switch name {
	case "", "closest", "euclidean":
		return ClosestHeuristic{}, true
	case "manhattan":
		return ManhattanHeuristic{}, true
	case "chebyshev":
		return ChebyshevHeuristic{}, true
	default:
		return nil, false
	}
}
