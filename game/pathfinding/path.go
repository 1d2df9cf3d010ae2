package pathfinding

import (
	"fmt"
	"strings"
)

// Step is a single tile of a path.
type Step struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Path is an ordered list of steps from origin to destination.
type Path struct {
	steps []Step
}

// NewPath creates a path from the given steps.
func NewPath(steps ...Step) *Path {
	p := &Path{}
	p.steps = append(p.steps, steps...)
	return p
}

// Length returns the number of steps, origin included.
func (p *Path) Length() int {
	return len(p.steps)
}

// Step returns the step at index.
func (p *Path) Step(index int) Step {
	return p.steps[index]
}

// X returns the horizontal tile of the step at index.
func (p *Path) X(index int) int {
	return p.steps[index].X
}

// Y returns the vertical tile of the step at index.
func (p *Path) Y(index int) int {
	return p.steps[index].Y
}

// Append adds a step at the end of the path.
func (p *Path) Append(x, y int) {
	p.steps = append(p.steps, Step{X: x, Y: y})
}

// Prepend adds a step at the start of the path.
func (p *Path) Prepend(x, y int) {
	p.steps = append([]Step{{X: x, Y: y}}, p.steps...)
}

// Contains reports whether the path goes through (x, y).
func (p *Path) Contains(x, y int) bool {
	for _, s := range p.steps {
		if s.X == x && s.Y == y {
			return true
		}
	}
	return false
}

// Last returns the final step. ok is false on an empty path.
func (p *Path) Last() (Step, bool) {
	if len(p.steps) == 0 {
		return Step{}, false
	}
	return p.steps[len(p.steps)-1], true
}

// Steps returns a copy of the steps.
func (p *Path) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

func (p *Path) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = fmt.Sprintf("(%d,%d)", s.X, s.Y)
	}
	return strings.Join(parts, "->")
}
