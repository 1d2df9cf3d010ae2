package circuit

import "fmt"

// Circuit is a neighbour pattern between the group of a tile (In) and the
// other group around it (Out). It is comparable and used as a map key.
type Circuit struct {
	Type CircuitType `json:"type"`
	In   string      `json:"in"`
	Out  string      `json:"out"`
}

// New creates a circuit
func New(circuitType CircuitType, in, out string) Circuit {
	return Circuit{Type: circuitType, In: in, Out: out}
}

// Less orders circuits by in group, out group then type
func (c Circuit) Less(other Circuit) bool {
	if c.In != other.In {
		return c.In < other.In
	}
	if c.Out != other.Out {
		return c.Out < other.Out
	}
	return c.Type < other.Type
}

func (c Circuit) String() string {
	return fmt.Sprintf("%s %s->%s", c.Type, c.In, c.Out)
}
