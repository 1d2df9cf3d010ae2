package circuit

import (
	"errors"
	"fmt"
)

// CircuitType is a neighbour pattern. Bits from high to low are south, west,
// north and east; a bit is set when that neighbour shares the tile group.
type CircuitType uint8

const (
	Block CircuitType = iota
	Right
	Top
	AngleTopRight
	Left
	Horizontal
	AngleTopLeft
	T3JTop
	Bottom
	AngleBottomRight
	Vertical
	T3JRight
	AngleBottomLeft
	T3JBottom
	T3JLeft
	Middle
)

const (
	bitSouth = 1 << 3
	bitWest  = 1 << 2
	bitNorth = 1 << 1
	bitEast  = 1
)

var ErrUnknownCircuitType = errors.New("unknown circuit type")

var circuitTypeNames = [...]string{
	Block:            "BLOCK",
	Right:            "RIGHT",
	Top:              "TOP",
	AngleTopRight:    "ANGLE_TOP_RIGHT",
	Left:             "LEFT",
	Horizontal:       "HORIZONTAL",
	AngleTopLeft:     "ANGLE_TOP_LEFT",
	T3JTop:           "T3J_TOP",
	Bottom:           "BOTTOM",
	AngleBottomRight: "ANGLE_BOTTOM_RIGHT",
	Vertical:         "VERTICAL",
	T3JRight:         "T3J_RIGHT",
	AngleBottomLeft:  "ANGLE_BOTTOM_LEFT",
	T3JBottom:        "T3J_BOTTOM",
	T3JLeft:          "T3J_LEFT",
	Middle:           "MIDDLE",
}

// CircuitTypes returns every circuit type in pattern order
func CircuitTypes() []CircuitType {
	types := make([]CircuitType, len(circuitTypeNames))
	for i := range types {
		types[i] = CircuitType(i)
	}
	return types
}

// FromPattern returns the type of a 4-bit pattern. It panics on a value that
// does not fit in 4 bits.
func FromPattern(pattern int) CircuitType {
	if pattern < 0 || pattern >= len(circuitTypeNames) {
		panic(fmt.Sprintf("circuit: invalid pattern %d", pattern))
	}
	return CircuitType(pattern)
}

// FromSides builds the type from the sides sharing the tile group
func FromSides(south, west, north, east bool) CircuitType {
	var pattern CircuitType
	if south {
		pattern |= bitSouth
	}
	if west {
		pattern |= bitWest
	}
	if north {
		pattern |= bitNorth
	}
	if east {
		pattern |= bitEast
	}
	return pattern
}

// ParseCircuitType returns the type of a name such as "VERTICAL"
func ParseCircuitType(name string) (CircuitType, error) {
	for i, n := range circuitTypeNames {
		if n == name {
			return CircuitType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCircuitType, name)
}

// South reports whether the south neighbour shares the tile group
func (t CircuitType) South() bool { return t&bitSouth != 0 }

// West reports whether the west neighbour shares the tile group
func (t CircuitType) West() bool { return t&bitWest != 0 }

// North reports whether the north neighbour shares the tile group
func (t CircuitType) North() bool { return t&bitNorth != 0 }

// East reports whether the east neighbour shares the tile group
func (t CircuitType) East() bool { return t&bitEast != 0 }

// Valid reports whether the type is one of the 16 patterns
func (t CircuitType) Valid() bool {
	return int(t) < len(circuitTypeNames)
}

func (t CircuitType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("CircuitType(%d)", t)
	}
	return circuitTypeNames[t]
}

// MarshalText encodes the type by name
func (t CircuitType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCircuitType, t)
	}
	return []byte(circuitTypeNames[t]), nil
}

// UnmarshalText decodes a type name
func (t *CircuitType) UnmarshalText(text []byte) error {
	parsed, err := ParseCircuitType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
