package circuit

import (
	"testing"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

func TestExtractor_MiddleWhenSurroundedBySameGroup(t *testing.T) {
	m := buildMap(t,
		"GGGGGGG",
		"GGGGGGG",
		"GGGWGGG",
		"GGWWWGG",
		"GGGWGGG",
		"GGGGGGG",
		"GGGGGGG",
	)
	e := NewExtractor(m)

	c, ok := e.Circuit(tileAt(t, m, 3, 3))
	if !ok {
		t.Fatal("Expected classifiable tile")
	}
	if c != New(Middle, "water", "water") {
		t.Errorf("Expected MIDDLE water->water, got %s", c)
	}

	// any grass tile surrounded by grass
	c, ok = e.Circuit(tileAt(t, m, 1, 1))
	if !ok || c != New(Middle, "grass", "grass") {
		t.Errorf("Expected MIDDLE grass->grass, got %s (%v)", c, ok)
	}
}

func TestExtractor_MiddleIgnoresTileVariant(t *testing.T) {
	// the classification depends on groups, not on the exact references
	m := buildMap(t,
		"GGGGG",
		"GG|GG",
		"G-W|G",
		"GG-GG",
		"GGGGG",
	)
	c, ok := NewExtractor(m).Circuit(tileAt(t, m, 2, 2))
	if !ok || c != New(Middle, "water", "water") {
		t.Errorf("Expected MIDDLE water->water, got %s (%v)", c, ok)
	}
}

func TestExtractor_VerticalPattern(t *testing.T) {
	m := buildMap(t,
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
	)

	c, ok := NewExtractor(m).Circuit(tileAt(t, m, 3, 3))
	if !ok {
		t.Fatal("Expected classifiable tile")
	}
	if c != New(Vertical, "water", "grass") {
		t.Errorf("Expected VERTICAL water->grass, got %s", c)
	}
	if !c.Type.North() || !c.Type.South() || c.Type.East() || c.Type.West() {
		t.Errorf("Unexpected sides for %s", c.Type)
	}
}

func TestExtractor_Patterns(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want CircuitType
	}{
		{"horizontal", []string{"GGG", "WWW", "GGG"}, Horizontal},
		{"angle bottom right", []string{"GGG", "GWW", "GWG"}, AngleBottomRight},
		{"angle top left", []string{"GWG", "WWG", "GGG"}, AngleTopLeft},
		{"t3j left", []string{"GWG", "WWG", "GWG"}, T3JLeft},
		{"t3j bottom", []string{"GGG", "WWW", "GWG"}, T3JBottom},
		{"bottom", []string{"GGG", "GWG", "GWG"}, Bottom},
		{"right", []string{"GGG", "GWW", "GGG"}, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildMap(t, tt.rows...)
			c, ok := NewExtractor(m).Circuit(tileAt(t, m, 1, 1))
			if !ok {
				t.Fatal("Expected classifiable tile")
			}
			if c != New(tt.want, "water", "grass") {
				t.Errorf("Expected %s water->grass, got %s", tt.want, c)
			}
		})
	}
}

func TestExtractor_Block(t *testing.T) {
	m := buildMap(t,
		"GGG",
		"GTG",
		"GGG",
	)
	c, ok := NewExtractor(m).Circuit(tileAt(t, m, 1, 1))
	if !ok || c != New(Block, "tree", "grass") {
		t.Errorf("Expected BLOCK tree->grass, got %s (%v)", c, ok)
	}

	// a lone water tile is a block too, whatever its group type
	m = buildMap(t,
		"GGG",
		"GWG",
		"GGG",
	)
	c, ok = NewExtractor(m).Circuit(tileAt(t, m, 1, 1))
	if !ok || c != New(Block, "water", "grass") {
		t.Errorf("Expected BLOCK water->grass, got %s (%v)", c, ok)
	}
}

func TestExtractor_NotClassifiable(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		x, y int
	}{
		{"three groups", []string{"GWG", "SWG", "GWG"}, 1, 1},
		{"two foreign groups", []string{"GSG", "SWG", "GSG"}, 1, 1},
		{"non circuit group", []string{"GWG", "WGW", "GGG"}, 1, 1},
		{"groupless neighbour", []string{"G.G", "WWW", "GGG"}, 1, 1},
		{"groupless tile", []string{"GGG", "G.G", "GGG"}, 1, 1},
		{"edge tile with two groups", []string{"WWW", "GGG", "GGG"}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildMap(t, tt.rows...)
			if c, ok := NewExtractor(m).Circuit(tileAt(t, m, tt.x, tt.y)); ok {
				t.Errorf("Expected no circuit, got %s", c)
			}
		})
	}
}

func TestExtractor_EdgeTileWithSingleGroup(t *testing.T) {
	m := buildMap(t,
		"GGG",
		"GGG",
		"GGG",
	)
	c, ok := NewExtractor(m).Circuit(tilemap.Tile{X: 0, Y: 0, Ref: grass})
	if !ok || c != New(Middle, "grass", "grass") {
		t.Errorf("Expected MIDDLE grass->grass on corner, got %s (%v)", c, ok)
	}
}
