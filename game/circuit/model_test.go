package circuit

import (
	"testing"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

func riverTable() *Table {
	table := NewTable()
	// grass first in sheet order, it must be skipped for water tiles
	table.Add(New(Vertical, "water", "grass"), waterVert, grass)
	table.Add(New(Horizontal, "water", "grass"), waterHoriz)
	table.Add(New(Middle, "water", "water"), water)
	return table
}

func TestModel_ResolveSubstitutesNeighbourhood(t *testing.T) {
	m := buildMap(t,
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
	)
	model := NewModel(m, riverTable())

	changed := model.Resolve(tileAt(t, m, 3, 2))

	expected := []tilemap.Tile{
		{X: 3, Y: 2, Ref: waterVert},
		{X: 3, Y: 3, Ref: waterVert},
		{X: 3, Y: 1, Ref: waterVert},
	}
	if len(changed) != len(expected) {
		t.Fatalf("Expected %d changes, got %v", len(expected), changed)
	}
	for i, tile := range expected {
		if changed[i] != tile {
			t.Errorf("Change %d: expected %v, got %v", i, tile, changed[i])
		}
		if got := tileAt(t, m, tile.X, tile.Y).Ref; got != waterVert {
			t.Errorf("Tile (%d,%d) not updated on map: %v", tile.X, tile.Y, got)
		}
	}

	// local relaxation only: tiles two steps away are untouched
	if got := tileAt(t, m, 3, 0).Ref; got != water {
		t.Errorf("Expected (3,0) untouched, got %v", got)
	}
	if got := tileAt(t, m, 3, 4).Ref; got != water {
		t.Errorf("Expected (3,4) untouched, got %v", got)
	}
	// other groups are never rewritten
	if got := tileAt(t, m, 2, 2).Ref; got != grass {
		t.Errorf("Expected grass untouched, got %v", got)
	}
}

func TestModel_ResolveAfterPaint(t *testing.T) {
	m := buildMap(t,
		"GGGGGGG",
		"GGGGGGG",
		"G-----G",
		"GGGGGGG",
		"GGGGGGG",
	)
	model := NewModel(m, riverTable())

	// painting the crossing turns the centre into a T junction and its north
	// neighbour into a vertical piece
	m.SetTile(3, 1, water)
	m.SetTile(3, 0, water)
	changed := model.Resolve(tilemap.Tile{X: 3, Y: 1, Ref: water})

	if got := tileAt(t, m, 3, 1).Ref; got != waterVert {
		t.Errorf("Expected painted tile to become vertical, got %v (changes %v)", got, changed)
	}
	// (3,2) is a T3J_TOP junction missing from the table: left as is
	if got := tileAt(t, m, 3, 2).Ref; got != waterHoriz {
		t.Errorf("Expected junction untouched, got %v", got)
	}
}

func TestModel_NoCandidateIsNoOp(t *testing.T) {
	m := buildMap(t,
		"GGGWGGG",
		"GGGWGGG",
		"GGGWGGG",
	)
	model := NewModel(m, nil)
	before := m.Tiles()

	if changed := model.Resolve(tileAt(t, m, 3, 1)); len(changed) != 0 {
		t.Errorf("Expected no change with empty table, got %v", changed)
	}

	// only candidates of another group
	table := NewTable()
	table.Add(New(Vertical, "water", "grass"), grass, tree)
	model.SetTable(table)
	if changed := model.Resolve(tileAt(t, m, 3, 1)); len(changed) != 0 {
		t.Errorf("Expected no change without matching group, got %v", changed)
	}

	after := m.Tiles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Map changed at %v", after[i])
		}
	}
}

func TestModel_AlreadyResolved(t *testing.T) {
	m := buildMap(t,
		"GGG|GGG",
		"GGG|GGG",
		"GGG|GGG",
	)
	model := NewModel(m, riverTable())

	if changed := model.Resolve(tileAt(t, m, 3, 1)); len(changed) != 0 {
		t.Errorf("Expected no change on resolved tiles, got %v", changed)
	}
	if model.Table().Len() != 3 {
		t.Errorf("Expected table with 3 circuits, got %d", model.Table().Len())
	}
}

func TestModel_OutOfBounds(t *testing.T) {
	m := buildMap(t, "GGG", "GGG", "GGG")
	model := NewModel(m, riverTable())
	if changed := model.Resolve(tilemap.Tile{X: 5, Y: 5}); changed != nil {
		t.Errorf("Expected nil for out of bounds tile, got %v", changed)
	}
}
