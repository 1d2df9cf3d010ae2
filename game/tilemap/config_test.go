package tilemap

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateConfig_Default(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing name", func(c *Config) { c.Name = "" }, "name is required"},
		{"missing description", func(c *Config) { c.Description = "" }, "description is required"},
		{"width too small", func(c *Config) { c.Width = 2 }, "width must be between"},
		{"height mismatch", func(c *Config) { c.Height = 9 }, "layout must have 9 rows"},
		{"short row", func(c *Config) { c.Layout[2] = "GGG" }, "row 3 must have 10 characters"},
		{"unknown char", func(c *Config) { c.Layout[0] = "GGGGG?GGGG" }, "character '?' at row 1, col 6"},
		{"long legend key", func(c *Config) { c.Legend["GG"] = TileRef{} }, "must be a single character"},
		{"duplicate group", func(c *Config) { c.Groups = append(c.Groups, c.Groups[0]) }, "duplicate group 'grass'"},
		{"bad group type", func(c *Config) { c.Groups[0].Type = "lava" }, "unknown type 'lava'"},
		{"bad range", func(c *Config) { c.Groups[0].Tiles[0] = TileRange{Sheet: 0, Start: 3, End: 1} }, "invalid range"},
		{"oversized range", func(c *Config) {
			c.Groups[3].Tiles[0] = TileRange{Sheet: 1, Start: 0, End: 20000000}
		}, "invalid range 0..20000000"},
		{"too many tiles", func(c *Config) {
			for sheet := 2; sheet < 70; sheet++ {
				c.Groups[3].Tiles = append(c.Groups[3].Tiles, TileRange{Sheet: sheet, Start: 0, End: MaxTileRange - 1})
			}
		}, "more than 65536 tiles"},
		{"shared tile", func(c *Config) {
			c.Groups[1].Tiles = append(c.Groups[1].Tiles, TileRange{Sheet: 0, Start: 0, End: 0})
		}, "belongs to groups 'grass' and 'tree'"},
		{"unknown category group", func(c *Config) { c.Categories[0].Groups = []string{"sand"} }, "unknown group 'sand'"},
		{"group in two categories", func(c *Config) { c.Categories[1].Groups = []string{"grass"} }, "belongs to categories"},
		{"no movers", func(c *Config) { c.Movers = nil }, "at least one mover"},
		{"unknown mover category", func(c *Config) { c.Movers["walker"]["lava"] = 1 }, "unknown category 'lava'"},
		{"zero cost", func(c *Config) { c.Movers["walker"]["ground"] = 0 }, "must be positive"},
		{"NaN cost", func(c *Config) { c.Movers["walker"]["ground"] = math.NaN() }, "must be positive and finite"},
		{"infinite cost", func(c *Config) { c.Movers["boat"]["sea"] = math.Inf(1) }, "must be positive and finite"},
		{"negative search", func(c *Config) { c.MaxSearchDistance = -1 }, "max_search_distance"},
		{"unknown heuristic", func(c *Config) { c.Heuristic = "teleport" }, "unknown heuristic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := ValidateConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadConfig_Formats(t *testing.T) {
	dir := t.TempDir()

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			data, err := MarshalConfig(DefaultConfig(), ext)
			if err != nil {
				t.Fatalf("Failed to marshal config: %v", err)
			}
			path := filepath.Join(dir, "meadow"+ext)
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if config.Name != "meadow" || config.Width != 10 || config.Height != 8 {
				t.Errorf("Unexpected config %+v", config)
			}
			if config.Legend["|"] != (TileRef{Sheet: 1, Number: 1}) {
				t.Errorf("Unexpected legend entry %v", config.Legend["|"])
			}
			if config.Movers["amphibian"]["sea"] != 2 {
				t.Errorf("Unexpected mover cost %v", config.Movers["amphibian"])
			}
		})
	}
}

func TestLoadConfig_HandWrittenYAML(t *testing.T) {
	content := `name: pond
description: Small pond
width: 3
height: 3
layout:
  - "GGG"
  - "GWG"
  - "GGG"
legend:
  G: {sheet: 0, number: 0}
  W: {sheet: 1, number: 0}
groups:
  - name: grass
    type: none
    tiles: [{sheet: 0, start: 0, end: 0}]
  - name: water
    type: circuit
    tiles: [{sheet: 1, start: 0, end: 3}]
categories:
  - name: ground
    groups: [grass]
movers:
  walker:
    ground: 1
allow_diagonal: false
`
	path := filepath.Join(t.TempDir(), "pond.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Groups[1].Type != GroupCircuit {
		t.Errorf("Expected circuit group, got %s", config.Groups[1].Type)
	}
	if config.SearchDistance() != DefaultMaxSearchDistance {
		t.Errorf("Expected default search distance, got %d", config.SearchDistance())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Errorf("Expected not exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected parse error")
	}

	txt := filepath.Join(dir, "map.txt")
	os.WriteFile(txt, []byte("name: x"), 0644)
	if _, err := LoadConfig(txt); err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
}

func TestIsConfigFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.json": true, "b.YAML": true, "c.yml": true, "d.xml": false, "e": false,
	} {
		if got := IsConfigFile(name); got != want {
			t.Errorf("IsConfigFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTileRange_Refs(t *testing.T) {
	refs := TileRange{Sheet: 2, Start: 4, End: 6}.Refs()
	if len(refs) != 3 || refs[0] != (TileRef{2, 4}) || refs[2] != (TileRef{2, 6}) {
		t.Errorf("Unexpected refs %v", refs)
	}
	if refs := (TileRange{Start: 2, End: 1}).Refs(); refs != nil {
		t.Errorf("Expected empty range, got %v", refs)
	}
	if refs := (TileRange{Start: 0, End: MaxTileRange}).Refs(); refs != nil {
		t.Errorf("Expected oversized range to expand to nothing, got %d refs", len(refs))
	}
	if n := (TileRange{Start: 0, End: MaxTileRange - 1}).Len(); n != MaxTileRange {
		t.Errorf("Expected %d tiles, got %d", MaxTileRange, n)
	}
}
