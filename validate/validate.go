// Command validate provides a small CLI that validates the map configuration
// files (*.json, *.yaml, *.yml) of a config directory. It checks:
//   - Structure: size, layout rows, legend characters, groups and categories
//   - Mover profiles reference known categories
//   - Connectivity: for every mover profile, each tile it can stand on is
//     reachable by A* from the first one
//   - Circuits: the table extracted from the map, and circuits/<name>.xml when present
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file. Structural
// errors stop the validation; connectivity and circuit checks need a valid map.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	config, err := tilemap.LoadConfig(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	eng, err := engine.NewEngine(config, nil)
	if err != nil {
		result.fail("Failed to build map: %v", err)
		return result
	}

	connectivity := validateConnectivity(eng)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	circuits := validateCircuits(filePath, eng)
	if !circuits.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, circuits.Errors...)

	// Add informational data
	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Map: %dx%d", config.Width, config.Height)
		result.info("Groups: %s", formatGroups(engine.CountGroups(eng.Map())))
		result.info("Profiles: %s", strings.Join(engine.Profiles(config), ", "))
	}

	return result
}

// validateConnectivity ensures every tile a profile can stand on is reachable
// from the first such tile, scanning rows from the top. Units are ignored.
func validateConnectivity(eng *engine.WorldEngine) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	for _, profile := range engine.Profiles(eng.GetConfig()) {
		walker, err := eng.Walker(profile)
		if err != nil {
			result.fail("Profile %s: %v", profile, err)
			continue
		}

		tiles := engine.PassableTiles(eng.Map(), walker)
		if len(tiles) == 0 {
			result.fail("Profile %s cannot stand on any tile", profile)
			continue
		}

		origin := tiles[0]
		var unreachable []string
		for _, tile := range tiles[1:] {
			path, found, err := eng.FindPathFrom(profile, origin.X, origin.Y, tile.X, tile.Y, true)
			if err != nil {
				result.fail("Profile %s: %v", profile, err)
				break
			}
			if !found {
				unreachable = append(unreachable, fmt.Sprintf("(%d,%d)", tile.X, tile.Y))
				continue
			}
			if last, ok := path.Last(); !ok || last.X != tile.X || last.Y != tile.Y {
				unreachable = append(unreachable, fmt.Sprintf("(%d,%d)", tile.X, tile.Y))
			}
		}

		if len(unreachable) > 0 {
			result.fail("Connectivity failure: profile %s, %d/%d tiles unreachable from (%d,%d)",
				profile, len(unreachable), len(tiles), origin.X, origin.Y)
			result.fail("Unreachable: %s", strings.Join(unreachable, " "))
		} else {
			result.info("Connectivity: %s reaches all %d tiles", profile, len(tiles))
		}
	}

	return result
}

// validateCircuits reports the extracted circuits and checks the stored
// circuits file of the config, if any, against the map groups.
func validateCircuits(filePath string, eng *engine.WorldEngine) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	extracted := eng.ExtractCircuits()
	result.info("Circuits: %d extracted from the map", extracted.Len())

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	circuitsFile := filepath.Join(filepath.Dir(filePath), "circuits", name+".xml")
	table, err := circuit.ImportFile(circuitsFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return result
	case err != nil:
		result.fail("Circuits file: %v", err)
		return result
	}

	groups := make(map[string]bool)
	for _, group := range eng.Map().Groups() {
		groups[group] = true
	}
	for _, c := range table.Circuits() {
		if !groups[c.In] || !groups[c.Out] {
			result.fail("Circuits file: %s references an unknown group", c)
		}
	}
	if result.Valid {
		result.info("Circuits file: %d circuits", table.Len())
	}
	return result
}

func formatGroups(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", label, counts[name]))
	}
	return strings.Join(parts, " ")
}

// configFiles lists the map configuration files of a directory
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && tilemap.IsConfigFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// main validates every configuration of the config directory, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing map configurations")
	flag.Parse()

	files, err := configFiles(*configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
