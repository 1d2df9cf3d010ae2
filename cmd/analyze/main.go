// Command analyze prints quick, human-readable statistics about the map
// configurations of a config directory. It summarizes dimensions, tile
// groups and, for each mover profile, how many tiles it can stand on, how
// they split into disconnected regions and which tiles sit farther than the
// maximum search distance from the start of their region.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/b3dgs/lionengine-sub021/game/config"
	"github.com/b3dgs/lionengine-sub021/game/engine"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

// maxListed caps the far tiles printed per profile
const maxListed = 5

// Analysis is the summary of one map configuration
type Analysis struct {
	Name     string
	Width    int
	Height   int
	Groups   map[string]int
	Profiles []ProfileAnalysis
}

// ProfileAnalysis describes the tiles one mover profile can use
type ProfileAnalysis struct {
	Name     string
	Passable int
	Regions  []int
	Far      []engine.Position
}

func main() {
	configDir := flag.String("dir", "configs", "Directory containing map configurations")
	flag.Parse()

	manager, err := config.NewManager(*configDir)
	if err != nil {
		log.Fatal(err)
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		log.Fatal(err)
	}

	for _, info := range infos {
		fmt.Printf("\n=== Analyzing %s ===\n", info.ConfigID)
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			continue
		}
		analysis, err := analyzeConfig(cfg)
		if err != nil {
			fmt.Printf("Error building map: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

// analyzeConfig builds the map of a configuration and measures it
func analyzeConfig(cfg *tilemap.Config) (*Analysis, error) {
	m, err := tilemap.NewMap(cfg)
	if err != nil {
		return nil, err
	}

	maxDistance := cfg.SearchDistance()
	analysis := &Analysis{
		Name:   cfg.Name,
		Width:  cfg.Width,
		Height: cfg.Height,
		Groups: engine.CountGroups(m),
	}

	walkers := engine.NewWalkers(cfg)
	for _, name := range engine.Profiles(cfg) {
		walker := walkers[name]
		passable := engine.PassableTiles(m, walker)

		profile := ProfileAnalysis{Name: name, Passable: len(passable)}
		open := make(map[engine.Position]bool, len(passable))
		for _, p := range passable {
			open[p] = true
		}

		seen := make(map[engine.Position]bool, len(passable))
		for _, start := range passable {
			if seen[start] {
				continue
			}
			region := floodFill(start, open, seen, cfg.AllowDiagonal)
			profile.Regions = append(profile.Regions, len(region))
			for _, p := range region {
				if engine.ManhattanDistance(start, p) > maxDistance {
					profile.Far = append(profile.Far, p)
				}
			}
		}
		sort.Slice(profile.Far, func(i, j int) bool {
			if profile.Far[i].Y != profile.Far[j].Y {
				return profile.Far[i].Y < profile.Far[j].Y
			}
			return profile.Far[i].X < profile.Far[j].X
		})
		analysis.Profiles = append(analysis.Profiles, profile)
	}

	return analysis, nil
}

// floodFill collects the open tiles connected to start and marks them seen
func floodFill(start engine.Position, open, seen map[engine.Position]bool, diagonal bool) []engine.Position {
	offsets := [][2]int{{0, 1}, {-1, 0}, {0, -1}, {1, 0}}
	if diagonal {
		offsets = append(offsets, [2]int{1, 1}, [2]int{-1, 1}, [2]int{-1, -1}, [2]int{1, -1})
	}

	seen[start] = true
	queue := []engine.Position{start}
	var region []engine.Position
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)
		for _, o := range offsets {
			next := engine.Position{X: current.X + o[0], Y: current.Y + o[1]}
			if open[next] && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return region
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Map Size: %d x %d\n", a.Width, a.Height)

	names := make([]string, 0, len(a.Groups))
	for name := range a.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "Group %s: %d tiles\n", label, a.Groups[name])
	}

	for _, p := range a.Profiles {
		fmt.Fprintf(w, "Profile %s: %d passable tiles\n", p.Name, p.Passable)
		switch len(p.Regions) {
		case 0:
			fmt.Fprintf(w, "⚠️  WARNING: %s cannot stand anywhere\n", p.Name)
		case 1:
			fmt.Fprintf(w, "✅ All tiles of %s are connected\n", p.Name)
		default:
			sizes := make([]string, len(p.Regions))
			for i, size := range p.Regions {
				sizes[i] = fmt.Sprint(size)
			}
			fmt.Fprintf(w, "⚠️  WARNING: %s tiles split into %d regions (%s)\n", p.Name, len(p.Regions), strings.Join(sizes, ", "))
		}

		if len(p.Far) == 0 {
			continue
		}
		fmt.Fprintf(w, "⚠️  %d tiles of %s are beyond the search distance\n", len(p.Far), p.Name)
		for i, pos := range p.Far {
			if i == maxListed {
				fmt.Fprintf(w, "   ... and %d more\n", len(p.Far)-maxListed)
				break
			}
			fmt.Fprintf(w, "   Far: (%d, %d)\n", pos.X, pos.Y)
		}
	}
}
