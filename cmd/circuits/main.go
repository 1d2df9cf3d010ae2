// Command circuits extracts, inspects and classifies tile circuits of the map
// configurations in a config directory.
//
//	circuits extract [--config-dir configs] [--out file.xml] [--save name] [maps...]
//	circuits show <file.xml>
//	circuits classify [--config-dir configs] <map>
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/b3dgs/lionengine-sub021/game/circuit"
	"github.com/b3dgs/lionengine-sub021/game/config"
	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func configDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config-dir",
		Aliases: []string{"d"},
		Value:   "configs",
		Usage:   "directory containing map configurations",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "circuits",
		Usage: "extract and inspect tile circuit tables",
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "extract the circuits of maps into one table",
				ArgsUsage: "[maps...]",
				Flags: []cli.Flag{
					configDirFlag(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the XML table to a file instead of stdout"},
					&cli.StringFlag{Name: "save", Usage: "store the table as circuits/<save>.xml in the config dir"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runExtract(cmd.Root().Writer, cmd.String("config-dir"), cmd.String("out"), cmd.String("save"), cmd.Args().Slice())
				},
			},
			{
				Name:      "show",
				Usage:     "print the circuits of an XML table",
				ArgsUsage: "<file.xml>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("show expects one circuits file")
					}
					return runShow(cmd.Root().Writer, cmd.Args().First())
				},
			},
			{
				Name:      "classify",
				Usage:     "print the circuit of every interior tile of a map",
				ArgsUsage: "<map>",
				Flags:     []cli.Flag{configDirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("classify expects one map name")
					}
					return runClassify(cmd.Root().Writer, cmd.String("config-dir"), cmd.Args().First())
				},
			},
		},
	}
}

// runExtract merges the circuits of the named maps, all maps when none is named
func runExtract(w io.Writer, configDir, out, save string, names []string) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no map configuration found in %s", configDir)
	}

	configs := make([]*tilemap.Config, 0, len(names))
	for _, name := range names {
		cfg, err := manager.LoadConfig(name)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	table, err := circuit.ExtractConfigs(configs...)
	if err != nil {
		return err
	}

	if save != "" {
		if err := manager.SaveCircuits(save, table); err != nil {
			return err
		}
		fmt.Fprintf(w, "Saved %d circuits as %s\n", table.Len(), save)
	}
	if out != "" {
		if err := circuit.ExportFile(out, table); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %d circuits from %d maps to %s\n", table.Len(), len(configs), out)
		return nil
	}
	if save != "" {
		return nil
	}
	return circuit.Export(w, table)
}

// runShow lists every circuit of a table with its tiles
func runShow(w io.Writer, filename string) error {
	table, err := circuit.ImportFile(filename)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d circuits\n", table.Len())
	for _, c := range table.Circuits() {
		fmt.Fprintf(w, "%-18s %s -> %s:", c.Type, c.In, c.Out)
		for _, ref := range table.Tiles(c) {
			fmt.Fprintf(w, " %s", ref)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// runClassify prints the circuit of every interior tile that has one
func runClassify(w io.Writer, configDir, name string) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}
	cfg, err := manager.LoadConfig(name)
	if err != nil {
		return err
	}
	m, err := tilemap.NewMap(cfg)
	if err != nil {
		return err
	}

	extractor := circuit.NewExtractor(m)
	count := 0
	for y := 1; y < m.Height()-1; y++ {
		for x := 1; x < m.Width()-1; x++ {
			tile, ok := m.Tile(x, y)
			if !ok {
				continue
			}
			if c, ok := extractor.Circuit(tile); ok {
				fmt.Fprintf(w, "(%d,%d) %s\n", x, y, c)
				count++
			}
		}
	}
	fmt.Fprintf(w, "%d classified tiles in %s\n", count, cfg.Name)
	return nil
}
