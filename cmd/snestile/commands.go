package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/bodgit/snestile/merge"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
	"github.com/urfave/cli/v2"
)

func mergeAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	out := cfg.Merge.Output
	if c.IsSet("out") {
		out = c.String("out")
	}

	if c.Bool("catalog") {
		cat, err := openCatalog(c, cfg)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if cat == nil {
			return cli.Exit(errors.New("no catalog configured, use --db"), 1)
		}
		defer cat.Close()

		if out == "" {
			out = merge.FinalDir
		}

		if _, err := merge.Catalog(cat, out, logger); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}

	dir := cfg.Merge.Input
	if c.NArg() > 0 {
		dir = c.Args().First()
	}
	if dir == "" {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	bpp := cfg.Merge.BitDepth
	if c.IsSet("bpp") || bpp == 0 {
		bpp = c.Int("bpp")
	}

	ts := cfg.Merge.TileSize
	if c.IsSet("tile-size") || ts == "" {
		ts = c.String("tile-size")
	}
	size, err := tile.ParseSize(ts)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if _, err := merge.Dir(dir, out, bpp, size, logger); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()

	words, err := tilemap.ReadWords(f)
	if err != nil {
		return cli.Exit(err, 1)
	}

	var tiles int
	if c.IsSet("tiles") {
		info, err := os.Stat(c.String("tiles"))
		if err != nil {
			return cli.Exit(err, 1)
		}
		n := tile.Bytes(tile.Block, c.Int("bpp"))
		if n == 0 || info.Size()%int64(n) != 0 {
			return cli.Exit(snes.FormatError(fmt.Sprintf("%s is not a whole number of tiles", c.String("tiles"))), 1)
		}
		tiles = int(info.Size() / int64(n))
	}

	stats := tilemap.Analyze(words, tiles)
	if _, err := stats.WriteTo(os.Stdout); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func priorityAction(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	_, logger, err := setup(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	size, err := tile.ParseSize(c.String("tile-size"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	layout, err := tilemap.ParseLayout(c.String("layout"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	file := c.Args().Get(0)
	b, err := os.ReadFile(file)
	if err != nil {
		return cli.Exit(err, 1)
	}

	mask, err := imgio.Open(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}

	columns, rows := mask.Bounds().Dx()/size.X, mask.Bounds().Dy()/size.Y

	m, err := tilemap.Unmarshal(b, columns, rows, layout)
	if err != nil {
		return cli.Exit(err, 1)
	}

	n, err := tilemap.ApplyPriority(m, mask, size)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if b, err = m.Marshal(layout); err != nil {
		return cli.Exit(err, 1)
	}

	out := file
	if c.IsSet("out") {
		out = c.String("out")
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return cli.Exit(err, 1)
	}

	logger.Printf("Set priority on %d of %d cells\n", n, columns*rows)

	return nil
}
