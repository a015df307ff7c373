package main

import (
	"github.com/bodgit/snestile"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
	"github.com/urfave/cli/v2"
)

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "role",
			Aliases: []string{"t"},
			Usage:   "bg or sprite",
		},
		&cli.IntFlag{
			Name:  "bpp",
			Usage: "bits per pixel (2, 4 or 8)",
		},
		&cli.StringFlag{
			Name:  "tile-size",
			Usage: "tile size in pixels, such as 8x8 or 16x16",
		},
		&cli.StringFlag{
			Name:  "dedupe",
			Usage: "tile deduplication: none, simple, h, v or full",
		},
		&cli.IntFlag{
			Name:  "base",
			Usage: "first palette partition used by the tilemap (0-7)",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "palette file (.pal or .txt) replacing the image palette",
		},
		&cli.BoolFlag{
			Name:  "color-zero",
			Usage: "insert a transparent color at slot 0 of small palettes",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "tilemap layout: auto, linear or screen",
		},
		&cli.StringFlag{
			Name:  "metatiles",
			Usage: "group tilemap cells into metatiles of this size, such as 2x2",
		},
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "write a PNG of the unique tiles",
		},
		&cli.IntFlag{
			Name:  "preview-scale",
			Usage: "preview scaling factor",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "output directory",
		},
	}
}

// options returns the configured conversion options overridden by any
// flags given.
func options(c *cli.Context, cfg *snestile.Config) (snestile.Options, error) {
	opts, err := cfg.Convert.Options()
	if err != nil {
		return opts, err
	}

	if c.IsSet("role") {
		if opts.Role, err = palette.ParseRole(c.String("role")); err != nil {
			return opts, err
		}
	}
	if c.IsSet("bpp") {
		opts.BitDepth = c.Int("bpp")
	}
	if c.IsSet("tile-size") {
		if opts.TileSize, err = tile.ParseSize(c.String("tile-size")); err != nil {
			return opts, err
		}
	}
	if c.IsSet("dedupe") {
		if opts.Dedupe, err = tile.ParseMode(c.String("dedupe")); err != nil {
			return opts, err
		}
	}
	if c.IsSet("base") {
		opts.PartitionBase = c.Int("base")
	}
	if c.IsSet("palette") {
		opts.PaletteFile = c.String("palette")
	}
	if c.IsSet("color-zero") {
		opts.ColorZero = c.Bool("color-zero")
	}
	if c.IsSet("layout") {
		if opts.Layout, err = tilemap.ParseLayout(c.String("layout")); err != nil {
			return opts, err
		}
	}
	if c.IsSet("metatiles") {
		if opts.Metatiles, err = snestile.ParseBlockSize(c.String("metatiles")); err != nil {
			return opts, err
		}
	}
	if c.IsSet("preview") {
		opts.Preview = c.Bool("preview")
	}
	if c.IsSet("preview-scale") {
		opts.PreviewScale = c.Int("preview-scale")
	}

	return opts, nil
}
