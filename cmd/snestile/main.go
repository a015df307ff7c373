package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bodgit/snestile"
	"github.com/bodgit/snestile/catalog"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func setup(c *cli.Context) (*snestile.Config, *log.Logger, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	cfg, err := snestile.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// openCatalog returns nil if no catalog is configured.
func openCatalog(c *cli.Context, cfg *snestile.Config) (*catalog.Catalog, error) {
	file := cfg.Catalog.Path
	if c.IsSet("db") {
		file = c.String("db")
	}
	if file == "" {
		return nil, nil
	}
	return catalog.Open(file)
}

func main() {
	app := cli.NewApp()

	app.Name = "snestile"
	app.Usage = "SNES tile, tilemap and palette converter"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SNESTILE_DB"},
			Usage:   "path to catalog database",
		},
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SNESTILE_CONFIG"},
			Value:   snestile.DefaultConfigFile,
			Usage:   "path to project configuration",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert indexed PNG images",
			Description: "Artifacts are written to a \"converted\" directory next to each image or below --out.",
			ArgsUsage:   "FILE...",
			Flags:       convertFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, logger, err := setup(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				opts, err := options(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}

				cat, err := openCatalog(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if cat != nil {
					defer cat.Close()
				}

				out := cfg.Convert.Output
				if c.IsSet("out") {
					out = c.String("out")
				}

				conv := snestile.New(cat, logger)
				for _, file := range c.Args().Slice() {
					r, err := conv.ConvertFile(file, out, opts)
					if err != nil {
						return cli.Exit(err, 1)
					}
					if r != nil && len(r.Diagnostics.Violations) > 0 {
						fmt.Fprintf(os.Stderr, "%s: %d tiles use more than one palette\n", file, len(r.Diagnostics.Violations))
					}
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every PNG image below a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: append(convertFlags(),
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of concurrent conversions, 0 for one per CPU",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, logger, err := setup(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				opts, err := options(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}

				cat, err := openCatalog(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if cat != nil {
					defer cat.Close()
				}

				out := cfg.Convert.Output
				if c.IsSet("out") {
					out = c.String("out")
				}
				workers := cfg.Convert.Workers
				if c.IsSet("workers") {
					workers = c.Int("workers")
				}

				if err := snestile.New(cat, logger).Batch(c.Args().First(), out, opts, workers); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "merge",
			Usage:       "Merge converted parts into one asset",
			Description: "Parts are named <base>-part<N>. Results are written to a \"final\" directory below the parts or to --out.",
			ArgsUsage:   "[DIRECTORY]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "output directory",
				},
				&cli.IntFlag{
					Name:  "bpp",
					Value: 4,
					Usage: "bits per pixel of the parts",
				},
				&cli.StringFlag{
					Name:  "tile-size",
					Value: "8x8",
					Usage: "tile size the parts were converted with",
				},
				&cli.BoolFlag{
					Name:  "catalog",
					Usage: "read the parts from the catalog instead of the directory",
				},
			},
			Action: mergeAction,
		},
		{
			Name:        "analyze",
			Usage:       "Print statistics about a tilemap",
			Description: "",
			ArgsUsage:   "MAP",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "tiles",
					Usage: "tile bitmap to check tile indices against",
				},
				&cli.IntFlag{
					Name:  "bpp",
					Value: 4,
					Usage: "bits per pixel of the tile bitmap",
				},
			},
			Action: analyzeAction,
		},
		{
			Name:        "priority",
			Usage:       "Set the priority bit of a tilemap from a mask image",
			Description: "Every cell where the mask has a pixel that isn't fully transparent gets the priority bit set.",
			ArgsUsage:   "MAP MASK",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "write the tilemap here instead of replacing MAP",
				},
				&cli.StringFlag{
					Name:  "tile-size",
					Value: "8x8",
					Usage: "tile size in pixels",
				},
				&cli.StringFlag{
					Name:  "layout",
					Value: "auto",
					Usage: "tilemap layout: auto, linear or screen",
				},
			},
			Action: priorityAction,
		},
		{
			Name:        "watch",
			Usage:       "Convert PNG images whenever they change",
			Description: "Directories default to those listed in the project configuration.",
			ArgsUsage:   "[DIRECTORY...]",
			Flags: append(convertFlags(),
				&cli.DurationFlag{
					Name:  "debounce",
					Usage: "how long a file must be left alone before converting it",
				},
			),
			Action: func(c *cli.Context) error {
				cfg, logger, err := setup(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				opts, err := options(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}

				dirs := cfg.Watch.Dirs
				if c.NArg() > 0 {
					dirs = c.Args().Slice()
				}
				if len(dirs) == 0 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				out := cfg.Watch.Output
				if c.IsSet("out") {
					out = c.String("out")
				}
				delay := cfg.Watch.Debounce()
				if c.IsSet("debounce") {
					delay = c.Duration("debounce")
				}

				cat, err := openCatalog(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if cat != nil {
					defer cat.Close()
				}

				// Always say what we're doing in watch mode
				if !c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := snestile.New(cat, logger).Watch(ctx, dirs, out, opts, delay); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
