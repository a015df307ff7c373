package snestile

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// DefaultConfigFile is the project file looked for in the working
// directory.
const DefaultConfigFile = "snestile.toml"

// ConvertConfig holds the default conversion options.
type ConvertConfig struct {
	Role          palette.Role   `toml:"role"`
	BitDepth      int            `toml:"bpp"`
	TileSize      string         `toml:"tile_size"`
	Dedupe        tile.Mode      `toml:"dedupe"`
	PartitionBase int            `toml:"partition_base"`
	Palette       string         `toml:"palette"`
	ColorZero     bool           `toml:"color_zero"`
	Layout        tilemap.Layout `toml:"layout"`
	Metatiles     string         `toml:"metatiles"`
	Preview       bool           `toml:"preview"`
	PreviewScale  int            `toml:"preview_scale"`
	Output        string         `toml:"output"`
	Workers       int            `toml:"workers"`
}

// Options returns the conversion options.
func (c ConvertConfig) Options() (Options, error) {
	opts := Options{
		Role:          c.Role,
		BitDepth:      c.BitDepth,
		Dedupe:        c.Dedupe,
		PartitionBase: c.PartitionBase,
		PaletteFile:   c.Palette,
		ColorZero:     c.ColorZero,
		Layout:        c.Layout,
		Preview:       c.Preview,
		PreviewScale:  c.PreviewScale,
	}

	var err error
	if opts.TileSize, err = tile.ParseSize(c.TileSize); err != nil {
		return Options{}, err
	}
	if opts.Metatiles, err = ParseBlockSize(c.Metatiles); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// MergeConfig holds the defaults for merging parts.
type MergeConfig struct {
	Input    string `toml:"input"`
	Output   string `toml:"output"`
	BitDepth int    `toml:"bpp"`
	TileSize string `toml:"tile_size"`
}

// WatchConfig holds the directories to watch.
type WatchConfig struct {
	Dirs       []string `toml:"dirs"`
	Output     string   `toml:"output"`
	DebounceMS int      `toml:"debounce_ms"` // 0 = default (500ms)
}

// Debounce returns how long to wait for a file to settle.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS > 0 {
		return time.Duration(w.DebounceMS) * time.Millisecond
	}
	return 500 * time.Millisecond
}

// CatalogConfig names the catalog database.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// Config is the project configuration.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Merge   MergeConfig   `toml:"merge"`
	Watch   WatchConfig   `toml:"watch"`
	Catalog CatalogConfig `toml:"catalog"`
}

// DefaultConfig returns the configuration used without a project file.
func DefaultConfig() *Config {
	opts := DefaultOptions()
	return &Config{
		Convert: ConvertConfig{
			Role:         opts.Role,
			BitDepth:     opts.BitDepth,
			TileSize:     "8x8",
			Dedupe:       opts.Dedupe,
			ColorZero:    opts.ColorZero,
			Layout:       opts.Layout,
			PreviewScale: opts.PreviewScale,
		},
		Merge: MergeConfig{
			BitDepth: 4,
			TileSize: "8x8",
		},
	}
}

// LoadConfig reads the project file at path on top of the defaults. A
// missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseBlockSize parses a metatile size such as "2x2". An empty string
// means no metatiles.
func ParseBlockSize(s string) (image.Point, error) {
	if s == "" {
		return image.Point{}, nil
	}

	var p image.Point
	if n, err := fmt.Sscanf(s, "%dx%d", &p.X, &p.Y); err != nil || n != 2 || p.X <= 0 || p.Y <= 0 {
		return image.Point{}, fmt.Errorf("snestile: invalid metatile size %q", s)
	}

	return p, nil
}
