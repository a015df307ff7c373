package snestile

import (
	"fmt"
	"image"

	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// Options control a single conversion.
type Options struct {
	Role          palette.Role
	BitDepth      int
	TileSize      image.Point
	Dedupe        tile.Mode
	PartitionBase int
	// PaletteFile, if set, replaces the palette embedded in the image.
	PaletteFile string
	// ColorZero inserts a transparent black entry at slot 0 for palettes
	// smaller than one partition.
	ColorZero bool
	Layout    tilemap.Layout

	// Metatiles, if non-zero, groups map cells into blocks of this size.
	Metatiles image.Point
	// Preview writes a PNG of the unique tiles scaled by PreviewScale.
	Preview      bool
	PreviewScale int
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{
		Role:         palette.Background,
		BitDepth:     4,
		TileSize:     image.Pt(8, 8),
		Dedupe:       tile.Simple,
		ColorZero:    true,
		Layout:       tilemap.Auto,
		PreviewScale: 1,
	}
}

func (o Options) validate() error {
	if !snes.ValidBitDepth(o.BitDepth) {
		return fmt.Errorf("snestile: unsupported bit depth %d", o.BitDepth)
	}
	if o.TileSize.X <= 0 || o.TileSize.Y <= 0 || o.TileSize.X%8 != 0 || o.TileSize.Y%8 != 0 {
		return fmt.Errorf("snestile: invalid tile size %dx%d", o.TileSize.X, o.TileSize.Y)
	}
	if o.PartitionBase < 0 || o.PartitionBase >= snes.MaxPartitions {
		return &snes.RangeError{Field: "partition base", Value: o.PartitionBase, Max: snes.MaxPartitions - 1}
	}
	if o.Preview && o.PreviewScale < 1 {
		return fmt.Errorf("snestile: invalid preview scale %d", o.PreviewScale)
	}
	return nil
}

// Fingerprint returns a string identifying every option that affects the
// converted artifacts.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("role=%s bpp=%d tile=%dx%d dedupe=%s base=%d palette=%s zero=%t layout=%s",
		o.Role, o.BitDepth, o.TileSize.X, o.TileSize.Y, o.Dedupe, o.PartitionBase, o.PaletteFile, o.ColorZero, o.Layout)
}
