/*
Package snestile converts indexed PNG images into SNES tile, tilemap and
palette data.

A conversion decodes the image, builds the palette, cuts the image into
tiles, checks every tile only uses one color partition, collapses repeated
tiles and finally packs the tilemap. Parts of a larger picture converted
separately can then be merged with package merge.
*/
package snestile

import (
	"log"

	"github.com/bodgit/snestile/catalog"
)

// ConvertedDir is the directory, relative to the output directory,
// artifacts are written to.
const ConvertedDir = "converted"

// Converter runs conversions and writes their artifacts.
type Converter struct {
	catalog *catalog.Catalog
	logger  *log.Logger
}

// New returns a Converter. If c is not nil every written asset is recorded
// in it and sources that haven't changed since are skipped.
func New(c *catalog.Catalog, logger *log.Logger) *Converter {
	return &Converter{
		catalog: c,
		logger:  logger,
	}
}
