/*
Package asset holds a converted asset and reads and writes its artifacts.

An asset named foo is stored as:

	foo.tiles         planar tile bitmap
	foo.map           little-endian tilemap words, absent for sprites
	foo.pal           little-endian packed palette colors
	foo.palette-text  the palette in GIMP format

Assets that are one layer of a larger picture are named with a -partN
suffix so they can later be merged.
*/
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// File extensions of every artifact.
const (
	TilesExtension       = ".tiles"
	MapExtension         = ".map"
	PaletteExtension     = ".pal"
	PaletteTextExtension = ".palette-text"
)

// Asset is the result of converting one image.
type Asset struct {
	Name string

	BitDepth      int
	TileSize      image.Point
	PartitionBase int

	Tiles   []tile.Tile
	Palette *palette.Palette

	// Words is the tilemap in storage order, nil for sprites.
	Words []tilemap.Word
	// Columns and Rows give the map size in cells, zero if unknown.
	Columns int
	Rows    int
	Layout  tilemap.Layout
}

// HasMap returns true if the asset carries a tilemap.
func (a *Asset) HasMap() bool {
	return a.Words != nil
}

// Map rebuilds the grid form of the tilemap.
func (a *Asset) Map() (*tilemap.Map, error) {
	if !a.HasMap() || a.Columns == 0 || a.Rows == 0 {
		return nil, errors.New("asset: no tilemap geometry")
	}
	return tilemap.Unmarshal(tilemap.MarshalWords(a.Words), a.Columns, a.Rows, a.Layout)
}

// MarshalTiles returns the planar tile bitmap.
func (a *Asset) MarshalTiles() ([]byte, error) {
	b := new(bytes.Buffer)
	if err := tile.Encode(b, a.Tiles, a.BitDepth); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Files returns the artifact paths in dir, in the order they are written.
func (a *Asset) Files(dir string) []string {
	base := filepath.Join(dir, a.Name)
	files := []string{base + TilesExtension}
	if a.HasMap() {
		files = append(files, base+MapExtension)
	}
	return append(files, base+PaletteExtension, base+PaletteTextExtension)
}

// Write writes every artifact of the asset into dir, creating it if
// necessary. Writing the same asset twice produces identical files.
func (a *Asset) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	base := filepath.Join(dir, a.Name)

	b, err := a.MarshalTiles()
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+TilesExtension, b, 0o644); err != nil {
		return err
	}

	if a.HasMap() {
		if err := os.WriteFile(base+MapExtension, tilemap.MarshalWords(a.Words), 0o644); err != nil {
			return err
		}
	}

	if b, err = a.Palette.MarshalBinary(); err != nil {
		return err
	}
	if err := os.WriteFile(base+PaletteExtension, b, 0o644); err != nil {
		return err
	}

	text := new(bytes.Buffer)
	if err := a.Palette.WriteText(text, a.Name); err != nil {
		return err
	}

	return os.WriteFile(base+PaletteTextExtension, text.Bytes(), 0o644)
}

// Read loads the asset name from dir. Tiles are read at the given size and
// bit depth, which the files don't record, and the map, if present, has no
// known geometry.
func Read(dir, name string, bpp int, size image.Point) (*Asset, error) {
	if !snes.ValidBitDepth(bpp) {
		return nil, fmt.Errorf("asset: unsupported bit depth %d", bpp)
	}
	if size.X <= 0 || size.Y <= 0 || size.X%tile.Block.X != 0 || size.Y%tile.Block.Y != 0 {
		return nil, fmt.Errorf("asset: invalid tile size %dx%d", size.X, size.Y)
	}

	base := filepath.Join(dir, name)
	a := &Asset{
		Name:     name,
		BitDepth: bpp,
		TileSize: size,
		Layout:   tilemap.Linear,
	}

	b, err := os.ReadFile(base + TilesExtension)
	if err != nil {
		return nil, err
	}
	if n := tile.Bytes(a.TileSize, bpp); len(b)%n != 0 {
		return nil, snes.FormatError(fmt.Sprintf("%s%s is %d bytes, not a multiple of %d", name, TilesExtension, len(b), n))
	}
	if a.Tiles, err = tile.Decode(bytes.NewReader(b), a.TileSize, bpp); err != nil {
		return nil, err
	}

	b, err = os.ReadFile(base + MapExtension)
	switch {
	case err == nil:
		if a.Words, err = tilemap.ReadWords(bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("%s%s: %w", name, MapExtension, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	f, err := os.Open(base + PaletteExtension)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	colors, err := palette.ReadBinary(f)
	if err != nil {
		return nil, fmt.Errorf("%s%s: %w", name, PaletteExtension, err)
	}
	a.Palette = palette.FromColors(colors, bpp, palette.Background)

	return a, nil
}

var partRegexp = regexp.MustCompile(`^(.*)-part(\d+)$`)

// PartName returns the name of part n of base.
func PartName(base string, n int) string {
	return fmt.Sprintf("%s-part%d", base, n)
}

// ParsePartName splits a part name into its base and part number. Parts
// are numbered from 1, "-part0" is not a part.
func ParsePartName(name string) (string, int, bool) {
	m := partRegexp.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return m[1], n, true
}
