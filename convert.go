package snestile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/catalog"
	"github.com/bodgit/snestile/indexed"
	"github.com/bodgit/snestile/metatile"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// Result is a converted asset plus its optional extras.
type Result struct {
	Asset *asset.Asset
	// Metatiles is nil unless requested and the asset has a map.
	Metatiles   *metatile.Set
	Diagnostics Diagnostics
}

func maxIndex(m *indexed.Image) int {
	var n uint8
	for _, i := range m.Indices {
		if i > n {
			n = i
		}
	}
	return int(n)
}

// shiftIndices returns a copy of m with every index moved up by n slots.
func shiftIndices(m *indexed.Image, n int) (*indexed.Image, error) {
	out := *m
	out.Indices = make([]uint8, len(m.Indices))
	for i, v := range m.Indices {
		if int(v)+n > 0xff {
			return nil, &snes.RangeError{Field: "pixel index", Value: int(v) + n, Max: 0xff}
		}
		out.Indices[i] = v + uint8(n)
	}
	return &out, nil
}

// Convert converts the PNG image in src into an asset called name. Nothing
// is written, the only file read is opts.PaletteFile if set.
func Convert(src []byte, name string, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	m, err := indexed.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	r := &Result{
		Diagnostics: Diagnostics{
			RequestedDedupe: opts.Dedupe,
		},
	}
	d := &r.Diagnostics

	colors := m.Palette
	if opts.PaletteFile != "" {
		if colors, err = palette.Load(opts.PaletteFile); err != nil {
			return nil, err
		}
		if n := maxIndex(m); n >= len(colors) {
			d.warn(fmt.Sprintf("pixel index %d has no color in %s", n, filepath.Base(opts.PaletteFile)))
		}
	}

	pal, err := palette.Build(colors, opts.BitDepth, opts.Role, opts.ColorZero)
	if err != nil {
		return nil, err
	}
	d.ColorZeroInserted = pal.Inserted

	// Pixels must keep pointing at their color once slot 0 is taken
	if shift := pal.Shift(); shift > 0 {
		if m, err = shiftIndices(m, shift); err != nil {
			return nil, err
		}
	}

	set, err := tile.Slice(m, opts.TileSize, opts.BitDepth, opts.PartitionBase)
	if err != nil {
		return nil, err
	}

	if opts.Role == palette.Background {
		d.Violations = tile.Validate(set)
	}

	d.EffectiveDedupe = tile.Policy(opts.Role, opts.Dedupe)
	dd := tile.Dedupe(set.Tiles, d.EffectiveDedupe)

	if len(dd.Unique) > snes.MaxTiles {
		if opts.Role == palette.Background {
			return nil, &snes.CapacityError{Resource: "tiles", Count: len(dd.Unique), Max: snes.MaxTiles}
		}
		d.warn(fmt.Sprintf("%d tiles exceeds the hardware maximum of %d", len(dd.Unique), snes.MaxTiles))
	}

	r.Asset = &asset.Asset{
		Name:          name,
		BitDepth:      opts.BitDepth,
		TileSize:      opts.TileSize,
		PartitionBase: opts.PartitionBase,
		Tiles:         dd.Unique,
		Palette:       pal,
	}

	if opts.Role != palette.Background {
		return r, nil
	}

	layout, err := opts.Layout.Resolve(set.Columns, set.Rows)
	if err != nil {
		return nil, err
	}

	tm, err := tilemap.Build(dd.Refs, set.Columns, set.Rows, opts.BitDepth)
	if err != nil {
		return nil, err
	}

	words, err := tm.Ordered(layout)
	if err != nil {
		return nil, err
	}

	r.Asset.Words = words
	r.Asset.Columns = set.Columns
	r.Asset.Rows = set.Rows
	r.Asset.Layout = layout

	stats := tilemap.Analyze(words, len(dd.Unique))
	d.Stats = &stats

	if opts.Metatiles != (image.Point{}) {
		if r.Metatiles, err = metatile.Build(tm, opts.Metatiles); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Write writes every artifact of the result into dir.
func (r *Result) Write(dir string, opts Options) error {
	if err := r.Asset.Write(dir); err != nil {
		return err
	}

	if r.Metatiles != nil {
		b, err := r.Metatiles.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, r.Asset.Name+metatile.Extension), b, 0o644); err != nil {
			return err
		}
	}

	if opts.Preview {
		if err := WritePreview(filepath.Join(dir, r.Asset.Name+PreviewSuffix), r.Asset, opts.PreviewScale); err != nil {
			return err
		}
	}

	return nil
}

// Name returns the asset name for an image file.
func Name(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

// OutputDir returns the directory the artifacts of file are written to. If
// out is empty the directory holding file is used.
func OutputDir(file, out string) string {
	if out == "" {
		out = filepath.Dir(file)
	}
	return filepath.Join(out, ConvertedDir)
}

// ConvertFile converts file and writes the artifacts below out as described
// by OutputDir. With a catalog, a nil result and no error is returned if
// the file hasn't changed since it was last converted with the same options
// and its artifacts are still present.
func (c *Converter) ConvertFile(file, out string, opts Options) (*Result, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	name := Name(file)
	dir := OutputDir(file, out)
	sha := catalog.Checksum(src)
	fingerprint := opts.Fingerprint()

	if c.catalog != nil {
		unchanged, err := c.catalog.Unchanged(name, sha, fingerprint)
		if err != nil {
			return nil, err
		}
		if unchanged {
			_, err := os.Stat(filepath.Join(dir, name+asset.TilesExtension))
			switch {
			case err == nil:
				c.logger.Printf("Skipping \"%s\", unchanged\n", file)
				return nil, nil
			case !errors.Is(err, fs.ErrNotExist):
				return nil, err
			}
		}
	}

	r, err := Convert(src, name, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	r.Diagnostics.Log(c.logger, name)

	if err := r.Write(dir, opts); err != nil {
		return nil, err
	}

	if c.catalog != nil {
		if err := c.catalog.Add(r.Asset, sha, fingerprint); err != nil {
			return nil, err
		}
	}

	c.logger.Printf("Converted \"%s\" to %d tiles and %d colors\n", file, len(r.Asset.Tiles), r.Asset.Palette.Len())

	return r, nil
}
