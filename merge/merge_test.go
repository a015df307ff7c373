package merge

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/catalog"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(v uint8) tile.Tile {
	pix := make([]uint8, 64)
	for i := range pix {
		pix[i] = v
	}
	return tile.Tile{Width: 8, Height: 8, Pix: pix, Empty: v == 0}
}

// part builds a 32x32 cell layer using two partitions, each filled with a
// gray ramp offset by shade.
func part(name string, tiles int, shade uint8) *asset.Asset {
	a := &asset.Asset{
		Name:     name,
		BitDepth: 4,
		TileSize: image.Pt(8, 8),
		Words:    make([]tilemap.Word, snes.ScreenCells),
		Columns:  snes.ScreenSize,
		Rows:     snes.ScreenSize,
		Layout:   tilemap.Linear,
	}
	for i := 0; i < tiles; i++ {
		a.Tiles = append(a.Tiles, solid(uint8(i%15+1)))
	}

	colors := make([]color.NRGBA, 32)
	for i := range colors {
		v := shade + uint8(i)<<2
		colors[i] = color.NRGBA{v, v, v, 0xff}
	}
	a.Palette = palette.FromColors(colors, 4, palette.Background)

	return a
}

func TestMerge(t *testing.T) {
	t.Parallel()

	p1 := part("level-part1", 3, 0)
	p2 := part("level-part2", 2, 0x80)

	// Part 1 uses partitions 0 and 2, part 2 uses 1 and 3
	p1.Words[0] = tilemap.Word(0x0001)
	p1.Words[1] = tilemap.Word(0x0802 | 0x4000)
	p1.Words[2] = tilemap.Word(0x0001)
	p2.Words[2] = tilemap.Word(0x0400 | 0x2000)
	p2.Words[3] = tilemap.Word(0x0c01)

	r, err := Merge("level-final", []*asset.Asset{p1, p2})
	require.Nil(t, err)
	assert.Empty(t, r.Warnings)

	assert.Equal(t, []Slot{{0, 0}, {0, 2}, {1, 1}, {1, 3}}, r.Slots)
	assert.Equal(t, []int{0, 3}, r.Offsets)
	assert.Len(t, r.Asset.Tiles, 5)
	assert.Equal(t, "level-final", r.Asset.Name)

	w := r.Asset.Words
	assert.Equal(t, tilemap.Word(0x0001), w[0])
	// Flip bits pass through, partition 2 becomes slot 1
	assert.Equal(t, tilemap.Word(0x4402), w[1])
	// Only the later part counts where both have a word, tile offset by 3
	assert.Equal(t, 3, w[2].Tile())
	assert.Equal(t, 2, w[2].Partition())
	assert.True(t, w[2].Priority())
	// Cell only present in part 2
	assert.Equal(t, 4, w[3].Tile())
	assert.Equal(t, 3, w[3].Partition())
	assert.Equal(t, tilemap.Word(0), w[4])

	pal := r.Asset.Palette
	require.Equal(t, 4, pal.PartitionCount)
	require.Len(t, pal.Entries, 64)
	assert.Equal(t, p1.Palette.Partition(0), pal.Partition(0))
	// Part 1 has no colors for partition 2 so the block is zero filled
	assert.Equal(t, make([]palette.Entry, 16), pal.Partition(1))
	assert.Equal(t, p2.Palette.Partition(1), pal.Partition(2))
	assert.Equal(t, make([]palette.Entry, 16), pal.Partition(3))
}

func TestMergeErrors(t *testing.T) {
	t.Parallel()

	_, err := Merge("x", nil)
	assert.Equal(t, errNoParts, err)

	short := part("b", 1, 0)
	short.Words = short.Words[:10]

	var ce snes.ConsistencyError
	_, err = Merge("x", []*asset.Asset{part("a", 1, 0), short})
	assert.True(t, errors.As(err, &ce))

	sprite := part("b", 1, 0)
	sprite.Words = nil
	_, err = Merge("x", []*asset.Asset{part("a", 1, 0), sprite})
	assert.True(t, errors.As(err, &ce))

	// Three parts using three partitions each need nine slots
	var parts []*asset.Asset
	for i := 0; i < 3; i++ {
		p := part(asset.PartName("big", i+1), 2, 0)
		for j := 0; j < 3; j++ {
			p.Words[j] = tilemap.Word(0).WithTile(1).WithPartition(j)
		}
		parts = append(parts, p)
	}

	// Words beyond the part's own tiles
	stray := part("b", 2, 0)
	stray.Words[0] = tilemap.Word(0).WithTile(2)
	_, err = Merge("x", []*asset.Asset{part("a", 1, 0), stray})
	assert.True(t, errors.As(err, &ce))

	large := part("b", 1, 0)
	large.TileSize = image.Pt(16, 16)
	_, err = Merge("x", []*asset.Asset{part("a", 1, 0), large})
	assert.True(t, errors.As(err, &ce))

	var capErr *snes.CapacityError
	_, err = Merge("x", parts)
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 9, capErr.Count)
	assert.Equal(t, 8, capErr.Max)
}

func TestMergeTooManyTiles(t *testing.T) {
	t.Parallel()

	p1 := part("a", 600, 0)
	p2 := part("b", 600, 0)
	p2.Words[0] = tilemap.Word(599)

	r, err := Merge("x", []*asset.Asset{p1, p2})
	require.Nil(t, err)
	assert.Len(t, r.Warnings, 1)
	// Tile indices wrap at ten bits
	assert.Equal(t, (599+600)&0x3ff, r.Asset.Words[0].Tile())
}

func TestMergeEightBit(t *testing.T) {
	t.Parallel()

	p1 := part("a", 2, 0)
	p1.BitDepth = 8
	p1.Palette = palette.FromColors(make([]color.NRGBA, 256), 8, palette.Background)
	p1.Words[0] = 1

	p2 := part("b", 2, 0)
	p2.BitDepth = 8
	p2.Words[1] = 1

	r, err := Merge("x", []*asset.Asset{p1, p2})
	require.Nil(t, err)
	assert.Empty(t, r.Slots)
	assert.Equal(t, p1.Palette, r.Asset.Palette)
	assert.Equal(t, tilemap.Word(2), r.Asset.Words[1])
}

// large builds a 2x1 cell layer of 16x16 tiles with tiles unique tiles.
func large(name string, tiles int) *asset.Asset {
	a := &asset.Asset{
		Name:     name,
		BitDepth: 4,
		TileSize: image.Pt(16, 16),
		Words:    make([]tilemap.Word, 2),
		Columns:  2,
		Rows:     1,
		Layout:   tilemap.Linear,
	}
	for i := 0; i < tiles; i++ {
		pix := make([]uint8, 256)
		for j := range pix {
			pix[j] = uint8(i + 1)
		}
		a.Tiles = append(a.Tiles, tile.Tile{Width: 16, Height: 16, Pix: pix})
	}
	a.Palette = palette.FromColors(make([]color.NRGBA, 16), 4, palette.Background)
	return a
}

func TestDirTileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p1 := large(asset.PartName("level", 1), 2)
	p1.Words[0] = tilemap.Word(0).WithTile(1)
	p2 := large(asset.PartName("level", 2), 2)
	p2.Words[1] = tilemap.Word(0).WithTile(1)
	require.Nil(t, p1.Write(dir))
	require.Nil(t, p2.Write(dir))

	results, err := Dir(dir, "", 4, image.Pt(16, 16), log.New(io.Discard, "", 0))
	require.Nil(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, []int{0, 2}, r.Offsets)
	assert.Len(t, r.Asset.Tiles, 4)
	assert.Equal(t, 1, r.Asset.Words[0].Tile())
	assert.Equal(t, 3, r.Asset.Words[1].Tile())

	// 8x8 parts read as 16x16 leave words pointing past the last tile
	small := t.TempDir()
	p3 := part(asset.PartName("level", 1), 4, 0)
	p3.Words[0] = tilemap.Word(0).WithTile(3)
	require.Nil(t, p3.Write(small))

	_, err = Dir(small, "", 4, image.Pt(16, 16), log.New(io.Discard, "", 0))
	var ce snes.ConsistencyError
	assert.True(t, errors.As(err, &ce))
}

func TestDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p1 := part(asset.PartName("level", 1), 2, 0)
	p1.Words[0] = 0x0401
	p2 := part(asset.PartName("level", 2), 2, 0x40)
	p2.Words[1] = 0x0001
	require.Nil(t, p1.Write(dir))
	require.Nil(t, p2.Write(dir))

	// Not a part, ignored
	require.Nil(t, part("other", 1, 0).Write(dir))

	groups, err := Groups(dir)
	require.Nil(t, err)
	assert.Equal(t, map[string][]int{"level": {1, 2}}, groups)

	results, err := Dir(dir, "", 4, tile.Block, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []Slot{{0, 1}, {1, 0}}, results[0].Slots)

	for _, ext := range []string{asset.TilesExtension, asset.MapExtension, asset.PaletteExtension} {
		_, err := os.Stat(filepath.Join(dir, FinalDir, "level-final"+ext))
		assert.Nil(t, err, ext)
	}

	got, err := asset.Read(filepath.Join(dir, FinalDir), "level-final", 4, tile.Block)
	require.Nil(t, err)
	assert.Len(t, got.Tiles, 4)
	assert.Equal(t, tilemap.Word(0x0001), got.Words[0])
	assert.Equal(t, tilemap.Word(0x0403), got.Words[1])
	assert.Len(t, got.Palette.Entries, 32)

	_, err = Dir(t.TempDir(), "", 4, tile.Block, log.New(io.Discard, "", 0))
	assert.NotNil(t, err)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cat, err := catalog.Open(filepath.Join(dir, "snestile.db"))
	require.Nil(t, err)
	defer cat.Close()

	_, err = Catalog(cat, dir, log.New(io.Discard, "", 0))
	assert.NotNil(t, err)

	p1 := part(asset.PartName("level", 1), 2, 0)
	p1.Words[0] = 0x0401
	p2 := part(asset.PartName("level", 2), 2, 0x40)
	p2.Words[1] = 0x0001
	require.Nil(t, cat.Add(p1, "1", ""))
	require.Nil(t, cat.Add(p2, "2", ""))

	out := filepath.Join(dir, FinalDir)
	results, err := Catalog(cat, out, log.New(io.Discard, "", 0))
	require.Nil(t, err)
	require.Len(t, results, 1)

	// The catalog keeps the map geometry
	m, err := results[0].Asset.Map()
	require.Nil(t, err)
	assert.Equal(t, tilemap.Word(0x0403), m.At(1, 0))

	_, err = os.Stat(filepath.Join(out, "level-final"+asset.MapExtension))
	assert.Nil(t, err)
}
