package asset

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAsset() *Asset {
	pix := make([]uint8, 64)
	for i := range pix {
		pix[i] = uint8(i % 16)
	}

	return &Asset{
		Name:     "test",
		BitDepth: 4,
		TileSize: image.Pt(8, 8),
		Tiles: []tile.Tile{
			{Width: 8, Height: 8, Pix: make([]uint8, 64), Empty: true},
			{Width: 8, Height: 8, Pix: pix},
		},
		Palette: palette.FromColors([]color.NRGBA{
			{0, 0, 0, 0xff},
			{0xf8, 0, 0, 0xff},
			{0, 0xf8, 0, 0xff},
		}, 4, palette.Background),
		Words:   []tilemap.Word{0x0000, 0x0401, 0x4001, 0x0000},
		Columns: 2,
		Rows:    2,
		Layout:  tilemap.Linear,
	}
}

func TestWriteRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := testAsset()

	require.Nil(t, a.Write(dir))

	for _, file := range a.Files(dir) {
		_, err := os.Stat(file)
		assert.Nil(t, err, file)
	}

	got, err := Read(dir, "test", 4, tile.Block)
	require.Nil(t, err)

	require.Len(t, got.Tiles, 2)
	assert.True(t, got.Tiles[0].Empty)
	assert.Equal(t, a.Tiles[1].Pix, got.Tiles[1].Pix)
	assert.Equal(t, a.Words, got.Words)
	assert.Equal(t, a.Palette.Entries, got.Palette.Entries)
	assert.Equal(t, 1, got.Palette.PartitionCount)
}

func TestWriteIdempotent(t *testing.T) {
	t.Parallel()

	dir1, dir2 := t.TempDir(), t.TempDir()
	a := testAsset()

	require.Nil(t, a.Write(dir1))
	require.Nil(t, a.Write(dir2))

	for _, ext := range []string{TilesExtension, MapExtension, PaletteExtension, PaletteTextExtension} {
		b1, err := os.ReadFile(filepath.Join(dir1, "test"+ext))
		require.Nil(t, err)
		b2, err := os.ReadFile(filepath.Join(dir2, "test"+ext))
		require.Nil(t, err)
		assert.Equal(t, b1, b2, ext)
	}
}

func TestSpriteHasNoMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := testAsset()
	a.Words = nil

	require.Nil(t, a.Write(dir))
	assert.Len(t, a.Files(dir), 3)

	_, err := os.Stat(filepath.Join(dir, "test"+MapExtension))
	assert.True(t, os.IsNotExist(err))

	got, err := Read(dir, "test", 4, tile.Block)
	require.Nil(t, err)
	assert.False(t, got.HasMap())
}

func TestMap(t *testing.T) {
	t.Parallel()

	m, err := testAsset().Map()
	require.Nil(t, err)
	assert.Equal(t, tilemap.Word(0x4001), m.At(0, 1))

	a := testAsset()
	a.Columns = 0
	_, err = a.Map()
	assert.NotNil(t, err)
}

func TestReadInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.Nil(t, testAsset().Write(dir))

	var fe snes.FormatError

	require.Nil(t, os.WriteFile(filepath.Join(dir, "test"+TilesExtension), make([]byte, 33), 0o644))
	_, err := Read(dir, "test", 4, tile.Block)
	assert.True(t, errors.As(err, &fe))

	require.Nil(t, testAsset().Write(dir))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "test"+MapExtension), make([]byte, 3), 0o644))
	_, err = Read(dir, "test", 4, tile.Block)
	assert.True(t, errors.As(err, &fe))

	require.Nil(t, testAsset().Write(dir))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "test"+PaletteExtension), make([]byte, 5), 0o644))
	_, err = Read(dir, "test", 4, tile.Block)
	assert.True(t, errors.As(err, &fe))

	_, err = Read(dir, "missing", 4, tile.Block)
	assert.True(t, os.IsNotExist(err))
}

func TestReadTileSize(t *testing.T) {
	t.Parallel()

	pix := make([]uint8, 256)
	for i := range pix {
		pix[i] = uint8(i % 16)
	}

	a := testAsset()
	a.TileSize = image.Pt(16, 16)
	a.Tiles = []tile.Tile{{Width: 16, Height: 16, Pix: pix}}
	a.Words = []tilemap.Word{0x0000}
	a.Columns, a.Rows = 1, 1

	dir := t.TempDir()
	require.Nil(t, a.Write(dir))

	got, err := Read(dir, "test", 4, image.Pt(16, 16))
	require.Nil(t, err)
	require.Len(t, got.Tiles, 1)
	assert.Equal(t, image.Pt(16, 16), got.TileSize)
	assert.Equal(t, pix, got.Tiles[0].Pix)

	got, err = Read(dir, "test", 4, tile.Block)
	require.Nil(t, err)
	assert.Len(t, got.Tiles, 4)

	_, err = Read(dir, "test", 4, image.Pt(12, 8))
	assert.NotNil(t, err)
}

func TestPartName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "level-part2", PartName("level", 2))

	base, n, ok := ParsePartName("level-1-part12")
	assert.True(t, ok)
	assert.Equal(t, "level-1", base)
	assert.Equal(t, 12, n)

	_, _, ok = ParsePartName("level")
	assert.False(t, ok)

	_, _, ok = ParsePartName("level-part0")
	assert.False(t, ok)
}
