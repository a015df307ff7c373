package tile

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/snestile/indexed"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int, f func(x, y int) uint8) *indexed.Image {
	m := indexed.New(width, height, make([]color.NRGBA, 256))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.SetIndex(x, y, f(x, y))
		}
	}
	return m
}

func pattern() []uint8 {
	p := make([]uint8, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p[y*8+x] = uint8((x + 8*y) % 16)
		}
	}
	return p
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	size, err := ParseSize("8x8")
	require.Nil(t, err)
	assert.Equal(t, image.Pt(8, 8), size)

	size, err = ParseSize("16X16")
	require.Nil(t, err)
	assert.Equal(t, image.Pt(16, 16), size)

	for _, s := range []string{"8", "axb", "12x8", "0x8"} {
		_, err := ParseSize(s)
		assert.NotNil(t, err, s)
	}

	assert.Equal(t, 32, Bytes(image.Pt(8, 8), 4))
	assert.Equal(t, 256, Bytes(image.Pt(16, 16), 8))
}

func TestSlice(t *testing.T) {
	t.Parallel()

	m := testImage(24, 8, func(x, y int) uint8 {
		switch {
		case x < 8:
			if x == 1 && y == 0 {
				return 0x23
			}
			return 0
		case x < 16:
			return 0x10
		default:
			if y == 0 && x == 16 {
				return 0x11
			}
			return 0x71
		}
	})

	s, err := Slice(m, image.Pt(8, 8), 4, 2)
	require.Nil(t, err)
	require.Len(t, s.Tiles, 3)
	assert.Equal(t, 3, s.Columns)
	assert.Equal(t, 1, s.Rows)

	t0 := s.Tile(0, 0)
	assert.False(t, t0.Empty)
	assert.Equal(t, 2, t0.SourcePartition)
	assert.Equal(t, 4, t0.Partition)
	assert.Equal(t, uint8(3), t0.At(1, 0))
	assert.Equal(t, uint8(0x23), t0.Source[1])

	t1 := s.Tile(1, 0)
	assert.True(t, t1.Empty)
	assert.Equal(t, 0, t1.SourcePartition)
	assert.Equal(t, 2, t1.Partition)

	// The first non-zero pixel decides, even if most of the tile disagrees
	t2 := s.Tile(2, 0)
	assert.Equal(t, 1, t2.SourcePartition)
	assert.Equal(t, 3, t2.Partition)
	assert.Equal(t, 2, t2.X)

	s, err = Slice(m, image.Pt(8, 8), 4, 7)
	require.Nil(t, err)
	assert.Equal(t, 1, s.Tile(0, 0).Partition)

	s, err = Slice(m, image.Pt(8, 8), 8, 3)
	require.Nil(t, err)
	assert.Equal(t, uint8(0x23), s.Tile(0, 0).At(1, 0))
	assert.Equal(t, 0, s.Tile(0, 0).SourcePartition)
	assert.Equal(t, 3, s.Tile(0, 0).Partition)

	_, err = Slice(m, image.Pt(16, 8), 4, 0)
	var fe snes.FormatError
	assert.True(t, errors.As(err, &fe))

	_, err = Slice(m, image.Pt(8, 8), 4, 8)
	var re *snes.RangeError
	assert.True(t, errors.As(err, &re))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	m := testImage(16, 8, func(x, y int) uint8 {
		switch {
		case x == 0:
			return 0x11
		case x == 1:
			return 0x31
		case x == 2:
			return 0x22
		case x == 8:
			return 0x10
		default:
			return 0x21
		}
	})

	s, err := Slice(m, image.Pt(8, 8), 4, 0)
	require.Nil(t, err)

	v := Validate(s)
	require.Len(t, v, 1)
	assert.Equal(t, Violation{X: 0, Y: 0, Partitions: []int{1, 2, 3}}, v[0])
	assert.Equal(t, "tile (0,0) uses partitions [1 2 3]", v[0].String())

	s, err = Slice(m, image.Pt(8, 8), 8, 0)
	require.Nil(t, err)
	assert.Nil(t, Validate(s))
}

func orientedTiles() []Tile {
	base := Tile{Width: 8, Height: 8, Pix: pattern()}
	h := Tile{Width: 8, Height: 8, Pix: base.FlipH(), X: 1}
	v := Tile{Width: 8, Height: 8, Pix: base.FlipV(), X: 2}
	hv := Tile{Width: 8, Height: 8, Pix: h.FlipV(), X: 3}
	return []Tile{base, h, v, hv}
}

func TestDedupeFull(t *testing.T) {
	t.Parallel()

	r := Dedupe(orientedTiles(), Full)
	require.Len(t, r.Unique, 1)
	require.Len(t, r.Refs, 4)

	want := []Ref{
		{Index: 0, X: 0},
		{Index: 0, HFlip: true, X: 1},
		{Index: 0, VFlip: true, X: 2},
		{Index: 0, HFlip: true, VFlip: true, X: 3},
	}
	assert.Equal(t, want, r.Refs)
}

func TestDedupeModes(t *testing.T) {
	t.Parallel()

	r := Dedupe(orientedTiles(), Simple)
	assert.Len(t, r.Unique, 4)

	r = Dedupe(orientedTiles(), None)
	assert.Len(t, r.Unique, 4)

	r = Dedupe(orientedTiles(), Horizontal)
	require.Len(t, r.Unique, 2)
	assert.Equal(t, []Ref{
		{Index: 0, X: 0},
		{Index: 0, HFlip: true, X: 1},
		{Index: 1, X: 2},
		{Index: 1, HFlip: true, X: 3},
	}, r.Refs)

	r = Dedupe(orientedTiles(), Vertical)
	require.Len(t, r.Unique, 2)
	assert.Equal(t, []Ref{
		{Index: 0, X: 0},
		{Index: 1, X: 1},
		{Index: 0, VFlip: true, X: 2},
		{Index: 1, VFlip: true, X: 3},
	}, r.Refs)

	duplicate := []Tile{{Width: 8, Height: 8, Pix: pattern()}, {Width: 8, Height: 8, Pix: pattern()}}
	assert.Len(t, Dedupe(duplicate, None).Unique, 2)
	assert.Len(t, Dedupe(duplicate, Simple).Unique, 1)
}

func TestDedupePolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Horizontal, DowngradeBackground(Vertical))
	assert.Equal(t, Horizontal, DowngradeBackground(Full))
	assert.Equal(t, Simple, DowngradeBackground(Simple))

	assert.Equal(t, None, Policy(palette.Sprite, Full))
	assert.Equal(t, Horizontal, Policy(palette.Background, Vertical))
	assert.Equal(t, None, Policy(palette.Background, None))

	assert.Equal(t, Dedupe(orientedTiles(), Horizontal), Dedupe(orientedTiles(), Policy(palette.Background, Vertical)))
}

func TestDedupePartitions(t *testing.T) {
	t.Parallel()

	tiles := []Tile{
		{Width: 8, Height: 8, Pix: pattern(), Partition: 1, SourcePartition: 1},
		{Width: 8, Height: 8, Pix: pattern(), Partition: 3, SourcePartition: 3, X: 1},
	}

	r := Dedupe(tiles, Simple)
	require.Len(t, r.Unique, 1)
	assert.Equal(t, 1, r.Unique[0].SourcePartition)
	assert.Equal(t, 1, r.Refs[0].Partition)
	assert.Equal(t, 3, r.Refs[1].Partition)
	assert.Equal(t, 0, r.Refs[1].Index)
}

func TestMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("FULL")
	require.Nil(t, err)
	assert.Equal(t, Full, m)

	require.Nil(t, m.UnmarshalText([]byte("h")))
	assert.Equal(t, Horizontal, m)
	assert.Equal(t, "h", m.String())

	_, err = ParseMode("diagonal")
	assert.NotNil(t, err)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	pix := make([]uint8, 64)
	pix[0], pix[1], pix[2] = 1, 2, 3

	buf := new(bytes.Buffer)
	require.Nil(t, Encode(buf, []Tile{{Width: 8, Height: 8, Pix: pix}}, 2))
	want := make([]byte, 16)
	want[0], want[1] = 0xa0, 0x60
	assert.Equal(t, want, buf.Bytes())

	pix = make([]uint8, 64)
	pix[0] = 0x0f
	pix[63] = 0x05
	buf.Reset()
	require.Nil(t, Encode(buf, []Tile{{Width: 8, Height: 8, Pix: pix}}, 4))
	want = make([]byte, 32)
	want[0], want[1], want[16], want[17] = 0x80, 0x80, 0x80, 0x80
	want[14], want[30] = 0x01, 0x01
	assert.Equal(t, want, buf.Bytes())

	pix[0] = 4
	err := Encode(buf, []Tile{{Width: 8, Height: 8, Pix: pix}}, 2)
	var re *snes.RangeError
	assert.True(t, errors.As(err, &re))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, bpp := range []int{2, 4, 8} {
		size := image.Pt(16, 8)
		var tiles []Tile
		for n := 0; n < 3; n++ {
			pix := make([]uint8, size.X*size.Y)
			for i := range pix {
				pix[i] = uint8((i*31 + n*17) % (1 << bpp))
			}
			tiles = append(tiles, Tile{Width: size.X, Height: size.Y, Pix: pix})
		}

		buf := new(bytes.Buffer)
		require.Nil(t, Encode(buf, tiles, bpp))
		assert.Equal(t, 3*Bytes(size, bpp), buf.Len())

		got, err := Decode(bytes.NewReader(buf.Bytes()), size, bpp)
		require.Nil(t, err)
		require.Len(t, got, 3)
		for i := range tiles {
			assert.Equal(t, tiles[i].Pix, got[i].Pix)
		}

		_, err = Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-1]), size, bpp)
		assert.Equal(t, errNotEnough, err)
	}
}
