/*
Package indexed implements a decoder and encoder for indexed color PNG images
that keeps the raw palette indices intact.

The standard library decoder expands palettes and is free to reorder nothing
but it also accepts images the tile pipeline can't use. This decoder rejects
anything that isn't a non-interlaced, palette based image with a bit depth of
1, 2, 4 or 8 and hands back one index per pixel together with the palette in
its original order.
*/
package indexed

import (
	"image/color"
)

const (
	colorTypePaletted = 3
	maxPalette        = 256
)

var signature = []byte("\x89PNG\r\n\x1a\n")

// Image is a decoded indexed image. Every value in Indices is less than
// len(Palette); pixels are only ever palette indices, direct color images
// are rejected when decoding.
type Image struct {
	Width    int
	Height   int
	BitDepth int
	Indices  []uint8
	Palette  []color.NRGBA
}

// New returns an empty image of the given geometry. The bit depth defaults
// to 8.
func New(width, height int, palette []color.NRGBA) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		BitDepth: 8,
		Indices:  make([]uint8, width*height),
		Palette:  palette,
	}
}

// IndexAt returns the palette index of the pixel at (x, y).
func (m *Image) IndexAt(x, y int) uint8 {
	return m.Indices[y*m.Width+x]
}

// SetIndex sets the palette index of the pixel at (x, y).
func (m *Image) SetIndex(x, y int, i uint8) {
	m.Indices[y*m.Width+x] = i
}
