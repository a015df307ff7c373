/*
Package tile slices an indexed image into tiles, checks them for mixed color
partitions, collapses duplicates and reads and writes the planar tile bitmap.

A tile stores local pixel values, the index of each pixel within its color
partition. The partition itself is not part of the pixel data; it is resolved
once per tile and carried through to the tilemap.

The planar format stores every 8 by 8 block as pairs of bitplanes, each row
of a pair being two bytes, the first holding the lower plane:

	row 0 plane 0, row 0 plane 1, ... row 7 plane 0, row 7 plane 1
	row 0 plane 2, row 0 plane 3, ... (4 and 8 bits per pixel)
	row 0 plane 4, row 0 plane 5, ... (8 bits per pixel)

so a block takes 8 times the bit depth in bytes. Tiles larger than 8 by 8
are written as their blocks in row-major order.
*/
package tile

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

const blockSize = 8

// Block is the size of the smallest hardware tile.
var Block = image.Pt(blockSize, blockSize)

// Tile is one grid cell of the source image.
type Tile struct {
	Width  int
	Height int

	// Pix holds the local value of every pixel, row-major.
	Pix []uint8

	// Source holds the original palette index of every pixel.
	Source []uint8

	// SourcePartition is the partition resolved from the first pixel with a
	// non-zero local value, zero if there is none.
	SourcePartition int

	// Partition is the final partition written to the tilemap.
	Partition int

	// Empty is true if every local value is zero.
	Empty bool

	// X and Y are the grid coordinates in cells.
	X, Y int
}

// At returns the local value at (x, y).
func (t *Tile) At(x, y int) uint8 {
	return t.Pix[y*t.Width+x]
}

// FlipH returns the pixels mirrored left to right.
func (t *Tile) FlipH() []uint8 {
	out := make([]uint8, len(t.Pix))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			out[y*t.Width+x] = t.Pix[y*t.Width+t.Width-1-x]
		}
	}
	return out
}

// FlipV returns the pixels mirrored top to bottom.
func (t *Tile) FlipV() []uint8 {
	out := make([]uint8, len(t.Pix))
	for y := 0; y < t.Height; y++ {
		copy(out[y*t.Width:(y+1)*t.Width], t.Pix[(t.Height-1-y)*t.Width:(t.Height-y)*t.Width])
	}
	return out
}

// Set is the result of slicing an image.
type Set struct {
	Tiles    []Tile
	Columns  int
	Rows     int
	Size     image.Point
	BitDepth int
}

// Tile returns the tile at grid position (x, y).
func (s *Set) Tile(x, y int) *Tile {
	return &s.Tiles[y*s.Columns+x]
}

// ParseSize parses a tile size such as "8x8" or "16x16". Both dimensions
// must be a non-zero multiple of 8.
func ParseSize(s string) (image.Point, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("tile: invalid size %q", s)
	}

	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return image.Point{}, fmt.Errorf("tile: invalid size %q", s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return image.Point{}, fmt.Errorf("tile: invalid size %q", s)
	}

	if w <= 0 || h <= 0 || w%blockSize != 0 || h%blockSize != 0 {
		return image.Point{}, fmt.Errorf("tile: size %dx%d is not a multiple of %d", w, h, blockSize)
	}

	return image.Pt(w, h), nil
}

// Bytes returns the size of one tile of the given dimensions in the planar
// format.
func Bytes(size image.Point, bpp int) int {
	return (size.X / blockSize) * (size.Y / blockSize) * bpp * blockSize
}
