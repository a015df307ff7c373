package tile

import (
	"fmt"
	"image"
	"io"

	"github.com/bodgit/snestile/snes"
)

var errNotEnough = snes.FormatError("truncated tile data")

// Decode reads planar tiles of the given size until r is exhausted. Only
// the local values are recovered.
func Decode(r io.Reader, size image.Point, bpp int) ([]Tile, error) {
	if !snes.ValidBitDepth(bpp) {
		return nil, fmt.Errorf("tile: unsupported bit depth %d", bpp)
	}
	if size.X <= 0 || size.Y <= 0 || size.X%blockSize != 0 || size.Y%blockSize != 0 {
		return nil, fmt.Errorf("tile: invalid size %v", size)
	}

	tmp := make([]byte, bpp*blockSize)

	var tiles []Tile
	for {
		t := Tile{Width: size.X, Height: size.Y, Pix: make([]uint8, size.X*size.Y), Empty: true}

		for by := 0; by < size.Y; by += blockSize {
			for bx := 0; bx < size.X; bx += blockSize {
				if _, err := io.ReadFull(r, tmp); err != nil {
					switch {
					case err == io.EOF && bx == 0 && by == 0:
						return tiles, nil
					case err == io.EOF, err == io.ErrUnexpectedEOF:
						return nil, errNotEnough
					}
					return nil, err
				}
				for y := 0; y < blockSize; y++ {
					for x := 0; x < blockSize; x++ {
						bit := byte(0x80) >> uint(x)
						var v uint8
						for plane := 0; plane < bpp; plane++ {
							if tmp[(plane>>1)*2*blockSize+y*2+plane&1]&bit != 0 {
								v |= 1 << uint(plane)
							}
						}
						t.Pix[(by+y)*size.X+bx+x] = v
						if v != 0 {
							t.Empty = false
						}
					}
				}
			}
		}

		tiles = append(tiles, t)
	}
}
