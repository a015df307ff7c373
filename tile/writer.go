package tile

import (
	"fmt"
	"io"

	"github.com/bodgit/snestile/snes"
)

type encoder struct {
	w   io.Writer
	bpp int
	tmp []byte
}

// block writes the 8 by 8 block of t whose top-left pixel is (bx, by).
func (e *encoder) block(t *Tile, bx, by int) error {
	for i := range e.tmp {
		e.tmp[i] = 0
	}

	for y := 0; y < blockSize; y++ {
		for x := 0; x < blockSize; x++ {
			v := t.At(bx+x, by+y)
			bit := byte(0x80) >> uint(x)
			for plane := 0; plane < e.bpp; plane++ {
				if v>>uint(plane)&1 != 0 {
					e.tmp[(plane>>1)*2*blockSize+y*2+plane&1] |= bit
				}
			}
		}
	}

	_, err := e.w.Write(e.tmp)
	return err
}

func (e *encoder) encode(t *Tile) error {
	if t.Width%blockSize != 0 || t.Height%blockSize != 0 {
		return fmt.Errorf("tile: size %dx%d is not a multiple of %d", t.Width, t.Height, blockSize)
	}
	max := uint8(1<<uint(e.bpp) - 1)
	for _, v := range t.Pix {
		if v > max {
			return &snes.RangeError{Field: "pixel value", Value: int(v), Max: int(max)}
		}
	}
	for by := 0; by < t.Height; by += blockSize {
		for bx := 0; bx < t.Width; bx += blockSize {
			if err := e.block(t, bx, by); err != nil {
				return err
			}
		}
	}
	return nil
}

// Encode writes the tiles to w in planar format.
func Encode(w io.Writer, tiles []Tile, bpp int) error {
	if !snes.ValidBitDepth(bpp) {
		return fmt.Errorf("tile: unsupported bit depth %d", bpp)
	}

	e := encoder{w: w, bpp: bpp, tmp: make([]byte, bpp*blockSize)}
	for i := range tiles {
		if err := e.encode(&tiles[i]); err != nil {
			return err
		}
	}

	return nil
}
