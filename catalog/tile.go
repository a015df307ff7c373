package catalog

import (
	"bytes"
	"fmt"
	"image"

	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
)

func decodeTiles(b []byte, size image.Point, bpp int) ([]tile.Tile, error) {
	if n := tile.Bytes(size, bpp); n <= 0 || len(b)%n != 0 {
		return nil, snes.FormatError(fmt.Sprintf("stored tiles are %d bytes, not a multiple of %d", len(b), n))
	}
	return tile.Decode(bytes.NewReader(b), size, bpp)
}
