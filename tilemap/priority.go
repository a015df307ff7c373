package tilemap

import (
	"fmt"
	"image"

	"github.com/bodgit/snestile/snes"
)

// ApplyPriority sets the priority bit of every cell where any pixel of mask
// is not fully transparent. mask must cover the map exactly with cells of
// the given size. It returns the number of cells marked.
func ApplyPriority(m *Map, mask image.Image, cell image.Point) (int, error) {
	b := mask.Bounds()
	if b.Dx() != m.Width*cell.X || b.Dy() != m.Height*cell.Y {
		return 0, snes.ConsistencyError(fmt.Sprintf("mask is %dx%d pixels, map needs %dx%d", b.Dx(), b.Dy(), m.Width*cell.X, m.Height*cell.Y))
	}

	var marked int
	for cy := 0; cy < m.Height; cy++ {
		for cx := 0; cx < m.Width; cx++ {
			if !opaque(mask, image.Rect(cx*cell.X, cy*cell.Y, (cx+1)*cell.X, (cy+1)*cell.Y).Add(b.Min)) {
				continue
			}
			m.Set(cx, cy, m.At(cx, cy).WithPriority(true))
			marked++
		}
	}
	return marked, nil
}

func opaque(m image.Image, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a > 0 {
				return true
			}
		}
	}
	return false
}
