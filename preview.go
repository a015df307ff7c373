package snestile

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/snes"
)

// PreviewSuffix is appended to the asset name to give the preview file.
const PreviewSuffix = "-tileset.png"

const previewColumns = 16

// Preview draws the unique tiles of a, 16 to a row, each in the colors of
// the partition it was first seen with. The result is scaled up by scale.
func Preview(a *asset.Asset, scale int) image.Image {
	if len(a.Tiles) == 0 {
		return image.NewNRGBA(image.Rectangle{})
	}

	w, h := a.Tiles[0].Width, a.Tiles[0].Height
	columns := previewColumns
	if len(a.Tiles) < columns {
		columns = len(a.Tiles)
	}
	rows := (len(a.Tiles) + previewColumns - 1) / previewColumns

	img := image.NewNRGBA(image.Rect(0, 0, columns*w, rows*h))

	partitioned := snes.Partitioned(a.BitDepth)
	for i := range a.Tiles {
		t := &a.Tiles[i]
		ox, oy := i%previewColumns*w, i/previewColumns*h

		var base int
		if partitioned {
			base = t.SourcePartition * a.Palette.ColorsPerPartition
		}

		for y := 0; y < t.Height && y < h; y++ {
			for x := 0; x < t.Width && x < w; x++ {
				idx := base + int(t.At(x, y))
				if idx >= a.Palette.Len() {
					continue
				}
				e := a.Palette.Entries[idx]
				img.SetNRGBA(ox+x, oy+y, color.NRGBA{e.R, e.G, e.B, e.A})
			}
		}
	}

	if scale > 1 {
		return transform.Resize(img, img.Bounds().Dx()*scale, img.Bounds().Dy()*scale, transform.NearestNeighbor)
	}

	return img
}

// WritePreview renders the preview of a and saves it as a PNG in file.
func WritePreview(file string, a *asset.Asset, scale int) error {
	return imgio.Save(file, Preview(a, scale), imgio.PNGEncoder())
}
