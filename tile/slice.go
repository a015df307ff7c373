package tile

import (
	"fmt"
	"image"

	"github.com/bodgit/snestile/indexed"
	"github.com/bodgit/snestile/snes"
)

// Slice cuts m into tiles of the given size, splitting every source index
// into a local value and a source partition. base is added to each tile's
// source partition, modulo the number of hardware partitions, to give the
// partition written to the tilemap.
func Slice(m *indexed.Image, size image.Point, bpp, base int) (*Set, error) {
	cpp := snes.ColorsPerPartition(bpp)
	if cpp == 0 {
		return nil, fmt.Errorf("tile: unsupported bit depth %d", bpp)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("tile: invalid size %v", size)
	}
	if m.Width%size.X != 0 || m.Height%size.Y != 0 {
		return nil, snes.FormatError(fmt.Sprintf("image size %dx%d is not a multiple of the tile size %dx%d", m.Width, m.Height, size.X, size.Y))
	}
	if base < 0 || base >= snes.MaxPartitions {
		return nil, &snes.RangeError{Field: "partition base", Value: base, Max: snes.MaxPartitions - 1}
	}

	s := &Set{
		Columns:  m.Width / size.X,
		Rows:     m.Height / size.Y,
		Size:     size,
		BitDepth: bpp,
	}
	s.Tiles = make([]Tile, 0, s.Columns*s.Rows)

	partitioned := snes.Partitioned(bpp)

	for ty := 0; ty < s.Rows; ty++ {
		for tx := 0; tx < s.Columns; tx++ {
			t := Tile{
				Width:  size.X,
				Height: size.Y,
				Pix:    make([]uint8, size.X*size.Y),
				Source: make([]uint8, size.X*size.Y),
				Empty:  true,
				X:      tx,
				Y:      ty,
			}

			for y := 0; y < size.Y; y++ {
				for x := 0; x < size.X; x++ {
					idx := m.IndexAt(tx*size.X+x, ty*size.Y+y)
					i := y*size.X + x
					t.Source[i] = idx

					local, partition := int(idx), 0
					if partitioned {
						local, partition = int(idx)%cpp, int(idx)/cpp
					}
					t.Pix[i] = uint8(local)

					// First non-zero pixel decides
					if local != 0 && t.Empty {
						t.Empty = false
						t.SourcePartition = partition
					}
				}
			}

			t.Partition = (base + t.SourcePartition) % snes.MaxPartitions

			s.Tiles = append(s.Tiles, t)
		}
	}

	return s, nil
}
