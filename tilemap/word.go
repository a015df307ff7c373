/*
Package tilemap packs tile references into 16-bit hardware tilemap words and
serializes them.

Each word is laid out as:

	bits  0-9  tile index
	bits 10-12 color partition, always zero at 8 bits per pixel
	bit  13    priority
	bit  14    horizontal flip
	bit  15    vertical flip

and stored little-endian. Maps wider or taller than 32 cells are stored as a
sequence of 32 by 32 screens.
*/
package tilemap

import (
	"fmt"

	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
)

// Word is a single tilemap entry.
type Word uint16

const (
	tileMask       = 0x03ff
	partitionShift = 10
	partitionMask  = 0x7 << partitionShift
	priorityBit    = 1 << 13
	hflipBit       = 1 << 14
	vflipBit       = 1 << 15
)

// Pack builds the word for a reference at the given bit depth.
func Pack(ref tile.Ref, bpp int) (Word, error) {
	if ref.Index < 0 || ref.Index >= snes.MaxTiles {
		return 0, &snes.RangeError{Field: "tile index", Value: ref.Index, Max: snes.MaxTiles - 1}
	}
	if ref.Partition < 0 || ref.Partition >= snes.MaxPartitions {
		return 0, &snes.RangeError{Field: "partition", Value: ref.Partition, Max: snes.MaxPartitions - 1}
	}

	w := Word(ref.Index)
	if snes.Partitioned(bpp) {
		w |= Word(ref.Partition) << partitionShift
	}
	if ref.Priority {
		w |= priorityBit
	}
	if ref.HFlip {
		w |= hflipBit
	}
	if ref.VFlip {
		w |= vflipBit
	}
	return w, nil
}

// Tile returns the tile index.
func (w Word) Tile() int { return int(w & tileMask) }

// Partition returns the color partition.
func (w Word) Partition() int { return int(w&partitionMask) >> partitionShift }

// Priority reports whether the priority bit is set.
func (w Word) Priority() bool { return w&priorityBit != 0 }

// HFlip reports whether the tile is mirrored horizontally.
func (w Word) HFlip() bool { return w&hflipBit != 0 }

// VFlip reports whether the tile is mirrored vertically.
func (w Word) VFlip() bool { return w&vflipBit != 0 }

// WithTile returns w with the tile index replaced, truncated to 10 bits.
func (w Word) WithTile(i int) Word {
	return w&^tileMask | Word(i)&tileMask
}

// WithPartition returns w with the partition replaced.
func (w Word) WithPartition(p int) Word {
	return w&^partitionMask | Word(p)<<partitionShift&partitionMask
}

// WithPriority returns w with the priority bit set or cleared.
func (w Word) WithPriority(on bool) Word {
	if on {
		return w | priorityBit
	}
	return w &^ priorityBit
}

func (w Word) String() string {
	return fmt.Sprintf("tile=%d partition=%d priority=%t hflip=%t vflip=%t", w.Tile(), w.Partition(), w.Priority(), w.HFlip(), w.VFlip())
}
