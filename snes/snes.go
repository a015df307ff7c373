/*
Package snes defines the hardware limits shared by every stage of the asset
pipeline, the packed 15-bit color representation and the errors raised when
input or output falls outside of what the hardware can address.

Tiles are addressed with a 10-bit index so no more than 1024 can be referenced
from a single tilemap. Background tiles select one of eight color partitions
of up to 16 colors each. Large tilemaps are split into screens of 32 by 32
cells which the hardware expects to find one after another.
*/
package snes

const (
	// MaxTiles is the number of tiles a 10-bit tilemap index can address
	MaxTiles = 1 << 10

	// MaxPartitions is the number of color partitions a tilemap word can
	// select
	MaxPartitions = 8

	// ScreenSize is the width and height, in cells, of a hardware screen
	ScreenSize = 32

	// ScreenCells is the number of cells in a single hardware screen
	ScreenCells = ScreenSize * ScreenSize

	// TileRows is the number of pixel rows in a hardware tile; each row of
	// each bitplane is one byte
	TileRows = 8
)

// ColorsPerPartition returns the number of colors a single partition holds
// for the given bit depth, or 0 if the bit depth is not supported.
func ColorsPerPartition(bpp int) int {
	switch bpp {
	case 2:
		return 4
	case 4:
		return 16
	case 8:
		return 256
	}
	return 0
}

// Partitioned reports whether tiles at the given bit depth select a color
// partition through the tilemap. 8 bits per pixel addresses the whole
// palette directly.
func Partitioned(bpp int) bool {
	return bpp == 2 || bpp == 4
}

// ValidBitDepth reports whether bpp is one of the supported tile depths.
func ValidBitDepth(bpp int) bool {
	return ColorsPerPartition(bpp) != 0
}
