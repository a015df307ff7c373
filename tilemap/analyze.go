package tilemap

import (
	"fmt"
	"io"

	"github.com/bodgit/snestile/snes"
)

// Stats summarises the words of a tilemap.
type Stats struct {
	Words      int
	MaxTile    int
	Partitions [snes.MaxPartitions]int
	Priority   int
	HFlip      int
	VFlip      int

	// Tiles is the number of tiles available, or zero if unknown.
	Tiles int
	// Missing counts words referencing a tile at or beyond Tiles.
	Missing int
}

// Analyze gathers statistics for words. tiles is the number of tiles in the
// matching tile bitmap, zero to skip the range check.
func Analyze(words []Word, tiles int) Stats {
	s := Stats{Words: len(words), Tiles: tiles}
	for _, w := range words {
		if w.Tile() > s.MaxTile {
			s.MaxTile = w.Tile()
		}
		s.Partitions[w.Partition()]++
		if w.Priority() {
			s.Priority++
		}
		if w.HFlip() {
			s.HFlip++
		}
		if w.VFlip() {
			s.VFlip++
		}
		if tiles > 0 && w.Tile() >= tiles {
			s.Missing++
		}
	}
	return s
}

// OutOfRange reports whether any word references a tile that doesn't exist.
func (s Stats) OutOfRange() bool {
	return s.Missing > 0
}

// WriteTo writes a human-readable report.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, line := range s.Lines() {
		c, err := fmt.Fprintln(w, line)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Lines returns the report one line at a time.
func (s Stats) Lines() []string {
	lines := []string{
		fmt.Sprintf("words: %d", s.Words),
		fmt.Sprintf("max tile index: %d", s.MaxTile),
	}
	if s.Tiles > 0 {
		lines = append(lines, fmt.Sprintf("tiles: %d", s.Tiles))
		if s.OutOfRange() {
			lines = append(lines, fmt.Sprintf("warning: %d words reference a tile beyond the tile data", s.Missing))
		}
	}
	return append(lines,
		fmt.Sprintf("partitions: %v", s.Partitions),
		fmt.Sprintf("priority: %d", s.Priority),
		fmt.Sprintf("hflip: %d", s.HFlip),
		fmt.Sprintf("vflip: %d", s.VFlip),
	)
}
