package tile

import (
	"fmt"
	"sort"

	"github.com/bodgit/snestile/snes"
)

// Violation records a tile whose non-zero pixels come from more than one
// source partition. The hardware can only show one partition per tile.
type Violation struct {
	X, Y       int
	Partitions []int
}

func (v Violation) String() string {
	return fmt.Sprintf("tile (%d,%d) uses partitions %v", v.X, v.Y, v.Partitions)
}

// Validate returns every tile mixing partitions. Only 4 bits per pixel
// backgrounds use more than one partition so any other bit depth returns
// nothing.
func Validate(s *Set) []Violation {
	if s.BitDepth != 4 {
		return nil
	}

	cpp := snes.ColorsPerPartition(s.BitDepth)

	var violations []Violation
	for _, t := range s.Tiles {
		seen := make(map[int]struct{})
		for _, idx := range t.Source {
			if int(idx)%cpp == 0 {
				continue
			}
			seen[int(idx)/cpp] = struct{}{}
		}

		if len(seen) < 2 {
			continue
		}

		partitions := make([]int, 0, len(seen))
		for p := range seen {
			partitions = append(partitions, p)
		}
		sort.Ints(partitions)

		violations = append(violations, Violation{X: t.X, Y: t.Y, Partitions: partitions})
	}

	return violations
}
