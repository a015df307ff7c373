/*
Package merge combines several converted parts of one picture into a single
asset.

Every part is a full-size layer with its own tiles and palette. The parts'
tiles are concatenated, every (part, partition) pair in use is given its own
partition in the merged palette and each cell takes its word from the last
part that has something there.
*/
package merge

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/snestile/asset"
	"github.com/bodgit/snestile/palette"
	"github.com/bodgit/snestile/snes"
	"github.com/bodgit/snestile/tile"
	"github.com/bodgit/snestile/tilemap"
)

// FinalDir is the directory, relative to the parts, merged assets are
// written to.
const FinalDir = "final"

var errNoParts = errors.New("merge: no parts")

// Slot records which part and partition a merged partition came from.
type Slot struct {
	Part      int
	Partition int
}

// Result is a merged asset plus how it was assembled.
type Result struct {
	Asset *asset.Asset
	Slots []Slot
	// Offsets holds the index of the first tile of every part.
	Offsets []int
	// Warnings are non-fatal problems found while merging.
	Warnings []string
}

func usedPartitions(words []tilemap.Word) []int {
	var seen [snes.MaxPartitions]bool
	for _, w := range words {
		if w != 0 {
			seen[w.Partition()] = true
		}
	}

	var used []int
	for p, ok := range seen {
		if ok {
			used = append(used, p)
		}
	}
	return used
}

func maxTile(words []tilemap.Word) int {
	n := -1
	for _, w := range words {
		if w != 0 && w.Tile() > n {
			n = w.Tile()
		}
	}
	return n
}

// Merge combines parts, which must all have the same number of map words,
// bit depth and tile size, and whose words must only refer to their own
// tiles. The merged asset is named name.
func Merge(name string, parts []*asset.Asset) (*Result, error) {
	if len(parts) == 0 {
		return nil, errNoParts
	}

	first := parts[0]
	for _, p := range parts {
		if !p.HasMap() {
			return nil, snes.ConsistencyError(fmt.Sprintf("%s has no tilemap", p.Name))
		}
		if len(p.Words) != len(first.Words) {
			return nil, snes.ConsistencyError(fmt.Sprintf("%s has %d map words, %s has %d", p.Name, len(p.Words), first.Name, len(first.Words)))
		}
		if p.BitDepth != first.BitDepth {
			return nil, snes.ConsistencyError(fmt.Sprintf("%s is %d bits per pixel, %s is %d", p.Name, p.BitDepth, first.Name, first.BitDepth))
		}
		if p.TileSize != first.TileSize {
			return nil, snes.ConsistencyError(fmt.Sprintf("%s has %dx%d tiles, %s has %dx%d", p.Name, p.TileSize.X, p.TileSize.Y, first.Name, first.TileSize.X, first.TileSize.Y))
		}
		// Offsets count tiles, a part read at the wrong size shows up here
		if n := maxTile(p.Words); n >= len(p.Tiles) {
			return nil, snes.ConsistencyError(fmt.Sprintf("%s refers to tile %d but has %d tiles", p.Name, n, len(p.Tiles)))
		}
	}

	r := &Result{
		Asset: &asset.Asset{
			Name:          name,
			BitDepth:      first.BitDepth,
			TileSize:      first.TileSize,
			PartitionBase: first.PartitionBase,
			Words:         make([]tilemap.Word, len(first.Words)),
			Columns:       first.Columns,
			Rows:          first.Rows,
			Layout:        first.Layout,
		},
		Offsets: make([]int, len(parts)),
	}

	partitioned := snes.Partitioned(first.BitDepth)
	cpp := snes.ColorsPerPartition(first.BitDepth)

	// slots[part][partition] is the merged partition
	slots := make([][snes.MaxPartitions]int, len(parts))
	if partitioned {
		for i, p := range parts {
			for _, partition := range usedPartitions(p.Words) {
				slots[i][partition] = len(r.Slots)
				r.Slots = append(r.Slots, Slot{Part: i, Partition: partition})
			}
		}
		if len(r.Slots) > snes.MaxPartitions {
			return nil, &snes.CapacityError{Resource: "merged partitions", Count: len(r.Slots), Max: snes.MaxPartitions}
		}
	}

	var tiles []tile.Tile
	for i, p := range parts {
		r.Offsets[i] = len(tiles)
		tiles = append(tiles, p.Tiles...)
	}
	r.Asset.Tiles = tiles
	if len(tiles) > snes.MaxTiles {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d tiles exceeds the hardware maximum of %d", len(tiles), snes.MaxTiles))
	}

	for c := range r.Asset.Words {
		for i := len(parts) - 1; i >= 0; i-- {
			w := parts[i].Words[c]
			if w == 0 {
				continue
			}
			nw := w.WithTile(w.Tile() + r.Offsets[i])
			if partitioned {
				nw = nw.WithPartition(slots[i][w.Partition()])
			}
			r.Asset.Words[c] = nw
			break
		}
	}

	if partitioned {
		entries := make([]palette.Entry, 0, len(r.Slots)*cpp)
		for _, s := range r.Slots {
			block := make([]palette.Entry, cpp)
			copy(block, parts[s.Part].Palette.Partition(s.Partition))
			entries = append(entries, block...)
		}
		r.Asset.Palette = &palette.Palette{
			Entries:            entries,
			ColorsPerPartition: cpp,
			PartitionCount:     len(r.Slots),
			BitDepth:           first.BitDepth,
			Role:               palette.Background,
		}
	} else {
		r.Asset.Palette = first.Palette
	}

	return r, nil
}

// Groups finds every set of parts in dir, keyed by base name. Part numbers
// are returned in ascending order.
func Groups(dir string) (map[string][]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]int)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != asset.TilesExtension {
			continue
		}
		base, n, ok := asset.ParsePartName(strings.TrimSuffix(e.Name(), asset.TilesExtension))
		if !ok {
			continue
		}
		groups[base] = append(groups[base], n)
	}

	for _, parts := range groups {
		sort.Ints(parts)
	}

	return groups, nil
}

// Load reads the given parts of base from dir. The parts must have been
// converted with the given bit depth and tile size.
func Load(dir, base string, numbers []int, bpp int, size image.Point) ([]*asset.Asset, error) {
	parts := make([]*asset.Asset, 0, len(numbers))
	for _, n := range numbers {
		a, err := asset.Read(dir, asset.PartName(base, n), bpp, size)
		if err != nil {
			return nil, err
		}
		parts = append(parts, a)
	}
	return parts, nil
}

// FinalName returns the name of the merged asset for base.
func FinalName(base string) string {
	return base + "-final"
}

// Dir merges every group of parts found in dir and writes the results to
// out, which defaults to the final directory below dir. Groups are merged
// in name order and the first error stops the run.
func Dir(dir, out string, bpp int, size image.Point, logger *log.Logger) ([]*Result, error) {
	if out == "" {
		out = filepath.Join(dir, FinalDir)
	}

	groups, err := Groups(dir)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("merge: no parts found in %s", dir)
	}

	bases := make([]string, 0, len(groups))
	for base := range groups {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	results := make([]*Result, 0, len(bases))
	for _, base := range bases {
		parts, err := Load(dir, base, groups[base], bpp, size)
		if err != nil {
			return nil, err
		}

		r, err := Merge(FinalName(base), parts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", base, err)
		}
		for _, w := range r.Warnings {
			logger.Println(base+":", w)
		}

		if err := r.Asset.Write(out); err != nil {
			return nil, err
		}
		logger.Printf("Merged %d parts of %s using %d partitions and %d tiles", len(parts), base, len(r.Slots), len(r.Asset.Tiles))

		results = append(results, r)
	}

	return results, nil
}
