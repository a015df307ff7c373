package tile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bodgit/snestile/palette"
)

// Mode selects which tiles are considered duplicates.
type Mode int

const (
	// None keeps every tile.
	None Mode = iota
	// Simple collapses identical tiles.
	Simple
	// Horizontal also collapses horizontal mirrors.
	Horizontal
	// Vertical also collapses vertical mirrors.
	Vertical
	// Full collapses horizontal, vertical and combined mirrors.
	Full
)

var modeNames = [...]string{
	None:       "none",
	Simple:     "simple",
	Horizontal: "h",
	Vertical:   "v",
	Full:       "full",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("tile: unknown dedupe mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// DowngradeBackground restricts a mode to those backgrounds use: vertical
// and full mirroring are reduced to horizontal mirroring.
//
// This mirrors the behaviour of the tooling the assets were first built
// with. The tilemap can express vertical flips for backgrounds so it may be
// an accidental limitation rather than a hardware one.
func DowngradeBackground(m Mode) Mode {
	switch m {
	case Vertical, Full:
		return Horizontal
	}
	return m
}

// Policy returns the mode actually used for the requested mode and role.
// Sprites never share tiles, backgrounds are downgraded.
func Policy(role palette.Role, requested Mode) Mode {
	if role == palette.Sprite {
		return None
	}
	return DowngradeBackground(requested)
}

// Ref places a unique tile at a grid cell.
type Ref struct {
	Index     int
	HFlip     bool
	VFlip     bool
	Priority  bool
	Partition int
	X, Y      int
}

// Result is the output of Dedupe.
type Result struct {
	Unique []Tile
	Refs   []Ref
}

type orientation struct {
	hflip, vflip bool
}

func (m Mode) orientations() []orientation {
	o := []orientation{{false, false}}
	switch m {
	case Horizontal:
		o = append(o, orientation{true, false})
	case Vertical:
		o = append(o, orientation{false, true})
	case Full:
		o = append(o, orientation{true, false}, orientation{false, true}, orientation{true, true})
	}
	return o
}

func (t *Tile) oriented(o orientation) []uint8 {
	switch {
	case o.hflip && o.vflip:
		flipped := Tile{Width: t.Width, Height: t.Height, Pix: t.FlipH()}
		return flipped.FlipV()
	case o.hflip:
		return t.FlipH()
	case o.vflip:
		return t.FlipV()
	}
	return t.Pix
}

// Dedupe collapses tiles with the same local pattern. Only the pixels are
// compared, two tiles with different partitions share one unique tile and
// keep their own partition in the reference. Unique tiles are searched in
// the order they were added and the first match wins.
func Dedupe(tiles []Tile, mode Mode) Result {
	var r Result
	orientations := mode.orientations()

	for i := range tiles {
		t := &tiles[i]

		ref := Ref{
			Index:     -1,
			Partition: t.Partition,
			X:         t.X,
			Y:         t.Y,
		}

		if mode != None {
		search:
			for j := range r.Unique {
				u := &r.Unique[j]
				if u.Width != t.Width || u.Height != t.Height {
					continue
				}
				for _, o := range orientations {
					if bytes.Equal(t.Pix, u.oriented(o)) {
						ref.Index, ref.HFlip, ref.VFlip = j, o.hflip, o.vflip
						break search
					}
				}
			}
		}

		if ref.Index < 0 {
			ref.Index = len(r.Unique)
			r.Unique = append(r.Unique, *t)
		}

		r.Refs = append(r.Refs, ref)
	}

	return r
}
