/*
Package palette builds the final color table for a converted asset.

Colors come either from the palette embedded in the source image or from an
external palette file and are never reordered: tile pixels are stored as
direct slot indices so moving an entry would change the picture. The table is
divided into partitions of 4, 16 or 256 colors depending on the bit depth.
*/
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/bodgit/snestile/snes"
)

// Role selects how many partitions a palette may span.
type Role int

const (
	// Background palettes may span up to eight partitions at 4 bits per
	// pixel.
	Background Role = iota
	// Sprite palettes are limited to a single partition.
	Sprite
)

func (r Role) String() string {
	switch r {
	case Background:
		return "bg"
	case Sprite:
		return "sprite"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole parses a role name as accepted on the command line.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "bg", "background":
		return Background, nil
	case "sprite", "obj", "single":
		return Sprite, nil
	}
	return 0, fmt.Errorf("palette: unknown role %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	role, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// MaxColors returns the largest number of source colors the role accepts at
// the given bit depth.
func MaxColors(role Role, bpp int) int {
	n := snes.ColorsPerPartition(bpp)
	if role == Background && bpp == 4 {
		return n * snes.MaxPartitions
	}
	return n
}

// Entry is a single palette color together with its packed form.
type Entry struct {
	R, G, B, A uint8
	Packed     snes.Color
}

// NewEntry returns the entry for c.
func NewEntry(c color.NRGBA) Entry {
	return Entry{c.R, c.G, c.B, c.A, snes.Pack(c.R, c.G, c.B)}
}

// RGBA implements the color.Color interface.
func (e Entry) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{e.R, e.G, e.B, e.A}.RGBA()
}

// Palette is an ordered color table.
type Palette struct {
	Entries            []Entry
	ColorsPerPartition int
	PartitionCount     int
	BitDepth           int
	Role               Role

	// Inserted is true if a transparent black entry was added at slot 0,
	// every source color then sits one slot later.
	Inserted bool
}

// Shift returns how many slots the source colors were moved by.
func (p *Palette) Shift() int {
	if p.Inserted {
		return 1
	}
	return 0
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.Entries)
}

// Partition returns the entries belonging to partition n, which may be
// fewer than ColorsPerPartition for the last partition.
func (p *Palette) Partition(n int) []Entry {
	start := n * p.ColorsPerPartition
	if start >= len(p.Entries) {
		return nil
	}
	end := start + p.ColorsPerPartition
	if end > len(p.Entries) {
		end = len(p.Entries)
	}
	return p.Entries[start:end]
}

// Color returns the palette as a color.Palette.
func (p *Palette) Color() color.Palette {
	cp := make(color.Palette, len(p.Entries))
	for i, e := range p.Entries {
		cp[i] = e
	}
	return cp
}

// Build creates the palette from the source colors.
//
// A source with exactly one color fewer than a partition holds gets a
// transparent black entry inserted at slot 0, a source that fills a
// partition exactly is used as is. For any other count smaller than a
// partition the colorZero flag decides; sources spanning several partitions
// are never shifted as that would move every partition boundary.
func Build(src []color.NRGBA, bpp int, role Role, colorZero bool) (*Palette, error) {
	cpp := snes.ColorsPerPartition(bpp)
	if cpp == 0 {
		return nil, fmt.Errorf("palette: unsupported bit depth %d", bpp)
	}
	if max := MaxColors(role, bpp); len(src) == 0 || len(src) > max {
		return nil, &snes.CapacityError{Resource: "colors", Count: len(src), Max: max}
	}

	var insert bool
	switch {
	case len(src) == cpp-1:
		insert = true
	case len(src) == cpp:
		insert = false
	case len(src) < cpp:
		insert = colorZero
	}

	p := &Palette{
		ColorsPerPartition: cpp,
		BitDepth:           bpp,
		Role:               role,
		Inserted:           insert,
	}

	if insert {
		p.Entries = append(p.Entries, NewEntry(color.NRGBA{}))
	}
	for _, c := range src {
		p.Entries = append(p.Entries, NewEntry(c))
	}

	p.PartitionCount = (len(p.Entries) + cpp - 1) / cpp

	return p, nil
}

// FromColors wraps colors that already form a final palette, such as one
// read back from a written asset. Nothing is inserted or checked.
func FromColors(src []color.NRGBA, bpp int, role Role) *Palette {
	cpp := snes.ColorsPerPartition(bpp)
	p := &Palette{
		Entries:            make([]Entry, len(src)),
		ColorsPerPartition: cpp,
		BitDepth:           bpp,
		Role:               role,
	}
	for i, c := range src {
		p.Entries[i] = NewEntry(c)
	}
	if cpp > 0 {
		p.PartitionCount = (len(src) + cpp - 1) / cpp
	}
	return p
}
