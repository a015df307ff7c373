package tilemap

import (
	"fmt"
	"strings"

	"github.com/bodgit/snestile/snes"
)

// Layout selects the order in which words are written.
type Layout int

const (
	// Auto uses Screen when either dimension exceeds one screen, otherwise
	// Linear.
	Auto Layout = iota
	// Linear writes cells row-major.
	Linear
	// Screen writes 32 by 32 screens row-major, each screen row-major.
	Screen
)

func (l Layout) String() string {
	switch l {
	case Auto:
		return "auto"
	case Linear:
		return "linear"
	case Screen:
		return "screen"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "linear":
		return Linear, nil
	case "screen", "snes":
		return Screen, nil
	}
	return 0, fmt.Errorf("tilemap: unknown layout %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(b []byte) error {
	layout, err := ParseLayout(string(b))
	if err != nil {
		return err
	}
	*l = layout
	return nil
}

// Resolve picks the concrete layout for a grid and checks the grid can be
// written with it.
func (l Layout) Resolve(width, height int) (Layout, error) {
	if l == Auto {
		l = Linear
		if width > snes.ScreenSize || height > snes.ScreenSize {
			l = Screen
		}
	}
	if l == Screen && (width%snes.ScreenSize != 0 || height%snes.ScreenSize != 0) {
		return l, snes.FormatError(fmt.Sprintf("screen layout needs a multiple of %d cells, map is %dx%d", snes.ScreenSize, width, height))
	}
	return l, nil
}

// Offset returns the index of the word for cell (x, y) of a map width cells
// wide. l must be Linear or Screen.
func (l Layout) Offset(width, x, y int) int {
	if l != Screen {
		return y*width + x
	}
	screensPerRow := width / snes.ScreenSize
	screen := x/snes.ScreenSize + y/snes.ScreenSize*screensPerRow
	return screen*snes.ScreenCells + y%snes.ScreenSize*snes.ScreenSize + x%snes.ScreenSize
}
