package snes

import "image/color"

// Color is a packed 15-bit color, stored as 0BBBBBGGGGGRRRRR.
type Color uint16

// Pack truncates each 8-bit channel to 5 bits and packs the result.
func Pack(r, g, b uint8) Color {
	return Color(uint16(b>>3)<<10 | uint16(g>>3)<<5 | uint16(r>>3))
}

// Model converts any color to its packed representation. Alpha is ignored.
var Model color.Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if p, ok := c.(Color); ok {
		return p
	}
	return FromColor(c)
}

// FromColor packs an arbitrary color, ignoring alpha.
func FromColor(c color.Color) Color {
	if p, ok := c.(Color); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// RGB returns the channels expanded back to 8 bits. The low three bits of
// each channel are always zero.
func (c Color) RGB() (r, g, b uint8) {
	r = uint8(c&0x1f) << 3
	g = uint8(c>>5&0x1f) << 3
	b = uint8(c>>10&0x1f) << 3
	return
}

// RGBA implements the color.Color interface. A packed color is always
// opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	return color.NRGBA{r8, g8, b8, 0xff}.RGBA()
}
