package matrix

import (
	"fmt"
	"image/color"
)

// Color is a packed 0xAARRGGBB value stored little-endian as b, g, r, a.
// The alpha channel is inverted so that the zero value is opaque black.
type Color uint32

var _ color.Color = Color(0)

// RGBA packs the channels, a is the regular (non-inverted) alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(^a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB is an opaque color.
func RGB(r, g, b uint8) Color { return RGBA(r, g, b, 0xFF) }

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	if c == nil {
		return 0
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(n.R, n.G, n.B, n.A)
}

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// A is the effective alpha; the stored byte is inverted.
func (c Color) A() uint8 { return ^uint8(c >> 24) }

// NRGBA returns the non-premultiplied form.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) { return c.NRGBA().RGBA() }

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R(), c.G(), c.B(), c.A())
}

func (c Color) String() string { return c.Hex() }
