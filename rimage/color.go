package rimage

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8 bit per channel RGB color. Mosaics carry no alpha.
type Color struct {
	R, G, B uint8
}

// Some colors used by tests and debug overlays.
var (
	Black = NewColor(0, 0, 0)
	White = NewColor(255, 255, 255)
	Red   = NewColor(255, 0, 0)
	Green = NewColor(0, 255, 0)
	Blue  = NewColor(0, 0, 255)
)

// NewColor returns a color from its RGB components.
func NewColor(r, g, b uint8) Color {
	return Color{r, g, b}
}

// NewColorFromColor converts any color, dropping alpha.
func NewColorFromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	r, g, b, _ := c.RGBA()
	return Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// NewColorFromHSV returns the color with the given hue in degrees, saturation and value in [0, 1].
func NewColorFromHSV(h, s, v float64) Color {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return Color{r, g, b}
}

// Palette returns n fully saturated colors with evenly spaced hues.
func Palette(n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = NewColorFromHSV(360*float64(i)/float64(n), 1, 1)
	}
	return out
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex returns the #rrggbb form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// DistanceLab is the perceptual distance between two colors.
func (c Color) DistanceLab(other Color) float64 {
	return c.toColorful().DistanceLab(other.toColorful())
}

func (c Color) toColorful() colorful.Color {
	cc, _ := colorful.MakeColor(c)
	return cc
}
