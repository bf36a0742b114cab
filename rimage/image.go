package rimage

import (
	"image"
	"image/color"
)

// Image is a 3 channel RGB buffer. It is not safe for concurrent writes.
type Image struct {
	data          []Color
	width, height int
}

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	return &Image{
		data:   make([]Color, width*height),
		width:  width,
		height: height,
	}
}

// NewImageFromStdImage copies any image into an Image. The bounds are shifted to start at zero.
func NewImageFromStdImage(img image.Image) *Image {
	if ii, ok := img.(*Image); ok {
		return ii
	}
	bounds := img.Bounds()
	out := NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			out.data[out.kxy(x, y)] = NewColorFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

func (i *Image) kxy(x, y int) int {
	return (y * i.width) + x
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// At implements image.Image. Pixels are returned as color.RGBA to match ColorModel, since some
// encoders assert on the concrete type.
func (i *Image) At(x, y int) color.Color {
	if !i.In(x, y) {
		return color.RGBA{}
	}
	c := i.data[i.kxy(x, y)]
	return color.RGBA{c.R, c.G, c.B, 255}
}

// In reports whether the pixel is inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

// Width returns the width in pixels.
func (i *Image) Width() int {
	return i.width
}

// Height returns the height in pixels.
func (i *Image) Height() int {
	return i.height
}

// GetXY returns the color at a pixel. The pixel must be in bounds.
func (i *Image) GetXY(x, y int) Color {
	return i.data[i.kxy(x, y)]
}

// SetXY sets the color at a pixel. The pixel must be in bounds.
func (i *Image) SetXY(x, y int, c Color) {
	i.data[i.kxy(x, y)] = c
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	if i.In(x, y) {
		i.data[i.kxy(x, y)] = NewColorFromColor(c)
	}
}

// Clone returns a deep copy.
func (i *Image) Clone() *Image {
	out := &Image{data: make([]Color, len(i.data)), width: i.width, height: i.height}
	copy(out.data, i.data)
	return out
}
