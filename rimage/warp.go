package rimage

import (
	"math"

	"go.viam.com/pano/utils"
)

// areaWeight is the overlap between a unit pixel centered at (px, py) and a unit square centered
// at (x, y).
func areaWeight(x, y float64, px, py int) float64 {
	dx := 1 - math.Abs(float64(px)-x)
	dy := 1 - math.Abs(float64(py)-y)
	return dx * dy
}

// SampleAreaWeighted resamples the image at a continuous pixel position by weighting the four
// surrounding pixels with their overlapping area. Positions outside [0,w)x[0,h) are invalid;
// neighbours past the last row or column are clamped to the edge.
func (i *Image) SampleAreaWeighted(x, y float64) (Color, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= float64(i.width) || y >= float64(i.height) {
		return Color{}, false
	}

	x0, y0 := int(x), int(y)
	var r, g, b float64
	for _, p := range [4][2]int{{x0, y0}, {x0 + 1, y0}, {x0, y0 + 1}, {x0 + 1, y0 + 1}} {
		w := areaWeight(x, y, p[0], p[1])
		if w == 0 {
			continue
		}
		c := i.GetXY(min(p[0], i.width-1), min(p[1], i.height-1))
		r += w * float64(c.R)
		g += w * float64(c.G)
		b += w * float64(c.B)
	}
	return Color{clampByte(r), clampByte(g), clampByte(b)}, true
}

func clampByte(v float64) uint8 {
	return uint8(utils.Clamp(math.Round(v), 0, 255))
}
