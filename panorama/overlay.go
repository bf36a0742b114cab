package panorama

import (
	"image"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"

	"go.viam.com/pano/rimage"
)

// DrawRangeOverlay returns a copy of the mosaic with every camera's sub-rectangle outlined and
// labeled with its index.
func DrawRangeOverlay(mosaic *rimage.Image, cams []*Camera, res r2.Point, global r2.Rect) *rimage.Image {
	dc := gg.NewContextForImage(mosaic)
	palette := rimage.Palette(len(cams))
	for i, cam := range cams {
		bounds := tileBounds(cam.Range, res, global)
		rimage.DrawRectangleEmpty(dc, bounds, palette[i], 2)
		rimage.DrawString(dc, strconv.Itoa(i), bounds.Min.Add(image.Point{X: 4, Y: 4}), palette[i], 14)
	}
	return rimage.NewImageFromStdImage(dc.Image())
}
