package panorama

import (
	"context"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/projection"
	"go.viam.com/pano/rimage"
	"go.viam.com/pano/utils"
)

// DefaultMaxResolution bounds the longer side of the mosaic in pixels.
const DefaultMaxResolution = 1400

// GlobalRange is the union of the cameras' ranges.
func GlobalRange(cams []*Camera) r2.Rect {
	if len(cams) == 0 {
		return r2.EmptyRect()
	}
	global := cams[0].Range
	for _, cam := range cams[1:] {
		global = global.Union(cam.Range)
	}
	return global
}

// EstimateResolution picks the surface units per output pixel on each axis. The middle camera's
// native sampling is used, then scaled uniformly so the mosaic's longer side is at most
// maxResolution pixels. It also returns the global range.
func EstimateResolution(cams []*Camera, maxResolution int) (r2.Point, r2.Rect, error) {
	if len(cams) == 0 {
		return r2.Point{}, r2.Rect{}, errors.New("no cameras")
	}
	if maxResolution <= 0 {
		return r2.Point{}, r2.Rect{}, errors.Errorf("max resolution must be positive, got %d", maxResolution)
	}
	global := GlobalRange(cams)
	size := global.Size()

	mid := cams[len(cams)/2]
	midSize := mid.Range.Size()
	res := r2.Point{
		X: midSize.X / float64(mid.Image.Width()),
		Y: midSize.Y / float64(mid.Image.Height()),
	}
	if !(res.X > 0) || !(res.Y > 0) || math.IsInf(res.X, 0) || math.IsInf(res.Y, 0) {
		return r2.Point{}, r2.Rect{}, errors.Errorf("reference camera has a degenerate range %v", mid.Range)
	}

	maxSide := math.Max(size.X/res.X, size.Y/res.Y)
	if maxSide > float64(maxResolution) {
		res = res.Mul(maxSide / float64(maxResolution))
	}
	return res, global, nil
}

// MosaicSize is the pixel size of a mosaic covering global at the given resolution.
func MosaicSize(res r2.Point, global r2.Rect) image.Point {
	size := global.Size()
	return image.Point{
		X: int(math.Round(size.X / res.X)),
		Y: int(math.Round(size.Y / res.Y)),
	}
}

// tileBounds is the sub-rectangle of the mosaic covered by a camera's range.
func tileBounds(rng r2.Rect, res r2.Point, global r2.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round((rng.X.Lo-global.X.Lo)/res.X)),
		int(math.Round((rng.Y.Lo-global.Y.Lo)/res.Y)),
		int(math.Round((rng.X.Hi-global.X.Lo)/res.X)),
		int(math.Round((rng.Y.Hi-global.Y.Lo)/res.Y)),
	)
}

// tile is one camera's warped sub-rectangle, with a mask of the pixels it could fill.
type tile struct {
	bounds image.Rectangle
	pixels *rimage.Image
	valid  []bool
}

// Compositor renders cameras onto a projection surface.
type Compositor struct {
	Projection    projection.Projection
	MaxResolution int
	logger        logging.Logger
}

// NewCompositor returns a compositor for the given surface.
func NewCompositor(proj projection.Projection, maxResolution int, logger logging.Logger) *Compositor {
	if maxResolution <= 0 {
		maxResolution = DefaultMaxResolution
	}
	return &Compositor{Projection: proj, MaxResolution: maxResolution, logger: logger}
}

// Layout places a mosaic on the projection surface.
type Layout struct {
	Resolution  r2.Point
	GlobalRange r2.Rect
	Size        image.Point
}

// PlanLayout sizes the mosaic from the cameras' ranges. Ranges must already be estimated.
func (c *Compositor) PlanLayout(cams []*Camera) (Layout, error) {
	res, global, err := EstimateResolution(cams, c.MaxResolution)
	if err != nil {
		return Layout{}, err
	}
	size := MosaicSize(res, global)
	if size.X <= 0 || size.Y <= 0 {
		return Layout{}, errors.Errorf("mosaic would be empty (%dx%d)", size.X, size.Y)
	}
	return Layout{Resolution: res, GlobalRange: global, Size: size}, nil
}

// Composite allocates a mosaic sized from the cameras' ranges and renders every camera into it.
// It returns the layout the mosaic was rendered with.
func (c *Compositor) Composite(ctx context.Context, cams []*Camera) (*rimage.Image, Layout, error) {
	layout, err := c.PlanLayout(cams)
	if err != nil {
		return nil, Layout{}, err
	}
	c.logger.Infow("compositing", "width", layout.Size.X, "height", layout.Size.Y, "cameras", len(cams))

	mosaic := rimage.NewImage(layout.Size.X, layout.Size.Y)
	if err := c.CompositeInto(ctx, mosaic, cams, layout.Resolution, layout.GlobalRange); err != nil {
		return nil, Layout{}, err
	}
	return mosaic, layout, nil
}

// CompositeInto renders every camera into an existing mosaic. Cameras are warped in parallel and
// pasted in order, so where cameras overlap the last one with a valid sample wins. Pixels no
// camera can sample are left untouched.
func (c *Compositor) CompositeInto(
	ctx context.Context,
	mosaic *rimage.Image,
	cams []*Camera,
	res r2.Point,
	global r2.Rect,
) error {
	defer utils.SlowLogger(ctx, "still compositing", "cameras", len(cams), c.logger)()

	tiles := make([]*tile, len(cams))
	fs := make([]utils.SimpleFunc, len(cams))
	for i, cam := range cams {
		fs[i] = func(ctx context.Context) error {
			bounds := tileBounds(cam.Range, res, global).Intersect(mosaic.Bounds())
			t, err := c.warpCamera(ctx, cam, bounds, res, global)
			if err != nil {
				return errors.Wrapf(err, "camera %d", i)
			}
			c.logger.CDebugf(ctx, "camera %d covers %v", i, bounds)
			tiles[i] = t
			return nil
		}
	}
	if _, err := utils.RunInParallelLimited(ctx, utils.ParallelFactor, fs); err != nil {
		return err
	}

	for _, t := range tiles {
		t.pasteInto(mosaic)
	}
	return nil
}

// warpCamera inverse maps every pixel of bounds back into the camera's image.
func (c *Compositor) warpCamera(
	ctx context.Context,
	cam *Camera,
	bounds image.Rectangle,
	res r2.Point,
	global r2.Rect,
) (*tile, error) {
	halfW, halfH := float64(cam.Image.Width())/2, float64(cam.Image.Height())/2

	t := &tile{
		bounds: bounds,
		pixels: rimage.NewImage(bounds.Dx(), bounds.Dy()),
		valid:  make([]bool, bounds.Dx()*bounds.Dy()),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			surface := r2.Point{X: float64(x)*res.X + global.X.Lo, Y: float64(y)*res.Y + global.Y.Lo}
			px, ok := cam.WorldToPixel(c.Projection.ProjToHom(surface))
			if !ok {
				continue
			}
			color, ok := cam.Image.SampleAreaWeighted(px.X+halfW, px.Y+halfH)
			if !ok {
				continue
			}
			tx, ty := x-bounds.Min.X, y-bounds.Min.Y
			t.pixels.SetXY(tx, ty, color)
			t.valid[ty*bounds.Dx()+tx] = true
		}
	}
	return t, nil
}

func (t *tile) pasteInto(mosaic *rimage.Image) {
	width := t.bounds.Dx()
	for ty := 0; ty < t.bounds.Dy(); ty++ {
		for tx := 0; tx < width; tx++ {
			if t.valid[ty*width+tx] {
				mosaic.SetXY(t.bounds.Min.X+tx, t.bounds.Min.Y+ty, t.pixels.GetXY(tx, ty))
			}
		}
	}
}
