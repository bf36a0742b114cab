package panorama

import (
	"context"
	"math"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/projection"
	"go.viam.com/pano/utils"
)

// RangeStrategy selects how a camera's extent on the projection surface is estimated.
type RangeStrategy string

const (
	// RangeCorners projects the four image corners and corrects for angular wraparound.
	RangeCorners RangeStrategy = "corners"
	// RangeBorder projects a dense sampling of the image border.
	RangeBorder RangeStrategy = "border"
)

// borderSamplesPerEdge is the number of points sampled along each image edge by RangeBorder.
const borderSamplesPerEdge = 100

// RangeStrategyFromName parses a strategy name. The empty string selects RangeCorners.
func RangeStrategyFromName(name string) (RangeStrategy, error) {
	switch RangeStrategy(strings.ToLower(name)) {
	case RangeCorners, "":
		return RangeCorners, nil
	case RangeBorder:
		return RangeBorder, nil
	default:
		return "", errors.Errorf("unknown range strategy %q", name)
	}
}

// pixelToWorld maps a centered pixel to a world ray.
type pixelToWorld func(pt r2.Point) r3.Vector

func matrixPixelToWorld(forward mat.Matrix) pixelToWorld {
	return func(pt r2.Point) r3.Vector {
		return mulVec(forward, r3.Vector{X: pt.X, Y: pt.Y, Z: 1})
	}
}

// EstimateRangeCorners projects the image corners through the forward mapping. When the left edge
// lands to the right of the right edge the range is assumed to cross the seam and is pushed by
// one period; the vertical extent is handled the same way. An axis without a period has its
// bounds swapped instead.
func EstimateRangeCorners(width, height int, forward mat.Matrix, proj projection.Projection) r2.Rect {
	return cornersRange(width, height, matrixPixelToWorld(forward), proj)
}

func cornersRange(width, height int, toWorld pixelToWorld, proj projection.Projection) r2.Rect {
	w, h := float64(width), float64(height)
	project := func(x, y float64) r2.Point {
		return proj.HomToProj(toWorld(r2.Point{X: x, Y: y}))
	}
	topLeft := project(-w/2, -h/2)
	topRight := project(w/2, -h/2)
	bottomLeft := project(-w/2, h/2)
	bottomRight := project(w/2, h/2)

	period := proj.Period()
	x := unwrapInterval(
		math.Min(topLeft.X, bottomLeft.X),
		math.Max(topRight.X, bottomRight.X),
		period.X,
	)
	y := unwrapInterval(
		math.Min(topLeft.Y, topRight.Y),
		math.Max(bottomLeft.Y, bottomRight.Y),
		period.Y,
	)
	return r2.Rect{X: x, Y: y}
}

func unwrapInterval(lo, hi, period float64) r1.Interval {
	if lo > hi {
		if period == 0 {
			return r1.Interval{Lo: hi, Hi: lo}
		}
		hi += period
	}
	return r1.Interval{Lo: lo, Hi: hi}
}

// EstimateRangeBorder projects points along all four image edges and takes their bounding box.
// No wraparound correction is applied.
func EstimateRangeBorder(width, height int, forward mat.Matrix, proj projection.Projection) r2.Rect {
	return borderRange(width, height, matrixPixelToWorld(forward), proj)
}

func borderRange(width, height int, toWorld pixelToWorld, proj projection.Projection) r2.Rect {
	w, h := float64(width), float64(height)
	xs := floats.Span(make([]float64, borderSamplesPerEdge), 0, w)
	ys := floats.Span(make([]float64, borderSamplesPerEdge), 0, h)
	project := func(x, y float64) r2.Point {
		return proj.HomToProj(toWorld(r2.Point{X: x, Y: y}))
	}

	pts := make([]r2.Point, 0, 4*borderSamplesPerEdge)
	for _, y := range ys {
		pts = append(pts, project(-w/2, y-h/2), project(w/2, y-h/2))
	}
	for _, x := range xs {
		pts = append(pts, project(x-w/2, -h/2), project(x-w/2, h/2))
	}
	return r2.RectFromPoints(pts...)
}

// EstimateRange computes one camera's extent with the given strategy.
func EstimateRange(cam *Camera, proj projection.Projection, strategy RangeStrategy) (r2.Rect, error) {
	if err := cam.Intrinsics.CheckValid(); err != nil {
		return r2.Rect{}, err
	}
	width, height := cam.Image.Width(), cam.Image.Height()
	switch strategy {
	case RangeCorners, "":
		return cornersRange(width, height, cam.PixelToWorld, proj), nil
	case RangeBorder:
		return borderRange(width, height, cam.PixelToWorld, proj), nil
	default:
		return r2.Rect{}, errors.Errorf("unknown range strategy %q", strategy)
	}
}

// EstimateRanges fills in the Range of every camera. Cameras are processed in parallel.
func EstimateRanges(ctx context.Context, cams []*Camera, proj projection.Projection, strategy RangeStrategy) error {
	fs := make([]utils.SimpleFunc, len(cams))
	for i, cam := range cams {
		fs[i] = func(ctx context.Context) error {
			rng, err := EstimateRange(cam, proj, strategy)
			if err != nil {
				return errors.Wrapf(err, "camera %d", i)
			}
			cam.Range = rng
			return nil
		}
	}
	_, err := utils.RunInParallelLimited(ctx, utils.ParallelFactor, fs)
	return err
}
