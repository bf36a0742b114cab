package panorama

import (
	"context"

	"github.com/golang/geo/r2"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/projection"
	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
)

// Options configures a stitching run. Zero values select the spherical surface, the corner range
// strategy and DefaultMaxResolution.
type Options struct {
	Projection    projection.Projection
	RangeStrategy RangeStrategy
	MaxResolution int
}

// Result is the output of a stitching run.
type Result struct {
	Mosaic      *rimage.Image
	Cameras     []*Camera
	Resolution  r2.Point
	GlobalRange r2.Rect
}

// Stitch estimates the cameras from the homographies, computes their ranges and composites the
// mosaic.
func Stitch(
	ctx context.Context,
	images []*rimage.Image,
	homs []*transform.Homography,
	opts Options,
	logger logging.Logger,
) (*Result, error) {
	if opts.Projection == nil {
		opts.Projection = projection.Spherical{}
	}
	if opts.RangeStrategy == "" {
		opts.RangeStrategy = RangeCorners
	}

	cams, err := InitialEstimate(images, homs, logger.Sublogger("estimate"))
	if err != nil {
		return nil, err
	}
	if err := EstimateRanges(ctx, cams, opts.Projection, opts.RangeStrategy); err != nil {
		return nil, err
	}

	compositor := NewCompositor(opts.Projection, opts.MaxResolution, logger.Sublogger("composite"))
	mosaic, layout, err := compositor.Composite(ctx, cams)
	if err != nil {
		return nil, err
	}
	return &Result{
		Mosaic:      mosaic,
		Cameras:     cams,
		Resolution:  layout.Resolution,
		GlobalRange: layout.GlobalRange,
	}, nil
}
