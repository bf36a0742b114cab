// Package panorama estimates a camera model for a ring of overlapping images and composites them
// onto a projection surface.
//
// Rotations map world rays into camera rays, so the rows of a camera's rotation are its axes in
// world coordinates. Pixel coordinates are centered on the image center.
package panorama

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
)

// Camera bundles a source image with its estimated orientation, intrinsics and the extent it
// covers on the projection surface.
type Camera struct {
	Image      *rimage.Image                      `json:"-"`
	Rotation   *spatialmath.RotationMatrix        `json:"rotation"`
	Intrinsics *transform.PinholeCameraIntrinsics `json:"intrinsics"`
	Range      r2.Rect                            `json:"-"`
}

// ForwardMapping returns R^T K^-1, which takes a centered pixel (x, y, 1) to a world ray.
func (c *Camera) ForwardMapping() (*mat.Dense, error) {
	kInv, err := c.Intrinsics.GetInverseCameraMatrix()
	if err != nil {
		return nil, err
	}
	var forward mat.Dense
	forward.Mul(c.Rotation.Transpose().Dense(), kInv)
	return &forward, nil
}

// InverseMapping returns K R, which takes a world ray to homogeneous centered pixel coordinates.
func (c *Camera) InverseMapping() *mat.Dense {
	var inverse mat.Dense
	inverse.Mul(c.Intrinsics.GetCameraMatrix(), c.Rotation.Dense())
	return &inverse
}

// PixelToWorld returns the world ray through a centered pixel.
func (c *Camera) PixelToWorld(pt r2.Point) r3.Vector {
	return c.Rotation.Transpose().Mul(c.Intrinsics.PixelToRay(pt))
}

// WorldToPixel projects a world ray to centered pixel coordinates. The boolean is false for rays
// behind the camera.
func (c *Camera) WorldToPixel(ray r3.Vector) (r2.Point, bool) {
	return c.Intrinsics.RayToPixel(c.Rotation.Mul(ray))
}

// OpticalAxis is the world direction the camera looks along.
func (c *Camera) OpticalAxis() r3.Vector {
	return c.Rotation.Row(2)
}

// checkImageSizes makes sure every image exists and has the same dimensions.
func checkImageSizes(images []*rimage.Image) (int, int, error) {
	if len(images) == 0 {
		return 0, 0, errors.New("no images")
	}
	for i, img := range images {
		if img == nil {
			return 0, 0, errors.Errorf("image %d is nil", i)
		}
		if img.Width() != images[0].Width() || img.Height() != images[0].Height() {
			return 0, 0, errors.Errorf("image %d is %dx%d but image 0 is %dx%d",
				i, img.Width(), img.Height(), images[0].Width(), images[0].Height())
		}
	}
	return images[0].Width(), images[0].Height(), nil
}

func mulVec(m mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}
