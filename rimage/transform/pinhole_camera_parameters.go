package transform

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// ErrSingularMatrix is returned when a camera or homography matrix has no inverse.
var ErrSingularMatrix = errors.New("matrix is singular")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
// Stitching works in centered pixel coordinates, so the principal point is normally zero.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewCenteredIntrinsics returns the diag(f, f, 1) camera shared by every image of a panorama.
func NewCenteredIntrinsics(focal float64, width, height int) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     focal,
		Fy:     focal,
	}
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	return nil
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// GetInverseCameraMatrix returns K^-1, which maps pixels to rays in the camera frame.
func (params *PinholeCameraIntrinsics) GetInverseCameraMatrix() (*mat.Dense, error) {
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	var inv mat.Dense
	if err := inv.Inverse(params.GetCameraMatrix()); err != nil {
		return nil, errors.Wrap(ErrSingularMatrix, err.Error())
	}
	return &inv, nil
}

// PixelToRay returns the camera frame ray (z = 1) through a pixel.
func (params *PinholeCameraIntrinsics) PixelToRay(pt r2.Point) r3.Vector {
	return r3.Vector{X: (pt.X - params.Ppx) / params.Fx, Y: (pt.Y - params.Ppy) / params.Fy, Z: 1}
}

// RayToPixel projects a camera frame ray onto the image plane. The boolean is false for rays
// that do not point in front of the camera.
func (params *PinholeCameraIntrinsics) RayToPixel(ray r3.Vector) (r2.Point, bool) {
	if ray.Z <= 0 {
		return r2.Point{}, false
	}
	return r2.Point{X: ray.X/ray.Z*params.Fx + params.Ppx, Y: ray.Y/ray.Z*params.Fy + params.Ppy}, true
}
