package transform

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestCenteredIntrinsics(t *testing.T) {
	intrinsics := NewCenteredIntrinsics(1000, 640, 480)
	test.That(t, intrinsics.CheckValid(), test.ShouldBeNil)

	k := intrinsics.GetCameraMatrix()
	test.That(t, mat.Equal(k, mat.NewDense(3, 3, []float64{1000, 0, 0, 0, 1000, 0, 0, 0, 1})), test.ShouldBeTrue)

	kInv, err := intrinsics.GetInverseCameraMatrix()
	test.That(t, err, test.ShouldBeNil)
	var prod mat.Dense
	prod.Mul(k, kInv)
	test.That(t, mat.EqualApprox(&prod, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-12), test.ShouldBeTrue)

	ray := intrinsics.PixelToRay(r2.Point{X: 500, Y: -250})
	test.That(t, ray, test.ShouldResemble, r3.Vector{X: 0.5, Y: -0.25, Z: 1})
	px, ok := intrinsics.RayToPixel(ray.Mul(3))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, px.X, test.ShouldAlmostEqual, 500)
	test.That(t, px.Y, test.ShouldAlmostEqual, -250)

	_, ok = intrinsics.RayToPixel(r3.Vector{Z: -1})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestIntrinsicsCheckValid(t *testing.T) {
	var missing *PinholeCameraIntrinsics
	test.That(t, errors.Is(missing.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)

	for _, bad := range []*PinholeCameraIntrinsics{
		{Width: 0, Height: 480, Fx: 1, Fy: 1},
		{Width: 640, Height: 480, Fx: 0, Fy: 1},
		{Width: 640, Height: 480, Fx: 1, Fy: -2},
	} {
		err := bad.CheckValid()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)
	}

	_, err := (&PinholeCameraIntrinsics{Width: 640, Height: 480}).GetInverseCameraMatrix()
	test.That(t, err, test.ShouldNotBeNil)
}
