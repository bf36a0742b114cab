package panorama

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/rimage"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
)

func rotY(angle float64) *spatialmath.RotationMatrix {
	return spatialmath.ExpToRotationMatrix(r3.Vector{Y: angle})
}

func rotX(angle float64) *spatialmath.RotationMatrix {
	return spatialmath.ExpToRotationMatrix(r3.Vector{X: angle})
}

// ringHomographies builds the exact homographies mapping image i+1 into image i for the given
// world-to-camera rotations, including the pair that closes the ring.
func ringHomographies(
	t *testing.T,
	rots []*spatialmath.RotationMatrix,
	intrinsics *transform.PinholeCameraIntrinsics,
) []*transform.Homography {
	t.Helper()
	kInv, err := intrinsics.GetInverseCameraMatrix()
	test.That(t, err, test.ShouldBeNil)

	homs := make([]*transform.Homography, len(rots))
	for i := range rots {
		next := rots[(i+1)%len(rots)]
		rel := rots[i].MatMul(next.Transpose())
		var kr, h mat.Dense
		kr.Mul(intrinsics.GetCameraMatrix(), rel.Dense())
		h.Mul(&kr, kInv)
		homs[i], err = transform.NewHomographyFromDense(&h)
		test.That(t, err, test.ShouldBeNil)
	}
	return homs
}

func solidImage(width, height int, c rimage.Color) *rimage.Image {
	img := rimage.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetXY(x, y, c)
		}
	}
	return img
}

func assertRotationsClose(t *testing.T, actual, expected *spatialmath.RotationMatrix, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test.That(t, actual.At(i, j), test.ShouldAlmostEqual, expected.At(i, j), tol)
		}
	}
}
