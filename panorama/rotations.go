package panorama

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
)

// RelativeRotation recovers the rotation taking camera i to camera i+1 from the homography that
// maps centered pixels of image i+1 into image i: Q = K1^-1 H^-1 K0, snapped to a rotation.
func RelativeRotation(
	h *transform.Homography,
	from, to *transform.PinholeCameraIntrinsics,
) (*spatialmath.RotationMatrix, error) {
	hInv, err := h.Inverse()
	if err != nil {
		return nil, err
	}
	kInv, err := to.GetInverseCameraMatrix()
	if err != nil {
		return nil, err
	}
	var kh, q mat.Dense
	kh.Mul(kInv, hInv.Dense())
	q.Mul(&kh, from.GetCameraMatrix())
	return spatialmath.NearestRotation(&q)
}

// AbsoluteRotations chains the pairwise rotations into one rotation per camera, relative to the
// middle camera which is the identity. There must be one homography per camera; the last one
// closes the ring and does not take part in the chain.
func AbsoluteRotations(
	homs []*transform.Homography,
	intrinsics []*transform.PinholeCameraIntrinsics,
) ([]*spatialmath.RotationMatrix, error) {
	n := len(intrinsics)
	if n == 0 {
		return nil, errors.New("no cameras")
	}
	if len(homs) != n {
		return nil, errors.Errorf("need one homography per camera, got %d for %d cameras", len(homs), n)
	}

	rel := make([]*spatialmath.RotationMatrix, n-1)
	for i := range rel {
		q, err := RelativeRotation(homs[i], intrinsics[i], intrinsics[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "cannot recover rotation between cameras %d and %d", i, i+1)
		}
		rel[i] = q
	}

	mid := n / 2
	rots := make([]*spatialmath.RotationMatrix, n)
	rots[mid] = spatialmath.NewIdentityRotationMatrix()
	for i := mid; i < n-1; i++ {
		rots[i+1] = rel[i].MatMul(rots[i])
	}
	for i := mid - 1; i >= 0; i-- {
		rots[i] = rel[i].Transpose().MatMul(rots[i+1])
	}
	return rots, nil
}

// Straighten applies a global rotation so the cameras' x axes lie in a common horizontal plane,
// removing the tilt a pitched rig leaves after chaining. The new vertical is the direction of
// least variance of the x axes; the new depth axis follows the summed optical axes, or the middle
// camera's when those cancel out as in a full ring.
func Straighten(rots []*spatialmath.RotationMatrix, logger logging.Logger) []*spatialmath.RotationMatrix {
	n := len(rots)
	if n < 2 {
		return rots
	}

	xAxes := mat.NewDense(n, 3, nil)
	var sumY, sumZ r3.Vector
	for i, rot := range rots {
		row := rot.Row(0)
		xAxes.SetRow(i, []float64{row.X, row.Y, row.Z})
		sumY = sumY.Add(rot.Row(1))
		sumZ = sumZ.Add(rot.Row(2))
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, xAxes, nil)
	var svd mat.SVD
	if ok := svd.Factorize(&cov, mat.SVDFull); !ok {
		logger.Warn("cannot factorize camera axis covariance, skipping straightening")
		return rots
	}
	var v mat.Dense
	svd.VTo(&v)
	vy := r3.Vector{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}
	if vy.Dot(sumY) < 0 {
		vy = vy.Mul(-1)
	}

	horizontal := func(z r3.Vector) r3.Vector {
		return z.Sub(vy.Mul(z.Dot(vy)))
	}
	vz := horizontal(sumZ)
	if vz.Norm() < 1e-3*float64(n) {
		logger.Debug("optical axes cancel out, straightening towards the middle camera")
		vz = horizontal(rots[n/2].Row(2))
	}
	if vz.Norm() < 1e-9 {
		logger.Warn("no horizontal reference direction, skipping straightening")
		return rots
	}

	vx := vy.Cross(vz).Normalize()
	vz = vx.Cross(vy)
	global := spatialmath.NewRotationMatrixFromColumns(vx, vy, vz)

	out := make([]*spatialmath.RotationMatrix, n)
	for i, rot := range rots {
		out[i] = rot.MatMul(global)
	}
	return out
}
