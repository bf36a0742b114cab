package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/spatialmath"
)

// rotationHomography builds K R K^-1 for a centered camera with the given focal length.
func rotationHomography(t *testing.T, focal float64, rot *spatialmath.RotationMatrix) *Homography {
	t.Helper()
	intrinsics := NewCenteredIntrinsics(focal, 640, 480)
	kInv, err := intrinsics.GetInverseCameraMatrix()
	test.That(t, err, test.ShouldBeNil)

	var kr, h mat.Dense
	kr.Mul(intrinsics.GetCameraMatrix(), rot.Dense())
	h.Mul(&kr, kInv)
	hom, err := NewHomographyFromDense(&h)
	test.That(t, err, test.ShouldBeNil)
	return hom
}

func TestEstimateFocal(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		v := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}.Normalize().Mul(0.2 + rnd.Float64())
		hom := rotationHomography(t, 1e3, spatialmath.ExpToRotationMatrix(v))
		test.That(t, EstimateFocal(hom), test.ShouldAlmostEqual, 1e3, 1e-4)

		inv, err := hom.Inverse()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, EstimateFocal(inv), test.ShouldAlmostEqual, 1e3, 1e-4)
	}

	t.Run("pure pan", func(t *testing.T) {
		hom := rotationHomography(t, 850, spatialmath.ExpToRotationMatrix(r3.Vector{Y: math.Pi / 2}))
		test.That(t, EstimateFocal(hom), test.ShouldAlmostEqual, 850, 1e-6)
	})

	t.Run("identity has no estimate", func(t *testing.T) {
		identity, err := NewHomography([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, EstimateFocal(identity), test.ShouldEqual, 0.)
	})
}

func TestFocalFromCandidates(t *testing.T) {
	test.That(t, focalFromCandidates(4, 9, 2, -5), test.ShouldEqual, 3.)
	test.That(t, focalFromCandidates(4, 9, -6, 5), test.ShouldEqual, 2.)
	test.That(t, focalFromCandidates(-4, 9, 6, 5), test.ShouldEqual, 3.)
	test.That(t, focalFromCandidates(math.NaN(), 16, 0, 1), test.ShouldEqual, 4.)
	test.That(t, focalFromCandidates(math.Inf(1), -1, 1, 1), test.ShouldEqual, 0.)
	test.That(t, focalFromCandidates(4, 9, 0, 0), test.ShouldEqual, 0.)

	// the better conditioned candidate wins even when it is the smaller one
	test.That(t, focalFromCandidates(4, 9, 1e-3, 1e-5), test.ShouldEqual, 2.)
	// rounding noise in a denominator does not count as a candidate
	test.That(t, focalFromCandidates(4, 9, 1e-18, 1e-4), test.ShouldEqual, 3.)
	test.That(t, focalFromCandidates(4, 9, 1e-18, -1e-17), test.ShouldEqual, 0.)
}

func TestMedianFocal(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	identity, err := NewHomography([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)

	homs := []*Homography{
		rotationHomography(t, 900, spatialmath.ExpToRotationMatrix(r3.Vector{Y: 0.4})),
		identity,
		rotationHomography(t, 1000, spatialmath.ExpToRotationMatrix(r3.Vector{Y: 0.4, X: 0.05})),
		rotationHomography(t, 1300, spatialmath.ExpToRotationMatrix(r3.Vector{Y: -0.3})),
	}
	focal, err := MedianFocal(homs, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, focal, test.ShouldAlmostEqual, 1000, 1e-4)
	test.That(t, observed.FilterMessage("no focal estimate for pair").Len(), test.ShouldEqual, 1)

	// an even count averages the two middle estimates
	focal, err = MedianFocal(homs[:3], logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, focal, test.ShouldAlmostEqual, 950, 1e-4)

	_, err = MedianFocal([]*Homography{identity, identity}, logger)
	test.That(t, errors.Is(err, ErrInsufficientOverlap), test.ShouldBeTrue)
}
