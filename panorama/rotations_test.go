package panorama

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/pano/logging"
	"go.viam.com/pano/rimage/transform"
	"go.viam.com/pano/spatialmath"
)

func sharedIntrinsics(n int, focal float64, width, height int) []*transform.PinholeCameraIntrinsics {
	k := transform.NewCenteredIntrinsics(focal, width, height)
	out := make([]*transform.PinholeCameraIntrinsics, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestRelativeRotation(t *testing.T) {
	k := transform.NewCenteredIntrinsics(800, 640, 480)
	from := rotY(0.3)
	to := rotY(0.7).MatMul(rotX(0.1))
	homs := ringHomographies(t, []*spatialmath.RotationMatrix{from, to}, k)

	q, err := RelativeRotation(homs[0], k, k)
	test.That(t, err, test.ShouldBeNil)
	assertRotationsClose(t, q, to.MatMul(from.Transpose()), 1e-9)

	singular, err := transform.NewHomography(make([]float64, 9))
	test.That(t, err, test.ShouldBeNil)
	_, err = RelativeRotation(singular, k, k)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAbsoluteRotationsPlanted(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	const n = 5
	planted := make([]*spatialmath.RotationMatrix, n)
	for i := range planted {
		planted[i] = spatialmath.ExpToRotationMatrix(r3.Vector{
			X: 0.2 * rnd.NormFloat64(),
			Y: 0.5 * float64(i),
			Z: 0.2 * rnd.NormFloat64(),
		})
	}
	intrinsics := sharedIntrinsics(n, 900, 640, 480)
	homs := ringHomographies(t, planted, intrinsics[0])

	rots, err := AbsoluteRotations(homs, intrinsics)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rots, test.ShouldHaveLength, n)

	mid := planted[n/2]
	for i, rot := range rots {
		test.That(t, rot.IsValid(1e-9), test.ShouldBeTrue)
		assertRotationsClose(t, rot, planted[i].MatMul(mid.Transpose()), 1e-9)
	}
	assertRotationsClose(t, rots[n/2], spatialmath.NewIdentityRotationMatrix(), 1e-12)
}

func TestAbsoluteRotationsErrors(t *testing.T) {
	intrinsics := sharedIntrinsics(3, 900, 640, 480)
	homs := ringHomographies(t, []*spatialmath.RotationMatrix{rotY(0), rotY(0.2), rotY(0.4)}, intrinsics[0])

	_, err := AbsoluteRotations(homs[:2], intrinsics)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "one homography per camera")

	_, err = AbsoluteRotations(nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStraightenPitchedRig(t *testing.T) {
	const n = 5
	pitch := rotX(0.3)
	planted := make([]*spatialmath.RotationMatrix, n)
	for i := range planted {
		planted[i] = pitch.MatMul(rotY(0.4 * float64(i)))
	}
	intrinsics := sharedIntrinsics(n, 700, 640, 480)
	homs := ringHomographies(t, planted, intrinsics[0])

	rots, err := AbsoluteRotations(homs, intrinsics)
	test.That(t, err, test.ShouldBeNil)

	// chaining from the middle camera leaves the x axes tilted
	tilted := false
	for _, rot := range rots {
		if math.Abs(rot.Row(0).Y) > 1e-3 {
			tilted = true
		}
	}
	test.That(t, tilted, test.ShouldBeTrue)

	straight := Straighten(rots, logging.NewTestLogger(t))
	test.That(t, straight, test.ShouldHaveLength, n)
	for i, rot := range straight {
		test.That(t, rot.IsValid(1e-9), test.ShouldBeTrue)
		test.That(t, rot.Row(0).Y, test.ShouldAlmostEqual, 0, 1e-9)
		// the camera's y axis keeps pointing the same way as the world's
		test.That(t, rot.Row(1).Y, test.ShouldBeGreaterThan, 0)
		if i > 0 {
			test.That(t,
				spatialmath.AngleBetween(straight[i-1], rot),
				test.ShouldAlmostEqual,
				spatialmath.AngleBetween(rots[i-1], rots[i]),
				1e-9)
		}
	}
}

func TestStraightenFullRing(t *testing.T) {
	rots := []*spatialmath.RotationMatrix{rotY(-math.Pi), rotY(-math.Pi / 2), rotY(0), rotY(math.Pi / 2)}
	straight := Straighten(rots, logging.NewTestLogger(t))
	for i, rot := range straight {
		assertRotationsClose(t, rot, rots[i], 1e-9)
	}
}

func TestStraightenTooFew(t *testing.T) {
	logger := logging.NewTestLogger(t)
	test.That(t, Straighten(nil, logger), test.ShouldBeEmpty)

	single := []*spatialmath.RotationMatrix{rotX(0.5)}
	out := Straighten(single, logger)
	test.That(t, out, test.ShouldHaveLength, 1)
	test.That(t, out[0], test.ShouldEqual, single[0])
}
