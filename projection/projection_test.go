package projection

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestRoundTrip(t *testing.T) {
	for _, proj := range []Projection{Spherical{}, Cylindrical{}} {
		t.Run(proj.Name(), func(t *testing.T) {
			rnd := rand.New(rand.NewSource(42))
			for i := 0; i < 50; i++ {
				pt := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}.Normalize()
				back := proj.ProjToHom(proj.HomToProj(pt)).Normalize()
				test.That(t, back.X, test.ShouldAlmostEqual, pt.X, 1e-9)
				test.That(t, back.Y, test.ShouldAlmostEqual, pt.Y, 1e-9)
				test.That(t, back.Z, test.ShouldAlmostEqual, pt.Z, 1e-9)
			}
		})
	}
}

func TestSphericalCoordinates(t *testing.T) {
	proj := Spherical{}
	test.That(t, proj.HomToProj(r3.Vector{Z: 2}), test.ShouldResemble, r2.Point{})
	east := proj.HomToProj(r3.Vector{X: 1})
	test.That(t, east.X, test.ShouldAlmostEqual, math.Pi/2)
	up := proj.HomToProj(r3.Vector{Y: 1, Z: 1})
	test.That(t, up.Y, test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, proj.Period(), test.ShouldResemble, r2.Point{X: 2 * math.Pi, Y: math.Pi})
}

func TestCylindricalCoordinates(t *testing.T) {
	proj := Cylindrical{}
	pt := proj.HomToProj(r3.Vector{Y: 0.5, Z: 2})
	test.That(t, pt.X, test.ShouldEqual, 0.)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0.25)
	test.That(t, proj.Period().Y, test.ShouldEqual, 0.)
}

func TestFromName(t *testing.T) {
	proj, err := FromName("Cylindrical")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, proj, test.ShouldResemble, Cylindrical{})

	proj, err = FromName("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, proj.Name(), test.ShouldEqual, SphericalName)

	_, err = FromName("fisheye")
	test.That(t, err, test.ShouldNotBeNil)
}
