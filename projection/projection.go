// Package projection maps camera rays onto the curved surfaces panoramas are unwrapped onto.
package projection

import (
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Projection is an invertible mapping between rays and 2D surface coordinates.
type Projection interface {
	// Name is the configuration name of the surface.
	Name() string
	// HomToProj maps a ray (any non-zero scale) to surface coordinates.
	HomToProj(ray r3.Vector) r2.Point
	// ProjToHom maps surface coordinates back to a ray. The result is not normalized.
	ProjToHom(pt r2.Point) r3.Vector
	// Period is the wrap period along each surface axis. Zero means the axis does not wrap.
	Period() r2.Point
}

const (
	// SphericalName selects the spherical surface.
	SphericalName = "spherical"
	// CylindricalName selects the cylindrical surface.
	CylindricalName = "cylindrical"
)

// FromName returns the projection with the given name.
func FromName(name string) (Projection, error) {
	switch strings.ToLower(name) {
	case SphericalName, "":
		return Spherical{}, nil
	case CylindricalName:
		return Cylindrical{}, nil
	default:
		return nil, errors.Errorf("unknown projection %q", name)
	}
}

// Spherical unwraps rays to (longitude, latitude). Longitude is measured about the y axis from
// +z, latitude towards +y.
type Spherical struct{}

// Name implements Projection.
func (Spherical) Name() string {
	return SphericalName
}

// HomToProj implements Projection.
func (Spherical) HomToProj(ray r3.Vector) r2.Point {
	return r2.Point{
		X: math.Atan2(ray.X, ray.Z),
		Y: math.Atan2(ray.Y, math.Hypot(ray.X, ray.Z)),
	}
}

// ProjToHom implements Projection.
func (Spherical) ProjToHom(pt r2.Point) r3.Vector {
	sinT, cosT := math.Sincos(pt.X)
	sinP, cosP := math.Sincos(pt.Y)
	return r3.Vector{X: sinT * cosP, Y: sinP, Z: cosT * cosP}
}

// Period implements Projection.
func (Spherical) Period() r2.Point {
	return r2.Point{X: 2 * math.Pi, Y: math.Pi}
}

// Cylindrical unwraps rays to (angle about y, height on the unit cylinder).
type Cylindrical struct{}

// Name implements Projection.
func (Cylindrical) Name() string {
	return CylindricalName
}

// HomToProj implements Projection.
func (Cylindrical) HomToProj(ray r3.Vector) r2.Point {
	return r2.Point{
		X: math.Atan2(ray.X, ray.Z),
		Y: ray.Y / math.Hypot(ray.X, ray.Z),
	}
}

// ProjToHom implements Projection.
func (Cylindrical) ProjToHom(pt r2.Point) r3.Vector {
	sinT, cosT := math.Sincos(pt.X)
	return r3.Vector{X: sinT, Y: pt.Y, Z: cosT}
}

// Period implements Projection.
func (Cylindrical) Period() r2.Point {
	return r2.Point{X: 2 * math.Pi}
}
