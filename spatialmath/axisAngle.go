package spatialmath

import (
	"github.com/golang/geo/r3"
)

// An orientation can be expressed by an axis, a unit vector (rx, ry, rz), and a rotation theta
// around that axis. These four numbers can be used as-is (R4), or they can be converted to R3,
// where theta multiplies each of the axis components to give a vector whose length is theta.
// The R3 form is the exponential representation used by the rotation estimators.

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates a zero rotation about the z axis.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// R3ToR4 converts an R3 angle axis to R4. The zero vector becomes NewR4AA.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta == 0 {
		return NewR4AA()
	}
	return &R4AA{theta, aa.X / theta, aa.Y / theta, aa.Z / theta}
}

// RotationMatrixToR4AA returns the axis angle of a rotation.
func RotationMatrixToR4AA(rm *RotationMatrix) *R4AA {
	return R3ToR4(RotationMatrixToExp(rm))
}
