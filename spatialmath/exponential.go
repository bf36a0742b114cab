package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/pano/utils"
)

// identityAxisThreshold is the magnitude of the skew part below which a rotation is treated as
// exactly the identity.
const identityAxisThreshold = 1e-7

// ErrSVDFailed is returned when a matrix cannot be factorized.
var ErrSVDFailed = errors.New("singular value decomposition failed")

// CrossProductMatrix returns the skew symmetric matrix [v]x such that [v]x * u = v x u.
func CrossProductMatrix(v r3.Vector) *mat.Dense {
	cross := mat.NewDense(3, 3, nil)
	cross.Set(0, 1, -v.Z)
	cross.Set(0, 2, v.Y)
	cross.Set(1, 0, v.Z)
	cross.Set(1, 2, -v.X)
	cross.Set(2, 0, -v.Y)
	cross.Set(2, 1, v.X)
	return cross
}

// ExpToRotationMatrix converts an exponential (axis scaled by angle) vector into a rotation
// matrix using Rodrigues' formula.
func ExpToRotationMatrix(v r3.Vector) *RotationMatrix {
	angle := v.Norm()
	if angle == 0 {
		return NewIdentityRotationMatrix()
	}

	cross := CrossProductMatrix(v.Mul(1 / angle))
	var cross2 mat.Dense
	cross2.Mul(cross, cross)

	rot := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	var tmp mat.Dense
	tmp.Scale(math.Sin(angle), cross)
	rot.Add(rot, &tmp)
	tmp.Scale(1-math.Cos(angle), &cross2)
	rot.Add(rot, &tmp)

	// a freshly built 3x3 never fails the size check
	rm, _ := NewRotationMatrixFromDense(rot)
	return rm
}

// RotationMatrixToExp returns the exponential representation of a rotation. Rotations whose skew
// part is negligible map to the zero vector.
func RotationMatrixToExp(rm *RotationMatrix) r3.Vector {
	axis := r3.Vector{
		X: rm.At(2, 1) - rm.At(1, 2),
		Y: rm.At(0, 2) - rm.At(2, 0),
		Z: rm.At(1, 0) - rm.At(0, 1),
	}
	mod := axis.Norm()
	if mod < identityAxisThreshold {
		return r3.Vector{}
	}
	cosAngle := utils.Clamp((rm.Trace()-1)/2, -1, 1)
	return axis.Mul(math.Acos(cosAngle) / mod)
}

// NearestRotation projects an arbitrary 3x3 matrix onto the closest rotation in Frobenius norm.
// Reflections are removed by negating the result.
func NearestRotation(m mat.Matrix) (*RotationMatrix, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, errors.Errorf("nearest rotation needs a 3x3 matrix, got %dx%d", r, c)
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return nil, ErrSVDFailed
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var rot mat.Dense
	rot.Mul(&u, v.T())
	if mat.Det(&rot) < 0 {
		rot.Scale(-1, &rot)
	}
	return NewRotationMatrixFromDense(&rot)
}

// RotationDerivatives returns dR/dv_i for i in {0, 1, 2}, where v is the exponential
// representation of rm. It uses the compact form from Gallego and Yezzi,
// "A compact formula for the derivative of a 3-D rotation in exponential coordinates":
//
//	dR/dv_i = (v_i [v]x + [v x (I - R) e_i]x) R / |v|^2
//
// At the identity the derivatives are the generators [e_i]x.
func RotationDerivatives(rm *RotationMatrix) [3]*mat.Dense {
	var out [3]*mat.Dense
	basis := [3]r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

	v := RotationMatrixToExp(rm)
	vsqr := v.Norm2()
	if vsqr < 1e-14 {
		for i, e := range basis {
			out[i] = CrossProductMatrix(e)
		}
		return out
	}

	rot := rm.Dense()
	comps := [3]float64{v.X, v.Y, v.Z}
	for i, e := range basis {
		ire := e.Sub(rm.Col(i))
		var term mat.Dense
		term.Scale(comps[i], CrossProductMatrix(v))
		term.Add(&term, CrossProductMatrix(v.Cross(ire)))

		var d mat.Dense
		d.Mul(&term, rot)
		d.Scale(1/vsqr, &d)
		out[i] = &d
	}
	return out
}
