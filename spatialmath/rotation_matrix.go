package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 row-major values.
// The values are not checked for orthonormality; use IsValid for that.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input to NewRotationMatrix must have length of 9. Has length of %d", len(m))
	}
	var mat [9]float64
	copy(mat[:], m)
	return &RotationMatrix{mat}, nil
}

// NewRotationMatrixFromDense copies a 3x3 gonum matrix.
func NewRotationMatrixFromDense(m mat.Matrix) (*RotationMatrix, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, errors.Errorf("rotation matrix must be 3x3, got %dx%d", r, c)
	}
	rm := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rm.mat[3*i+j] = m.At(i, j)
		}
	}
	return rm, nil
}

// NewIdentityRotationMatrix returns the identity rotation.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// NewRotationMatrixFromColumns stacks the three vectors as columns.
func NewRotationMatrixFromColumns(c0, c1, c2 r3.Vector) *RotationMatrix {
	return &RotationMatrix{[9]float64{
		c0.X, c1.X, c2.X,
		c0.Y, c1.Y, c2.Y,
		c0.Z, c1.Z, c2.Z,
	}}
}

// At returns the element at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the row of the matrix as a vector. For a world-to-camera rotation these are the
// camera axes expressed in world coordinates.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the column of the matrix as a vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Mul applies the rotation to a vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.Row(0).Dot(v),
		Y: rm.Row(1).Dot(v),
		Z: rm.Row(2).Dot(v),
	}
}

// MatMul returns the product rm * other.
func (rm *RotationMatrix) MatMul(other *RotationMatrix) *RotationMatrix {
	out := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		row := rm.Row(i)
		for j := 0; j < 3; j++ {
			out.mat[3*i+j] = row.Dot(other.Col(j))
		}
	}
	return out
}

// Transpose returns the transpose, which is also the inverse of a valid rotation.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	out := &RotationMatrix{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.mat[3*j+i] = rm.mat[3*i+j]
		}
	}
	return out
}

// Trace returns the sum of the diagonal.
func (rm *RotationMatrix) Trace() float64 {
	return rm.mat[0] + rm.mat[4] + rm.mat[8]
}

// Dense returns a gonum copy of the matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}

// IsValid checks that the matrix is orthonormal with a positive unit determinant.
func (rm *RotationMatrix) IsValid(tol float64) bool {
	if !RotationMatrixAlmostEqual(rm.Transpose().MatMul(rm), NewIdentityRotationMatrix(), tol) {
		return false
	}
	return math.Abs(mat.Det(rm.Dense())-1) < tol
}

// MarshalJSON writes the matrix as three rows.
func (rm *RotationMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal([3][3]float64{
		{rm.mat[0], rm.mat[1], rm.mat[2]},
		{rm.mat[3], rm.mat[4], rm.mat[5]},
		{rm.mat[6], rm.mat[7], rm.mat[8]},
	})
}

// UnmarshalJSON reads three rows of three values.
func (rm *RotationMatrix) UnmarshalJSON(data []byte) error {
	var rows [3][3]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	for i, row := range rows {
		copy(rm.mat[3*i:3*i+3], row[:])
	}
	return nil
}

// RotationMatrixAlmostEqual compares two matrices elementwise.
func RotationMatrixAlmostEqual(a, b *RotationMatrix, tol float64) bool {
	for i := range a.mat {
		if math.Abs(a.mat[i]-b.mat[i]) > tol {
			return false
		}
	}
	return true
}

// AngleBetween returns the angle in radians of the relative rotation taking a to b.
func AngleBetween(a, b *RotationMatrix) float64 {
	return RotationMatrixToExp(b.MatMul(a.Transpose())).Norm()
}
