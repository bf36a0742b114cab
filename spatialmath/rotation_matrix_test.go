package spatialmath

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestRotationMatrixAccessors(t *testing.T) {
	_, err := NewRotationMatrix(nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "input to NewRotationMatrix must have length of 9. Has length of 0")

	rm, err := NewRotationMatrix([]float64{0, 0, 1, 0, 1, 0, -1, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.IsValid(1e-12), test.ShouldBeTrue)
	test.That(t, rm.Row(0), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 1})
	test.That(t, rm.Col(0), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: -1})
	test.That(t, rm.At(2, 0), test.ShouldEqual, -1.)
	test.That(t, rm.Transpose().Row(0), test.ShouldResemble, rm.Col(0))
	test.That(t, rm.Trace(), test.ShouldEqual, 1.)

	product := rm.MatMul(rm.Transpose())
	test.That(t, RotationMatrixAlmostEqual(product, NewIdentityRotationMatrix(), 1e-12), test.ShouldBeTrue)

	cols := NewRotationMatrixFromColumns(rm.Col(0), rm.Col(1), rm.Col(2))
	test.That(t, cols, test.ShouldResemble, rm)

	skewed, err := NewRotationMatrix([]float64{1, 1, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, skewed.IsValid(1e-6), test.ShouldBeFalse)
}

func TestAngleBetween(t *testing.T) {
	a := ExpToRotationMatrix(r3.Vector{Y: 0.2})
	b := ExpToRotationMatrix(r3.Vector{Y: 0.2 + math.Pi/2})
	test.That(t, AngleBetween(a, b), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, AngleBetween(a, a), test.ShouldEqual, 0.)
}

func TestRotationMatrixJSON(t *testing.T) {
	rm := ExpToRotationMatrix(r3.Vector{X: 0.1, Y: -0.4, Z: 0.25})
	data, err := json.Marshal(rm)
	test.That(t, err, test.ShouldBeNil)

	var parsed RotationMatrix
	test.That(t, json.Unmarshal(data, &parsed), test.ShouldBeNil)
	test.That(t, RotationMatrixAlmostEqual(&parsed, rm, 1e-12), test.ShouldBeTrue)
}
