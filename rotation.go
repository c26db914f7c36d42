package thf

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a 3x3 matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v [3]float64) [3]float64 {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// EclipticToEquatorial rotates an ecliptic vector about the vernal equinox by the obliquity ε (in radians).
func EclipticToEquatorial(v [3]float64, ε float64) [3]float64 {
	return MxV33(R1(-ε), v)
}

// FixedToInertial rotates an Earth fixed vector into the inertial frame for the θgst given in radians.
func FixedToInertial(v [3]float64, θgst float64) [3]float64 {
	return MxV33(R3(-θgst), v)
}
