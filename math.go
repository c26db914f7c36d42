package thf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	deg2rad = math.Pi / 180
)

// Norm returns the norm of a vector.
func Norm(v [3]float64) float64 {
	return floats.Norm(v[:], 2)
}

// Unit returns the unit vector of a given vector, or the zero vector.
func Unit(a [3]float64) (b [3]float64) {
	n := Norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return
	}
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// Cartesian2Spherical returns the norm, colatitude and longitude (in radians) of a vector.
func Cartesian2Spherical(a [3]float64) (b [3]float64) {
	n := Norm(a)
	if n == 0 {
		return
	}
	b[0] = n
	b[1] = math.Acos(a[2] / n)
	b[2] = math.Atan2(a[1], a[0])
	return
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// Magnitude returns the norm of the vector.
func (r Result) Magnitude() float64 {
	return Norm(r.Vector)
}

// Direction returns the right ascension in [0, 360) and the declination in [-90, 90] of
// the vector, in degrees. A zero vector has a zero direction.
func (r Result) Direction() (ra, dec float64) {
	sph := Cartesian2Spherical(r.Vector)
	if sph[0] == 0 {
		return 0, 0
	}
	return Rad2deg(sph[2]), 90 - sph[1]/deg2rad
}
