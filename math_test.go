package thf

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestNormUnit(t *testing.T) {
	if !scalar.EqualWithinAbs(Norm([3]float64{3, 4, 12}), 13, 1e-12) {
		t.Fatal("incorrect norm")
	}
	u := Unit([3]float64{0, 3, 4})
	if !floats.EqualApprox(u[:], []float64{0, 0.6, 0.8}, 1e-12) {
		t.Fatalf("incorrect unit vector %v", u)
	}
	if Unit([3]float64{}) != [3]float64{} {
		t.Fatal("the zero vector has no direction")
	}
}

func TestRad2deg(t *testing.T) {
	for _, tc := range []struct{ rad, deg float64 }{
		{0, 0}, {math.Pi / 2, 90}, {-math.Pi / 2, 270}, {math.Pi, 180},
	} {
		if got := Rad2deg(tc.rad); !scalar.EqualWithinAbs(got, tc.deg, 1e-12) {
			t.Fatalf("%f rad = %f deg, expected %f", tc.rad, got, tc.deg)
		}
	}
}

func TestResultDirection(t *testing.T) {
	for _, tc := range []struct {
		v       [3]float64
		ra, dec float64
	}{
		{[3]float64{1, 0, 0}, 0, 0},
		{[3]float64{0, 2, 0}, 90, 0},
		{[3]float64{0, -2, 0}, 270, 0},
		{[3]float64{0, 0, 5}, 0, 90},
		{[3]float64{1, 1, math.Sqrt2}, 45, 45},
		{[3]float64{}, 0, 0},
	} {
		rslt := Result{Vector: tc.v}
		ra, dec := rslt.Direction()
		if !scalar.EqualWithinAbs(ra, tc.ra, 1e-9) || !scalar.EqualWithinAbs(dec, tc.dec, 1e-9) {
			t.Fatalf("%v: ra=%f dec=%f, expected %f and %f", tc.v, ra, dec, tc.ra, tc.dec)
		}
	}
	if !scalar.EqualWithinAbs((Result{Vector: [3]float64{0, 3, 4}}).Magnitude(), 5, 1e-12) {
		t.Fatal("incorrect magnitude")
	}
}
