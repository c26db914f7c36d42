package thf

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestFramesResolve(t *testing.T) {
	frames := NewFrames(nil, nil)
	for _, name := range []string{EarthMJ2000Eq, EarthMJ2000Ec, EarthFixed} {
		h, err := frames.ResolveFrame(name)
		if err != nil || h == 0 || frames.Name(h) != name {
			t.Fatalf("%s: handle %d (%v)", name, h, err)
		}
	}
	if h, _ := frames.ResolveFrame(EarthMJ2000Eq); h != frames.Base() {
		t.Fatal("EarthMJ2000Eq should be the base frame")
	}
	if _, err := frames.ResolveFrame("Moon"); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame, got %v", err)
	}
	if frames.Name(0) != "" || frames.Name(42) != "" {
		t.Fatal("unresolved handles have no name")
	}
}

func TestFramesRotateToBase(t *testing.T) {
	frames := NewFrames(nil, nil)
	v := [3]float64{1, 2, 3}
	if frames.RotateToBase(frames.Base(), 21545, v) != v || frames.RotateToBase(0, 21545, v) != v || frames.RotateToBase(99, 21545, v) != v {
		t.Fatal("base and unknown frames should not rotate")
	}
	fixed, _ := frames.ResolveFrame(EarthFixed)
	// The Earth rotation keeps the z axis and the norm.
	for _, epoch := range []float64{21545, 21545.25, 25000.7} {
		r := frames.RotateToBase(fixed, epoch, v)
		if !scalar.EqualWithinAbs(r[2], 3, 1e-12) || !scalar.EqualWithinRel(Norm(r), Norm(v), 1e-12) {
			t.Fatalf("epoch %f: incorrect rotation %v", epoch, r)
		}
	}
	// Six sidereal hours later, the fixed frame turned by about a quarter.
	a := frames.RotateToBase(fixed, 21545, [3]float64{1, 0, 0})
	b := frames.RotateToBase(fixed, 21545+6*3600/SecondsPerDay/1.00273790935, [3]float64{1, 0, 0})
	if cos := a[0]*b[0] + a[1]*b[1]; math.Abs(cos) > 1e-4 {
		t.Fatalf("expected a quarter turn, cos = %f", cos)
	}
}

func TestRegisterFixed(t *testing.T) {
	frames := NewFrames(nil, nil)
	h, err := frames.RegisterFixed("Body", R3(-math.Pi/2))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r := frames.RotateToBase(h, 0, [3]float64{1, 0, 0}); !floats.EqualApprox(r[:], []float64{0, 1, 0}, 1e-12) {
		t.Fatalf("incorrect rotation %v", r)
	}
	again, _ := frames.RegisterFixed("Body", R3(0))
	if again != h {
		t.Fatal("registering again should keep the handle")
	}
	if r := frames.RotateToBase(h, 0, [3]float64{1, 0, 0}); r != [3]float64{1, 0, 0} {
		t.Fatalf("rotation not replaced: %v", r)
	}
	if _, err := frames.RegisterFixed("Flat", mat.NewDense(2, 3, nil)); err == nil {
		t.Fatal("expected an error for a 2x3 matrix")
	}
}
