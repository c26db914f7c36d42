package thf

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// splinePoints is the size of the spline window.
const splinePoints = 5

// bracket returns the index i such that profile[i].Time <= offset < profile[i+1].Time,
// the last index if offset is at or past the last time, and -1 if offset precedes the
// first time.
func bracket(profile []ProfilePoint, offset float64) int {
	if len(profile) == 0 || offset < profile[0].Time {
		return -1
	}
	last := len(profile) - 1
	for i := 0; i < last; i++ {
		if profile[i].Time <= offset && offset < profile[i+1].Time {
			return i
		}
	}
	return last
}

// stairstep returns the sample at i unmodified.
func stairstep(profile []ProfilePoint, i int) ProfilePoint {
	return profile[i]
}

// linear blends the samples at i and i+1. On the last index, the last sample is returned.
func linear(profile []ProfilePoint, i int, offset float64) ProfilePoint {
	if i >= len(profile)-1 {
		return profile[len(profile)-1]
	}
	p0, p1 := profile[i], profile[i+1]
	pct := 0.0
	if dt := p1.Time - p0.Time; dt != 0 {
		pct = (offset - p0.Time) / dt
	}
	rslt := ProfilePoint{Time: offset, Mdot: p0.Mdot + pct*(p1.Mdot-p0.Mdot)}
	for j := 0; j < 3; j++ {
		rslt.Vector[j] = p0.Vector[j] + pct*(p1.Vector[j]-p0.Vector[j])
	}
	return rslt
}

// splineWindow returns the first index of the five point window around the bracket i.
// The window is [i-1, i+3], shifted so it stays within the profile.
func splineWindow(i, n int) int {
	idx := i
	if idx < 1 {
		idx = 1
	}
	if idx > n-4 {
		idx = n - 4
	}
	return idx - 1
}

// spline evaluates the not-a-knot cubic through the five samples around i.
// If the profile is too short or the knots cannot be solved, the linear value is
// returned along with the reason.
func spline(profile []ProfilePoint, i int, offset float64) (ProfilePoint, error) {
	if len(profile) < splinePoints {
		return linear(profile, i, offset), fmt.Errorf("%w: requires at least %d points, segment has %d", ErrInsufficientSplinePoints, splinePoints, len(profile))
	}
	start := splineWindow(i, len(profile))
	nak, err := newNotAKnot(profile[start : start+splinePoints])
	if err != nil {
		return linear(profile, i, offset), err
	}
	return nak.At(offset), nil
}

// interpolate evaluates the profile at the offset (in days from the segment start) with the
// given method. A non nil error means the spline fell back to linear interpolation.
func interpolate(method InterpolationMethod, profile []ProfilePoint, i int, offset float64) (ProfilePoint, error) {
	switch method {
	case LinearInterpolation:
		return linear(profile, i, offset), nil
	case SplineInterpolation:
		return spline(profile, i, offset)
	default:
		return stairstep(profile, i), nil
	}
}

// notAKnot holds one not-a-knot cubic spline per column (vx, vy, vz, mdot).
type notAKnot [4]interp.NotAKnotCubic

// newNotAKnot fits the knots, which must have strictly ascending times. At least four
// knots are needed.
func newNotAKnot(knots []ProfilePoint) (*notAKnot, error) {
	n := len(knots)
	if n < 4 {
		return nil, fmt.Errorf("%w: not-a-knot spline requires 4 knots, got %d", ErrInsufficientSplinePoints, n)
	}
	xs := make([]float64, n)
	var cols [4][]float64
	for c := range cols {
		cols[c] = make([]float64, n)
	}
	for k, p := range knots {
		if k > 0 && p.Time <= knots[k-1].Time {
			return nil, fmt.Errorf("spline knots %d and %d are not strictly ascending", k-1, k)
		}
		xs[k] = p.Time
		cols[0][k], cols[1][k], cols[2][k], cols[3][k] = p.Vector[0], p.Vector[1], p.Vector[2], p.Mdot
	}
	var nak notAKnot
	for c := range nak {
		if err := nak[c].Fit(xs, cols[c]); err != nil {
			return nil, fmt.Errorf("spline knots: %w", err)
		}
	}
	return &nak, nil
}

// At evaluates the splines at x. Outside of the knots, the end values are returned.
func (s *notAKnot) At(x float64) ProfilePoint {
	return ProfilePoint{
		Time:   x,
		Vector: [3]float64{s[0].Predict(x), s[1].Predict(x), s[2].Predict(x)},
		Mdot:   s[3].Predict(x),
	}
}
