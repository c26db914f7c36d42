package thf

import (
	"fmt"
	"strings"
)

const (
	// SecondsPerDay converts the profile offsets of a THF (seconds) into days.
	SecondsPerDay = 86400.0
	// DefaultFrameName is the frame of a segment which does not name one.
	DefaultFrameName = "EarthMJ2000Eq"
)

// InterpolationMethod defines how profile samples are interpolated.
type InterpolationMethod uint8

const (
	// NoInterpolation holds the value of the last sample (stairstep).
	NoInterpolation InterpolationMethod = iota
	// LinearInterpolation blends the two samples bracketing the query.
	LinearInterpolation
	// SplineInterpolation uses a 5-point not-a-knot cubic spline.
	SplineInterpolation
)

// Interpolation method names as found in a THF header.
const (
	methodNone               = "None"
	methodLinear             = "Linear"
	methodCubicSpline        = "CubicSpline"
	methodThrustVectorMethod = "ThrustVectorMethod"
)

func (m InterpolationMethod) String() string {
	switch m {
	case NoInterpolation:
		return methodNone
	case LinearInterpolation:
		return methodLinear
	case SplineInterpolation:
		return methodCubicSpline
	}
	return fmt.Sprintf("InterpolationMethod(%d)", uint8(m))
}

// interpolationFromText maps a header value to a method. ThrustVectorMethod is
// resolved to the `thrustVector` method.
func interpolationFromText(text string, thrustVector InterpolationMethod) (InterpolationMethod, bool) {
	switch text {
	case "", methodNone:
		return NoInterpolation, true
	case methodLinear:
		return LinearInterpolation, true
	case methodCubicSpline:
		return SplineInterpolation, true
	case methodThrustVectorMethod:
		return thrustVector, true
	}
	return NoInterpolation, false
}

// ModelFlag defines what a segment's profile models.
type ModelFlag uint8

const (
	// ThrustOnly profiles carry thrust vectors without mass flow.
	ThrustOnly ModelFlag = iota
	// ThrustAndMassRate profiles carry thrust vectors and mass flow rates.
	ThrustAndMassRate
	// AccelOnly profiles carry acceleration vectors without mass flow.
	AccelOnly
	// AccelAndMassRate profiles carry acceleration vectors and mass flow rates.
	AccelAndMassRate
)

// modelKeywords is ordered: the first keyword found on a header line wins.
var modelKeywords = [...]struct {
	keyword string
	flag    ModelFlag
}{
	{"ModelThrustOnly", ThrustOnly},
	{"ModelThrustAndMassRate", ThrustAndMassRate},
	{"ModelAccelOnly", AccelOnly},
	{"ModelAccelAndMassRate", AccelAndMassRate},
}

func (f ModelFlag) String() string {
	if int(f) < len(modelKeywords) {
		return modelKeywords[f].keyword
	}
	return fmt.Sprintf("ModelFlag(%d)", uint8(f))
}

// HasMassRate returns whether profile rows carry a fifth (mass flow) column.
func (f ModelFlag) HasMassRate() bool {
	return f == ThrustAndMassRate || f == AccelAndMassRate
}

// ModelsThrust returns whether the vectors are thrust (as opposed to acceleration).
func (f ModelFlag) ModelsThrust() bool {
	return f == ThrustOnly || f == ThrustAndMassRate
}

// modelFlagFromLine returns the model flag of the first data keyword on the line.
func modelFlagFromLine(line string) (ModelFlag, bool) {
	for _, mk := range modelKeywords {
		if strings.Contains(line, mk.keyword) {
			return mk.flag, true
		}
	}
	return ThrustOnly, false
}

// ProfilePoint is one sample of a thrust profile.
type ProfilePoint struct {
	Time   float64    // offset from the segment start, in days once validated
	Vector [3]float64 // thrust or acceleration, frame relative
	Mdot   float64    // mass flow rate, only set if the model carries mass rate data
}

// Segment is a named, time bounded block of thrust samples.
type Segment struct {
	Name           string
	StartEpochText string
	StartEpoch     float64 // A.1 modified Julian date
	EndEpoch       float64 // StartEpoch + last profile offset
	FrameName      string
	Frame          FrameHandle // set by ResolveFrames
	// Raw interpolation method names from the header.
	AccelMethodText string
	MassMethodText  string

	AccelInterpolation InterpolationMethod
	MassInterpolation  InterpolationMethod
	Model              ModelFlag
	ModelsThrust       bool
	Profile            []ProfilePoint

	validated bool
}

// NewSegment returns a segment with the defaults of a freshly opened BeginThrust block.
func NewSegment(name string) Segment {
	return Segment{
		Name:            name,
		AccelMethodText: methodNone,
		MassMethodText:  methodNone,
		Model:           ThrustOnly,
		ModelsThrust:    true,
	}
}

// Validated returns whether Validate already converted this segment.
func (s *Segment) Validated() bool {
	return s.validated
}

// Duration returns the span of the segment in days.
func (s *Segment) Duration() float64 {
	return s.EndEpoch - s.StartEpoch
}

// Contains returns whether the epoch is within [StartEpoch, EndEpoch].
func (s *Segment) Contains(epoch float64) bool {
	return epoch >= s.StartEpoch && epoch <= s.EndEpoch
}

// Validate converts the start epoch, converts the profile offsets from seconds to days
// and maps the interpolation methods. The offsets are converted only once: calling
// Validate on an already validated segment is a no-op.
func (s *Segment) Validate(tc TimeConverter) error {
	if s.validated {
		return nil
	}
	if len(s.Profile) < 2 {
		return newError(ErrInsufficientProfilePoints, s.Name, 0, "%d point(s), at least 2 are required; is the data preceded by one of %s?", len(s.Profile), modelKeywordList())
	}
	for i := 1; i < len(s.Profile); i++ {
		if s.Profile[i].Time < s.Profile[i-1].Time {
			return newError(ErrNonMonotonicProfile, s.Name, 0, "point %d at %g s precedes point %d at %g s", i, s.Profile[i].Time, i-1, s.Profile[i-1].Time)
		}
	}
	accel, ok := interpolationFromText(s.AccelMethodText, NoInterpolation)
	if !ok || s.AccelMethodText == methodThrustVectorMethod {
		return newError(ErrUnknownInterpolationMethod, s.Name, 0, "thrust vector interpolation %q", s.AccelMethodText)
	}
	mass, ok := interpolationFromText(s.MassMethodText, accel)
	if !ok {
		return newError(ErrUnknownInterpolationMethod, s.Name, 0, "mass flow rate interpolation %q", s.MassMethodText)
	}

	if s.StartEpochText != "" {
		if tc == nil {
			return newError(ErrInvalidEpoch, s.Name, 0, "no time converter for %q", s.StartEpochText)
		}
		utc, err := tc.ConvertGregorianToAbsolute(s.StartEpochText)
		if err != nil {
			return newError(ErrInvalidEpoch, s.Name, 0, "%s", err)
		}
		s.StartEpoch = tc.ConvertEpoch(utc, UTC, A1)
	}

	for i := range s.Profile {
		s.Profile[i].Time /= SecondsPerDay
	}
	s.EndEpoch = s.StartEpoch + s.Profile[len(s.Profile)-1].Time
	s.AccelInterpolation = accel
	s.MassInterpolation = mass
	s.ModelsThrust = s.Model.ModelsThrust()
	if s.FrameName == "" {
		s.FrameName = DefaultFrameName
	}
	s.validated = true
	return nil
}

func modelKeywordList() string {
	kw := make([]string, len(modelKeywords))
	for i, mk := range modelKeywords {
		kw[i] = mk.keyword
	}
	return strings.Join(kw, ", ")
}
