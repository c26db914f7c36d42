package thf

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when neither the primary path nor the search path hold the file.
	ErrFileNotFound = errors.New("thrust history file not found")
	// ErrMalformedHeader is returned when a segment header cannot be read, e.g. EndThrust before any data keyword.
	ErrMalformedHeader = errors.New("malformed segment header")
	// ErrSegmentNameMismatch is returned when EndThrust names another segment than the open BeginThrust.
	ErrSegmentNameMismatch = errors.New("segment name mismatch")
	// ErrUnknownInterpolationMethod is returned for an interpolation method outside the vocabulary.
	ErrUnknownInterpolationMethod = errors.New("unknown interpolation method")
	// ErrInsufficientSplinePoints is recoverable: spline interpolation falls back to linear.
	ErrInsufficientSplinePoints = errors.New("insufficient points for spline interpolation")
	// ErrMissingMassSource is recoverable: mass depletion is disabled.
	ErrMissingMassSource = errors.New("no mass source identified")
	// ErrUnterminatedSegment is returned when the stream ends inside a segment.
	ErrUnterminatedSegment = errors.New("segment not terminated by EndThrust")
	// ErrDuplicateSegment is returned when a file defines the same segment twice.
	ErrDuplicateSegment = errors.New("duplicate segment name")
	// ErrInsufficientProfilePoints is returned when a segment holds fewer than two points.
	ErrInsufficientProfilePoints = errors.New("insufficient profile points")
	// ErrNonMonotonicProfile is returned when the profile times decrease.
	ErrNonMonotonicProfile = errors.New("profile times are not ascending")
	// ErrInvalidProfileRow is returned when a data row cannot be tokenized.
	ErrInvalidProfileRow = errors.New("invalid profile row")
	// ErrInvalidEpoch is returned when the start epoch text cannot be converted.
	ErrInvalidEpoch = errors.New("invalid epoch")
	// ErrUnknownFrame is returned when a frame name cannot be resolved.
	ErrUnknownFrame = errors.New("unknown coordinate frame")
	// ErrUnknownMassSource is returned when a configured mass source does not exist.
	ErrUnknownMassSource = errors.New("unknown mass source")
	// ErrInvalidScaleFactor is returned for non positive scale factors.
	ErrInvalidScaleFactor = errors.New("scale factors must be positive")
	// ErrUnknownSegment is returned when a segment name is not in the store.
	ErrUnknownSegment = errors.New("unknown segment")
)

// Error carries the context of a load failure. Use errors.Is against the Err* kinds.
type Error struct {
	Kind    error
	Segment string
	Line    int // 1-based, zero when unknown
	Msg     string
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Segment != "" {
		s += fmt.Sprintf(" in segment %q", e.Segment)
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, segment string, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Segment: segment, Line: line, Msg: fmt.Sprintf(format, args...)}
}
