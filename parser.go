package thf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	kitlog "github.com/go-kit/log"
)

// Segment delimiters and header keys of a thrust history file.
const (
	beginKeyword   = "BeginThrust"
	endKeyword     = "EndThrust"
	keyStartEpoch  = "Start_Epoch"
	keyFrame       = "Thrust_Vector_Coordinate_System"
	keyAccelMethod = "Thrust_Vector_Interpolation_Method"
	keyMassMethod  = "Mass_Flow_Rate_Interpolation_Method"
	// minDataRowLen is the length of the shortest valid row, "0 0 0 0".
	minDataRowLen = 7
)

type parseState uint8

const (
	scanForSegment parseState = iota + 1
	readHeader
	readProfile
)

func (s parseState) String() string {
	switch s {
	case scanForSegment:
		return "scan"
	case readHeader:
		return "header"
	case readProfile:
		return "profile"
	}
	panic("cannot stringify unknown parser state")
}

// Parser reads thrust history file text into segments.
type Parser struct {
	// DefaultFrame is set on segments which do not name a frame.
	DefaultFrame string
	tc           TimeConverter // if nil, segments are returned as read, without validation
	logger       kitlog.Logger
}

// NewParser returns a parser which validates each segment with the provided time converter.
func NewParser(tc TimeConverter, logger kitlog.Logger) *Parser {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Parser{DefaultFrame: DefaultFrameName, tc: tc, logger: kitlog.With(logger, "subsys", "parser")}
}

// Parse reads segments with the default time converter and no logging.
func Parse(r io.Reader) ([]Segment, error) {
	return NewParser(NewTimeSystemConverter(), nil).Parse(r)
}

// Parse reads every BeginThrust ... EndThrust block of the stream. Any error aborts
// the whole parse and no segment is returned.
func (p *Parser) Parse(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		segments []Segment
		seen     = make(map[string]bool)
		state    = scanForSegment
		seg      Segment
		beginAt  int
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		switch state {
		case scanForSegment:
			if !strings.Contains(line, beginKeyword) {
				continue
			}
			name, ok := braceName(line)
			if !ok || name == "" {
				return nil, newError(ErrMalformedHeader, "", lineNo, "%s without a {name}", beginKeyword)
			}
			if seen[name] {
				return nil, newError(ErrDuplicateSegment, name, lineNo, "segment defined more than once")
			}
			seen[name] = true
			seg = NewSegment(name)
			beginAt = lineNo
			state = readHeader

		case readHeader:
			if flag, ok := modelFlagFromLine(line); ok {
				seg.Model = flag
				seg.ModelsThrust = flag.ModelsThrust()
				state = readProfile
				continue
			}
			if strings.Contains(line, endKeyword) {
				return nil, newError(ErrMalformedHeader, seg.Name, lineNo, "EndSegment before data")
			}
			if strings.Contains(line, beginKeyword) {
				return nil, newError(ErrUnterminatedSegment, seg.Name, lineNo, "%s found inside the header", beginKeyword)
			}
			if err := setHeaderField(&seg, line, lineNo); err != nil {
				return nil, err
			}

		case readProfile:
			if strings.Contains(line, endKeyword) {
				name, _ := braceName(line)
				if name != seg.Name {
					return nil, newError(ErrSegmentNameMismatch, seg.Name, lineNo, "%s names %q", endKeyword, name)
				}
				if seg.FrameName == "" {
					seg.FrameName = p.DefaultFrame
				}
				if p.tc != nil {
					if err := seg.Validate(p.tc); err != nil {
						return nil, err
					}
				}
				p.logger.Log("level", "info", "segment", seg.Name, "points", len(seg.Profile), "model", seg.Model, "lines", lineNo-beginAt+1)
				segments = append(segments, seg)
				seg = Segment{}
				state = scanForSegment
				continue
			}
			if strings.Contains(line, beginKeyword) {
				return nil, newError(ErrUnterminatedSegment, seg.Name, lineNo, "%s found before %s", beginKeyword, endKeyword)
			}
			if len(strings.TrimSpace(line)) < minDataRowLen {
				continue
			}
			point, err := parseProfileRow(line, seg.Model.HasMassRate())
			if err != nil {
				return nil, newError(ErrInvalidProfileRow, seg.Name, lineNo, "%s", err)
			}
			seg.Profile = append(seg.Profile, point)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != scanForSegment {
		return nil, newError(ErrUnterminatedSegment, seg.Name, lineNo, "end of file while reading the %s", state)
	}
	return segments, nil
}

// braceName returns the trimmed content of the first {...} token of the line.
func braceName(line string) (string, bool) {
	start := strings.Index(line, "{")
	if start < 0 {
		return "", false
	}
	end := strings.Index(line[start+1:], "}")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(line[start+1 : start+1+end]), true
}

// setHeaderField maps a `key = value` line into the segment. The value is everything after
// the first "=". Unknown keys are ignored.
func setHeaderField(seg *Segment, line string, lineNo int) error {
	chunks := strings.SplitN(line, "=", 2)
	if len(chunks) != 2 {
		return nil
	}
	key := strings.TrimSpace(chunks[0])
	value := strings.TrimSpace(chunks[1])
	switch key {
	case keyStartEpoch:
		seg.StartEpochText = value
	case keyFrame:
		seg.FrameName = value
	case keyAccelMethod:
		// The thrust vector cannot refer to itself.
		if _, ok := interpolationFromText(value, NoInterpolation); !ok || value == methodThrustVectorMethod || value == "" {
			return newError(ErrUnknownInterpolationMethod, seg.Name, lineNo, "%s = %q", key, value)
		}
		seg.AccelMethodText = value
	case keyMassMethod:
		if _, ok := interpolationFromText(value, NoInterpolation); !ok || value == "" {
			return newError(ErrUnknownInterpolationMethod, seg.Name, lineNo, "%s = %q", key, value)
		}
		seg.MassMethodText = value
	}
	return nil
}

// parseProfileRow tokenizes `time vx vy vz [mdot]`. Values must be finite. Extra columns
// are ignored.
func parseProfileRow(line string, withMass bool) (ProfilePoint, error) {
	count := 4
	if withMass {
		count = 5
	}
	fields := strings.Fields(line)
	if len(fields) < count {
		return ProfilePoint{}, &strconv.NumError{Func: "parseProfileRow", Num: line, Err: strconv.ErrSyntax}
	}
	var values [5]float64
	for i := 0; i < count; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return ProfilePoint{}, err
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ProfilePoint{}, fmt.Errorf("column %d is not finite: %s", i+1, fields[i])
		}
		values[i] = val
	}
	return ProfilePoint{Time: values[0], Vector: [3]float64{values[1], values[2], values[3]}, Mdot: values[4]}, nil
}
