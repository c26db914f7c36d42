package thf

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// ModJulianOffset is the Julian date of modified Julian date zero (05 Jan 1941 12:00:00.000).
	ModJulianOffset = 2430000.0
	// J2000 is the Julian date of the J2000 epoch.
	J2000 = 2451545.0
	// a1MinusTAI is the offset of the A.1 atomic time scale in seconds.
	a1MinusTAI = 0.0343817
	// ttMinusTAI is the offset of terrestrial time in seconds.
	ttMinusTAI = 32.184
)

// TimeSystem defines a continuous (or leap second aware) time scale.
type TimeSystem uint8

const (
	// UTC is coordinated universal time.
	UTC TimeSystem = iota + 1
	// TAI is international atomic time.
	TAI
	// TT is terrestrial time.
	TT
	// TDB is barycentric dynamical time.
	TDB
	// A1 is the USNO A.1 atomic time, used for all epochs of this package.
	A1
)

func (ts TimeSystem) String() string {
	switch ts {
	case UTC:
		return "UTC"
	case TAI:
		return "TAI"
	case TT:
		return "TT"
	case TDB:
		return "TDB"
	case A1:
		return "A1"
	}
	panic("cannot stringify unknown time system")
}

// TimeConverter converts epoch texts and epochs between time systems.
// Epochs are modified Julian dates relative to ModJulianOffset.
type TimeConverter interface {
	// ConvertGregorianToAbsolute converts a UTC Gregorian text to a UTC modified Julian date.
	ConvertGregorianToAbsolute(text string) (float64, error)
	// ConvertEpoch converts an epoch from one time system to another.
	ConvertEpoch(value float64, from, to TimeSystem) float64
}

// gregorianLayouts are tried in order.
var gregorianLayouts = []string{
	"02 Jan 2006 15:04:05.000",
	"02 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05.000",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// leapSecond is the TAI-UTC offset in effect from the given UTC modified Julian date.
type leapSecond struct {
	mjd    float64
	offset float64
}

// leapSeconds from 1972 on, as modified Julian dates relative to ModJulianOffset.
var leapSeconds = buildLeapSeconds()

func buildLeapSeconds() []leapSecond {
	table := []struct {
		y, m   int
		offset float64
	}{
		{1972, 1, 10}, {1972, 7, 11}, {1973, 1, 12}, {1974, 1, 13}, {1975, 1, 14},
		{1976, 1, 15}, {1977, 1, 16}, {1978, 1, 17}, {1979, 1, 18}, {1980, 1, 19},
		{1981, 7, 20}, {1982, 7, 21}, {1983, 7, 22}, {1985, 7, 23}, {1988, 1, 24},
		{1990, 1, 25}, {1991, 1, 26}, {1992, 7, 27}, {1993, 7, 28}, {1994, 7, 29},
		{1996, 1, 30}, {1997, 7, 31}, {1999, 1, 32}, {2006, 1, 33}, {2009, 1, 34},
		{2012, 7, 35}, {2015, 7, 36}, {2017, 1, 37},
	}
	ls := make([]leapSecond, len(table))
	for i, entry := range table {
		ls[i] = leapSecond{julian.CalendarGregorianToJD(entry.y, entry.m, 1) - ModJulianOffset, entry.offset}
	}
	return ls
}

// taiMinusUTC returns TAI-UTC in seconds at the given UTC epoch.
// Epochs before 1972 use the 1972 offset.
func taiMinusUTC(utc float64) float64 {
	offset := leapSeconds[0].offset
	for _, ls := range leapSeconds {
		if utc < ls.mjd {
			break
		}
		offset = ls.offset
	}
	return offset
}

// TimeSystemConverter is the default TimeConverter.
type TimeSystemConverter struct{}

// NewTimeSystemConverter returns the default time converter.
func NewTimeSystemConverter() *TimeSystemConverter {
	return &TimeSystemConverter{}
}

// ConvertGregorianToAbsolute implements the TimeConverter interface.
// It accepts texts like "01 Jan 2000 11:59:28.000" and ISO 8601 dates.
func (c *TimeSystemConverter) ConvertGregorianToAbsolute(text string) (float64, error) {
	text = strings.TrimSpace(text)
	for _, layout := range gregorianLayouts {
		if dt, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return timeToMJD(dt), nil
		}
	}
	return 0, fmt.Errorf("cannot parse Gregorian date %q", text)
}

// ConvertEpoch implements the TimeConverter interface.
func (c *TimeSystemConverter) ConvertEpoch(value float64, from, to TimeSystem) float64 {
	if from == to {
		return value
	}
	return c.fromTAI(c.toTAI(value, from), to)
}

func (c *TimeSystemConverter) toTAI(value float64, from TimeSystem) float64 {
	switch from {
	case UTC:
		return value + taiMinusUTC(value)/SecondsPerDay
	case TAI:
		return value
	case TT:
		return value - ttMinusTAI/SecondsPerDay
	case TDB:
		// TDB-TT is below 2 ms, so evaluating the correction at the TDB epoch is enough.
		return value - (ttMinusTAI+tdbMinusTT(value))/SecondsPerDay
	case A1:
		return value - a1MinusTAI/SecondsPerDay
	}
	panic(fmt.Errorf("unsupported time system %d", from))
}

func (c *TimeSystemConverter) fromTAI(tai float64, to TimeSystem) float64 {
	switch to {
	case UTC:
		// First guess from the TAI epoch, then refine around a leap second.
		utc := tai - taiMinusUTC(tai)/SecondsPerDay
		return tai - taiMinusUTC(utc)/SecondsPerDay
	case TAI:
		return tai
	case TT:
		return tai + ttMinusTAI/SecondsPerDay
	case TDB:
		tt := tai + ttMinusTAI/SecondsPerDay
		return tt + tdbMinusTT(tt)/SecondsPerDay
	case A1:
		return tai + a1MinusTAI/SecondsPerDay
	}
	panic(fmt.Errorf("unsupported time system %d", to))
}

// tdbMinusTT returns TDB-TT in seconds (Vallado, eq. 3-48).
func tdbMinusTT(tt float64) float64 {
	g := (357.53 + 0.9856003*(tt+ModJulianOffset-J2000)) * math.Pi / 180
	return 0.001658*math.Sin(g) + 0.00001385*math.Sin(2*g)
}

// timeToMJD converts a UTC time to a modified Julian date. The day and the time of day are
// added after the offset is removed so that the fraction keeps sub-microsecond resolution.
func timeToMJD(dt time.Time) float64 {
	y, m, d := dt.Date()
	day := julian.CalendarGregorianToJD(y, int(m), float64(d)) - ModJulianOffset
	seconds := float64(dt.Hour()*3600+dt.Minute()*60+dt.Second()) + float64(dt.Nanosecond())/1e9
	return day + seconds/SecondsPerDay
}

// MJDToTime converts a modified Julian date (in any time system) into a time.Time
// labeled UTC, without changing the time scale.
func MJDToTime(mjd float64) time.Time {
	return julian.JDToTime(mjd + ModJulianOffset)
}
