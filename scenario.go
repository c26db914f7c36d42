package thf

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"
)

// SegmentSettings are the scenario settings of one segment.
type SegmentSettings struct {
	Name          string
	ThrustScale   float64
	MassFlowScale float64
	Couple        bool
	Tanks         []string
}

// Scenario describes a thrust history file run: the file, its segment settings, the tanks
// and the sampling span.
type Scenario struct {
	File     string
	Config   Config
	Active   []string
	Segments []SegmentSettings
	Tanks    []*Tank
	// Sampling span as A.1 modified Julian dates; unset means the span of the loaded segments.
	Start, End float64
	HasSpan    bool
	Step       time.Duration
	// MetricsListen is the address of the metrics endpoint, if any.
	MetricsListen string
}

// LoadScenario reads a scenario TOML file such as:
//
//	[thf]
//	file = "burn.thf"
//	config = "thf.toml"
//	active = ["Burn1"]
//	[sampling]
//	start = "01 Jan 2000 12:00:00.000"
//	end = "01 Jan 2000 13:00:00.000"
//	step = "10s"
//	[segments.0]
//	name = "Burn1"
//	thrust_scale = 1.0
//	mass_flow_scale = 1.0
//	couple = false
//	tanks = ["Tank1"]
//	[tanks.0]
//	name = "Tank1"
//	fuel = 100
//	[metrics]
//	listen = ":9100"
//
// Sampling epochs are UTC and converted to A.1 with the time converter.
func LoadScenario(path string, tc TimeConverter) (*Scenario, error) {
	if tc == nil {
		tc = NewTimeSystemConverter()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("sampling.step", "60s")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	s := &Scenario{
		File:          v.GetString("thf.file"),
		Config:        DefaultConfig(),
		Active:        v.GetStringSlice("thf.active"),
		Step:          v.GetDuration("sampling.step"),
		MetricsListen: v.GetString("metrics.listen"),
	}
	if s.File == "" {
		return nil, fmt.Errorf("%s: thf.file is not set", path)
	}
	if s.Step <= 0 {
		return nil, fmt.Errorf("%s: sampling.step must be positive", path)
	}
	if confPath := v.GetString("thf.config"); confPath != "" {
		conf, err := LoadConfig(confPath)
		if err != nil {
			return nil, err
		}
		s.Config = conf
	}

	if v.IsSet("sampling.start") != v.IsSet("sampling.end") {
		return nil, fmt.Errorf("%s: sampling.start and sampling.end must be set together", path)
	}
	if v.IsSet("sampling.start") {
		var err error
		if s.Start, err = readEpoch(v, tc, "sampling.start"); err != nil {
			return nil, err
		}
		if s.End, err = readEpoch(v, tc, "sampling.end"); err != nil {
			return nil, err
		}
		if s.End < s.Start {
			return nil, fmt.Errorf("%s: sampling ends before it starts", path)
		}
		s.HasSpan = true
	}

	for segNo := 0; v.IsSet(fmt.Sprintf("segments.%d", segNo)); segNo++ {
		key := fmt.Sprintf("segments.%d", segNo)
		settings := SegmentSettings{
			Name:          v.GetString(key + ".name"),
			ThrustScale:   1,
			MassFlowScale: 1,
			Couple:        v.GetBool(key + ".couple"),
			Tanks:         v.GetStringSlice(key + ".tanks"),
		}
		if v.IsSet(key + ".thrust_scale") {
			settings.ThrustScale = v.GetFloat64(key + ".thrust_scale")
		}
		if v.IsSet(key + ".mass_flow_scale") {
			settings.MassFlowScale = v.GetFloat64(key + ".mass_flow_scale")
		}
		if settings.Name == "" {
			return nil, fmt.Errorf("%s: %s.name is not set", path, key)
		}
		s.Segments = append(s.Segments, settings)
	}
	for tankNo := 0; v.IsSet(fmt.Sprintf("tanks.%d", tankNo)); tankNo++ {
		key := fmt.Sprintf("tanks.%d", tankNo)
		s.Tanks = append(s.Tanks, &Tank{Name: v.GetString(key + ".name"), FuelMass: v.GetFloat64(key + ".fuel")})
	}
	return s, nil
}

func readEpoch(v *viper.Viper, tc TimeConverter, key string) (float64, error) {
	utc, err := tc.ConvertGregorianToAbsolute(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return tc.ConvertEpoch(utc, UTC, A1), nil
}

// Apply configures the segments, loads the file and checks the mass sources of the scenario.
func (s *Scenario) Apply(f *ThrustHistoryFile) (*Tanks, error) {
	for _, settings := range s.Segments {
		if err := f.SetSegmentConfig(settings.Name, settings.ThrustScale, settings.MassFlowScale, settings.Couple, settings.Tanks); err != nil {
			return nil, err
		}
	}
	if err := f.LoadFile(s.File); err != nil {
		return nil, err
	}
	for _, name := range append(s.segmentNames(), s.Active...) {
		if cfg, exists := f.Store().Get(name); !exists || !cfg.Loaded() {
			return nil, newError(ErrUnknownSegment, name, 0, "not in %s", s.File)
		}
	}
	f.SetActiveSegments(s.Active...)
	tanks := NewTanks(s.Tanks...)
	if err := f.ResolveMassSources(tanks); err != nil {
		return nil, err
	}
	if !s.HasSpan {
		start, end, ok := f.Store().Span()
		if !ok {
			return nil, fmt.Errorf("%s: no segment loaded", s.File)
		}
		s.Start, s.End, s.HasSpan = start, end, true
	}
	return tanks, nil
}

func (s *Scenario) segmentNames() []string {
	names := make([]string, len(s.Segments))
	for i, settings := range s.Segments {
		names[i] = settings.Name
	}
	return names
}

// Samples returns the number of sampling epochs, both ends included.
func (s *Scenario) Samples() int {
	// Epochs are rounded to about a microsecond.
	return int(math.Floor((s.End-s.Start)*SecondsPerDay/s.Step.Seconds()+1e-6)) + 1
}

// Epoch returns the A.1 epoch of the i-th sample.
func (s *Scenario) Epoch(i int) float64 {
	return s.Start + float64(i)*s.Step.Seconds()/SecondsPerDay
}
