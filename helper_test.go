package thf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b [3]float64) bool {
	return floats.EqualApprox(a[:], b[:], 1e-9)
}

// testSegment returns a validated segment starting at the A.1 epoch. Point times are in seconds.
func testSegment(name string, start float64, accel, mass InterpolationMethod, points ...ProfilePoint) Segment {
	seg := NewSegment(name)
	seg.Model = ThrustAndMassRate
	seg.AccelMethodText = accel.String()
	seg.MassMethodText = mass.String()
	seg.StartEpoch = start
	seg.Profile = append([]ProfilePoint(nil), points...)
	if err := seg.Validate(nil); err != nil {
		panic(err)
	}
	return seg
}

func newTestEngine(segs ...Segment) (*Engine, *Store) {
	store := NewStore(nil)
	for _, seg := range segs {
		store.Ingest(seg)
	}
	return NewEngine(store, nil, nil), store
}

func writeTestFile(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("could not write %s: %s", path, err)
	}
	return path
}

// countingObserver counts the events it receives.
type countingObserver struct {
	sync.Mutex
	loads, queries, uncovered, fallbacks, missing int
}

func (o *countingObserver) FileLoaded(name, path string, segments int) {
	o.Lock()
	defer o.Unlock()
	o.loads++
}

func (o *countingObserver) QueryServed(segment string, method InterpolationMethod) {
	o.Lock()
	defer o.Unlock()
	if segment == "" {
		o.uncovered++
	}
	o.queries++
}

func (o *countingObserver) SplineFallback(segment string, points int) {
	o.Lock()
	defer o.Unlock()
	o.fallbacks++
}

func (o *countingObserver) MassSourceMissing(segment string) {
	o.Lock()
	defer o.Unlock()
	o.missing++
}

const sampleTHF = `Sample thrust history file
BeginThrust{Burn1}
Start_Epoch = 01 Jan 2000 11:59:28.000
Thrust_Vector_Coordinate_System = EarthMJ2000Eq
Thrust_Vector_Interpolation_Method = Linear
Mass_Flow_Rate_Interpolation_Method = ThrustVectorMethod
ModelThrustAndMassRate
0.0   1.0 0.0 0.0 -0.01
60.0  1.0 0.0 0.0 -0.01

120.0 0.5 0.5 0.0 -0.005
EndThrust{Burn1}

BeginThrust {Burn2}
Start_Epoch = 01 Jan 2000 13:00:00.000
Thrust_Vector_Coordinate_System = EarthMJ2000Ec
Thrust_Vector_Interpolation_Method = CubicSpline
Mass_Flow_Rate_Interpolation_Method = None
ModelAccelOnly
0   0 1e-6 0
30  0 2e-6 0
60  0 3e-6 0
90  0 4e-6 0
120 0 5e-6 0
EndThrust {Burn2}
`

// scenarioTHF is the single segment `Test` of 10 seconds with a constant thrust.
const scenarioTHF = `BeginThrust{Test}
Start_Epoch = 01 Jan 2000 11:59:28.000
Thrust_Vector_Interpolation_Method = Linear
Mass_Flow_Rate_Interpolation_Method = Linear
ModelThrustAndMassRate
0  1 0 0 0.1
10 1 0 0 0.1
EndThrust{Test}
`
