package thf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kitlog "github.com/go-kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestLoadFileScenario(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "scenario.thf", scenarioTHF)
	thf := NewThrustHistoryFile("scenario", DefaultConfig(), nil, nil, nil)
	obs := new(countingObserver)
	thf.SetObserver(obs)
	if err := thf.SetSegmentConfig("Test", 1, 1, false, []string{"Tank1"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := thf.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if obs.loads != 1 {
		t.Fatal("observer not notified of the load")
	}
	cfg, ok := thf.Store().Get("Test")
	if !ok || !cfg.Loaded() {
		t.Fatal("segment Test not loaded")
	}
	epoch := cfg.Data.StartEpoch + 5/SecondsPerDay
	rslt := thf.Query(epoch)
	if !vectorsEqual(rslt.Vector, [3]float64{1, 0, 0}) || !scalar.EqualWithinAbs(rslt.Mdot, 0.1, 1e-12) {
		t.Fatalf("incorrect result %+v", rslt)
	}
	if tank, ok := thf.ActiveTankName(); !ok || tank != "Tank1" {
		t.Fatalf("incorrect active tank %q", tank)
	}

	if err := thf.SetSegmentConfig("Test", 2.0, 0.5, true, []string{"Tank1"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	rslt = thf.Query(epoch)
	if !vectorsEqual(rslt.Vector, [3]float64{2, 0, 0}) || !scalar.EqualWithinAbs(rslt.Mdot, 0.1, 1e-12) {
		t.Fatalf("incorrect scaled result %+v", rslt)
	}
	if obs.queries != 2 {
		t.Fatalf("expected 2 queries, got %d", obs.queries)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	dir := t.TempDir()
	thf := NewThrustHistoryFile("malformed", DefaultConfig(), nil, nil, nil)
	if err := thf.LoadFile(writeTestFile(t, dir, "good.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// The first segment is valid and replaces Burn1, the second one is not.
	contents := strings.Replace(scenarioTHF, "{Test}", "{Burn1}", -1) + "BeginThrust {A}\nEndThrust {A}\n"
	err := thf.LoadFile(writeTestFile(t, dir, "bad.thf", contents))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
	if thf.Store().Len() != 2 {
		t.Fatalf("store should be untouched, got %d segments", thf.Store().Len())
	}
	if cfg, _ := thf.Store().Get("Burn1"); len(cfg.Data.Profile) != 3 {
		t.Fatal("Burn1 should not have been replaced")
	}
}

func TestLoadFileReload(t *testing.T) {
	dir := t.TempDir()
	thf := NewThrustHistoryFile("reload", DefaultConfig(), nil, nil, nil)
	if err := thf.LoadFile(writeTestFile(t, dir, "first.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := thf.SetSegmentConfig("Burn1", 3, 1, false, []string{"Main"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	contents := strings.Replace(scenarioTHF, "{Test}", "{Burn1}", -1)
	if err := thf.LoadFile(writeTestFile(t, dir, "second.thf", contents)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg, _ := thf.Store().Get("Burn1")
	if thf.Store().Len() != 2 || len(cfg.Data.Profile) != 2 || cfg.ThrustScaleFactor != 3 {
		t.Fatalf("reload should replace the data and keep the configuration: %s", cfg)
	}
}

func TestLoadFileSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "elsewhere.thf", scenarioTHF)
	conf := DefaultConfig()
	conf.SearchPath = dir
	thf := NewThrustHistoryFile("search", conf, nil, nil, nil)
	if err := thf.LoadFile("elsewhere.thf"); err != nil {
		t.Fatalf("file not found in the search path: %s", err)
	}
	if err := thf.LoadFile(filepath.Join(os.TempDir(), "nowhere", "elsewhere.thf")); err != nil {
		t.Fatalf("absolute paths should fall back to their base name: %s", err)
	}
	if err := thf.LoadFile("missing.thf"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := NewThrustHistoryFile("nosearch", DefaultConfig(), nil, nil, nil).LoadFile("elsewhere.thf"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoadFileFrames(t *testing.T) {
	dir := t.TempDir()
	thf := NewThrustHistoryFile("frames", DefaultConfig(), nil, nil, nil)
	contents := strings.Replace(scenarioTHF, "ModelThrustAndMassRate", "Thrust_Vector_Coordinate_System = MarsFixed\nModelThrustAndMassRate", 1)
	if err := thf.LoadFile(writeTestFile(t, dir, "mars.thf", contents)); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame, got %v", err)
	}
	if thf.Store().Len() != 0 {
		t.Fatal("store should be untouched")
	}

	frames := NewFrames(nil, nil)
	thf = NewThrustHistoryFile("frames", DefaultConfig(), nil, frames, nil)
	if err := thf.LoadFile(writeTestFile(t, dir, "sample.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg, _ := thf.Store().Get("Burn2")
	if frames.Name(cfg.Data.Frame) != EarthMJ2000Ec {
		t.Fatalf("frame not resolved: %d", cfg.Data.Frame)
	}
	// Rotated about the x axis into the equatorial frame: y and z both increase.
	rslt := thf.Query(cfg.Data.StartEpoch + 30/SecondsPerDay)
	if rslt.Vector[0] != 0 || rslt.Vector[1] <= 0 || rslt.Vector[2] <= 0 || rslt.ModelsThrust {
		t.Fatalf("incorrect rotated acceleration %+v", rslt)
	}
	if !scalar.EqualWithinRel(rslt.Magnitude(), 2e-6, 1e-6) {
		t.Fatalf("rotation should not change the norm: %g", rslt.Magnitude())
	}

	if _, err := frames.RegisterFixed("Identity", R3(0)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	conf := DefaultConfig()
	conf.WorkingFrame = "Unknown"
	if err := NewThrustHistoryFile("working", conf, nil, frames, nil).LoadFile(filepath.Join(dir, "sample.thf")); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame for the working frame, got %v", err)
	}
}

func TestSetFrames(t *testing.T) {
	dir := t.TempDir()
	thf := NewThrustHistoryFile("frames", DefaultConfig(), nil, nil, nil)
	if err := thf.LoadFile(writeTestFile(t, dir, "sample.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	frames := NewFrames(nil, nil)
	if _, err := frames.RegisterFixed("Probe", R3(0)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := thf.SetFrames(frames); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg, _ := thf.Store().Get("Burn1")
	if frames.Name(cfg.Data.Frame) != EarthMJ2000Eq {
		t.Fatal("frames not resolved again")
	}
}

func TestResolveMassSources(t *testing.T) {
	thf := NewThrustHistoryFile("tanks", DefaultConfig(), nil, nil, kitlog.NewNopLogger())
	if err := thf.LoadFile(writeTestFile(t, t.TempDir(), "sample.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	tanks := NewTanks(&Tank{Name: "Main", FuelMass: 100}, &Tank{Name: "Backup", FuelMass: 10})
	thf.SetSegmentConfig("Burn1", 1, 1, false, []string{"Main", "Backup"})
	if err := thf.ResolveMassSources(tanks); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	thf.SetSegmentConfig("NotYetLoaded", 1, 1, false, []string{"Aux"})
	if err := thf.ResolveMassSources(tanks); !errors.Is(err, ErrUnknownMassSource) {
		t.Fatalf("expected ErrUnknownMassSource, got %v", err)
	}
}

func TestSetActiveSegments(t *testing.T) {
	thf := NewThrustHistoryFile("active", DefaultConfig(), nil, nil, nil)
	if err := thf.LoadFile(writeTestFile(t, t.TempDir(), "sample.thf", sampleTHF)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	cfg, _ := thf.Store().Get("Burn1")
	epoch := cfg.Data.StartEpoch + 30/SecondsPerDay
	thf.SetActiveSegments("Burn2")
	if thf.Query(epoch).Covered {
		t.Fatal("Burn1 is not active")
	}
	thf.SetActiveSegments()
	if !thf.Query(epoch).Covered {
		t.Fatal("Burn1 should be active")
	}
}
