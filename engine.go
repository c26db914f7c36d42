package thf

import (
	"math"
	"sync"
	"sync/atomic"

	kitlog "github.com/go-kit/log"
)

// Result is the answer to a thrust query.
type Result struct {
	Vector       [3]float64 // thrust or acceleration, in the working frame, scaled
	Mdot         float64    // scaled mass flow rate
	Segment      string     // empty if no segment covers the epoch
	Tank         string     // mass source depleted by Mdot, if any
	Covered      bool
	ModelsThrust bool
}

// Engine serves thrust queries from a Store. Queries may run concurrently as long as
// the store is not being loaded at the same time.
type Engine struct {
	store        *Store
	frames       FrameProvider
	workingFrame FrameHandle
	observer     Observer
	logger       kitlog.Logger

	splineWarned sync.Map // segment name -> struct{}
	noMassSource atomic.Bool
	activeTank   atomic.Value // string
}

// NewEngine returns a query engine over the store. The frame provider may be nil,
// in which case vectors are returned in their segment frame.
func NewEngine(store *Store, frames FrameProvider, logger kitlog.Logger) *Engine {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Engine{store: store, frames: frames, observer: nopObserver{}, logger: kitlog.With(logger, "subsys", "engine")}
}

// SetWorkingFrame sets the frame of the caller. Vectors of segments expressed in another
// frame are rotated into the base frame of the provider, so this should be that base frame.
func (e *Engine) SetWorkingFrame(h FrameHandle) {
	e.workingFrame = h
}

// SetObserver sets the observer notified of queries. Nil restores the no-op observer.
func (e *Engine) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	e.observer = o
}

// selectSegment returns the first active segment containing the epoch.
func (e *Engine) selectSegment(epoch float64) *SegmentConfig {
	for _, cfg := range e.store.Configs() {
		if cfg.Active() && cfg.Loaded() && cfg.Data.Contains(epoch) {
			return cfg
		}
	}
	return nil
}

// Query returns the scaled thrust (or acceleration) and mass flow rate at the A.1 epoch.
// An epoch outside of every segment returns a zero Result.
func (e *Engine) Query(epoch float64) Result {
	cfg := e.selectSegment(epoch)
	if cfg == nil {
		e.observer.QueryServed("", NoInterpolation)
		return Result{}
	}
	seg := &cfg.Data
	rslt := Result{Segment: cfg.Name, Covered: true, ModelsThrust: seg.ModelsThrust}

	var sample ProfilePoint
	if epoch == seg.EndEpoch {
		sample = seg.Profile[len(seg.Profile)-1]
	} else {
		offset := epoch - seg.StartEpoch
		i := bracket(seg.Profile, offset)
		if i < 0 {
			// Before the first sample.
			e.observer.QueryServed(cfg.Name, seg.AccelInterpolation)
			return rslt
		}
		var err error
		sample, err = interpolate(seg.AccelInterpolation, seg.Profile, i, offset)
		e.warnSpline(seg, err)
		if seg.MassInterpolation != seg.AccelInterpolation {
			massSample, err := interpolate(seg.MassInterpolation, seg.Profile, i, offset)
			e.warnSpline(seg, err)
			sample.Mdot = massSample.Mdot
		}
	}

	for j := 0; j < 3; j++ {
		rslt.Vector[j] = sample.Vector[j] * cfg.ThrustScaleFactor
	}
	rslt.Mdot = sample.Mdot * cfg.EffectiveMassFlowScale()

	if rslt.Mdot != 0 {
		if tank, ok := cfg.ActiveMassSource(); ok {
			e.activeTank.Store(tank)
			rslt.Tank = tank
		} else {
			if e.noMassSource.CompareAndSwap(false, true) {
				e.logger.Log("level", "warning", "segment", cfg.Name, "err", ErrMissingMassSource, "message", "mass depletion disabled")
				e.observer.MassSourceMissing(cfg.Name)
			}
			rslt.Mdot = 0
		}
	}

	if e.frames != nil && seg.Frame != 0 && seg.Frame != e.workingFrame {
		rslt.Vector = e.frames.RotateToBase(seg.Frame, epoch, rslt.Vector)
	}
	e.observer.QueryServed(cfg.Name, seg.AccelInterpolation)
	return rslt
}

// warnSpline logs a spline fallback once per segment.
func (e *Engine) warnSpline(seg *Segment, err error) {
	if err == nil {
		return
	}
	if _, warned := e.splineWarned.LoadOrStore(seg.Name, struct{}{}); warned {
		return
	}
	e.logger.Log("level", "warning", "segment", seg.Name, "points", len(seg.Profile), "message", "falling back to linear interpolation", "err", err)
	e.observer.SplineFallback(seg.Name, len(seg.Profile))
}

// ActiveTankName returns the mass source depleted by the last query with a mass flow.
func (e *Engine) ActiveTankName() (string, bool) {
	tank, ok := e.activeTank.Load().(string)
	return tank, ok && tank != ""
}

// DepletesMass returns whether any loaded segment carries mass flow, unless mass depletion
// was disabled because a mass flow had no mass source.
func (e *Engine) DepletesMass() bool {
	if e.noMassSource.Load() {
		return false
	}
	for _, cfg := range e.store.Configs() {
		if cfg.Loaded() && cfg.DependsOnMassFlow() {
			return true
		}
	}
	return false
}

// MaxStep returns the largest step in seconds which does not cross the start or the end of
// an active segment, in the direction of travel. Without such a boundary, it returns
// math.MaxFloat64 (forward) or -math.MaxFloat64 (backward).
func (e *Engine) MaxStep(epoch float64, forward bool) float64 {
	dt := math.MaxFloat64
	if !forward {
		dt = -math.MaxFloat64
	}
	for _, cfg := range e.store.Configs() {
		if !cfg.Active() || !cfg.Loaded() {
			continue
		}
		for _, boundary := range [2]float64{cfg.Data.StartEpoch, cfg.Data.EndEpoch} {
			step := (boundary - epoch) * SecondsPerDay
			if forward && step > 0 {
				dt = math.Min(dt, step)
			} else if !forward && step < 0 {
				dt = math.Max(dt, step)
			}
		}
	}
	return dt
}
