package thf

import (
	"fmt"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"gonum.org/v1/gonum/mat"
)

// FrameHandle is an opaque identifier of a resolved coordinate frame.
// The zero value is an unresolved frame.
type FrameHandle uint32

// FrameProvider resolves frame names and rotates direction vectors into the base frame.
type FrameProvider interface {
	// ResolveFrame returns the handle of the frame with the given name.
	ResolveFrame(name string) (FrameHandle, error)
	// RotateToBase rotates (without translating) a vector expressed in the frame h
	// at the A.1 epoch into the base frame.
	RotateToBase(h FrameHandle, epoch float64, v [3]float64) [3]float64
}

// Built in frame names.
const (
	EarthMJ2000Eq = "EarthMJ2000Eq"
	EarthMJ2000Ec = "EarthMJ2000Ec"
	EarthFixed    = "EarthFixed"
)

// rotation returns the base frame vector of v at the A.1 epoch.
type rotation func(epoch float64, v [3]float64) [3]float64

// Frames is the default FrameProvider. EarthMJ2000Eq is its base frame.
// EarthFixed only accounts for the Earth rotation (mean sidereal time), not for
// precession, nutation or polar motion.
type Frames struct {
	mu     sync.RWMutex
	names  []string
	rots   []rotation
	byName map[string]FrameHandle
	tc     TimeConverter
	logger kitlog.Logger
}

// NewFrames returns the default frame provider with the built in frames registered.
func NewFrames(tc TimeConverter, logger kitlog.Logger) *Frames {
	if tc == nil {
		tc = NewTimeSystemConverter()
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	f := &Frames{byName: make(map[string]FrameHandle), tc: tc, logger: kitlog.With(logger, "subsys", "frames")}
	f.register(EarthMJ2000Eq, nil)
	ε := nutation.MeanObliquity(J2000).Rad()
	f.register(EarthMJ2000Ec, func(epoch float64, v [3]float64) [3]float64 {
		return EclipticToEquatorial(v, ε)
	})
	f.register(EarthFixed, func(epoch float64, v [3]float64) [3]float64 {
		// UT1 is approximated by UTC.
		jd := f.tc.ConvertEpoch(epoch, A1, UTC) + ModJulianOffset
		return FixedToInertial(v, sidereal.Mean(jd).Rad())
	})
	return f
}

func (f *Frames) register(name string, rot rotation) FrameHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, exists := f.byName[name]; exists {
		f.rots[h-1] = rot
		return h
	}
	f.names = append(f.names, name)
	f.rots = append(f.rots, rot)
	h := FrameHandle(len(f.names))
	f.byName[name] = h
	return h
}

// RegisterFixed adds (or replaces) a frame whose orientation relative to the base frame
// is constant. The matrix maps frame coordinates into base frame coordinates.
func (f *Frames) RegisterFixed(name string, toBase mat.Matrix) (FrameHandle, error) {
	if r, c := toBase.Dims(); r != 3 || c != 3 {
		return 0, fmt.Errorf("frame %s: rotation must be 3x3, got %dx%d", name, r, c)
	}
	m := mat.DenseCopyOf(toBase)
	h := f.register(name, func(epoch float64, v [3]float64) [3]float64 {
		return MxV33(m, v)
	})
	f.logger.Log("level", "info", "frame", name, "handle", h, "message", "registered")
	return h, nil
}

// Base returns the handle of the base frame.
func (f *Frames) Base() FrameHandle {
	return 1
}

// Name returns the name of a resolved frame.
func (f *Frames) Name(h FrameHandle) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if h == 0 || int(h) > len(f.names) {
		return ""
	}
	return f.names[h-1]
}

// ResolveFrame implements the FrameProvider interface.
func (f *Frames) ResolveFrame(name string) (FrameHandle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if h, ok := f.byName[name]; ok {
		return h, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFrame, name)
}

// RotateToBase implements the FrameProvider interface. Unknown handles leave the vector unchanged.
func (f *Frames) RotateToBase(h FrameHandle, epoch float64, v [3]float64) [3]float64 {
	f.mu.RLock()
	var rot rotation
	if h > 0 && int(h) <= len(f.rots) {
		rot = f.rots[h-1]
	}
	f.mu.RUnlock()
	if rot == nil {
		return v
	}
	return rot(epoch, v)
}
