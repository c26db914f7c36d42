package main

import (
	"math"

	thf "github.com/ChristopherRabotin/GMAT-sub037"
	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/log"
)

// Burn is an ode.Integrable of the velocity increment and of the fuel mass of each tank.
// The state is [Δv, fuel of tank 0, fuel of tank 1, ...].
type Burn struct {
	file      *thf.ThrustHistoryFile
	tanks     *thf.Tanks
	tankNames []string
	dryMass   float64
	epoch     float64 // A.1 epoch of the current chunk start
	chunk     float64 // duration of the current chunk in seconds
	step      float64 // step of the current chunk in seconds
	elapsed   float64 // seconds since the chunk start
	deltaV    float64
	Progress  func(seconds float64)
	logger    kitlog.Logger
}

// NewBurn returns a burn starting at the A.1 epoch.
func NewBurn(file *thf.ThrustHistoryFile, tanks *thf.Tanks, dryMass, epoch float64, logger kitlog.Logger) *Burn {
	return &Burn{file: file, tanks: tanks, tankNames: tanks.Names(), dryMass: dryMass, epoch: epoch, logger: logger}
}

// DeltaV returns the accumulated velocity increment.
func (b *Burn) DeltaV() float64 {
	return b.deltaV
}

// GetState gets the state.
func (b *Burn) GetState() []float64 {
	s := make([]float64, 1+len(b.tankNames))
	s[0] = b.deltaV
	for i, name := range b.tankNames {
		tank, _ := b.tanks.Get(name)
		s[1+i] = tank.FuelMass
	}
	return s
}

// SetState sets the next state at time t.
func (b *Burn) SetState(t float64, s []float64) {
	if b.Progress != nil {
		b.Progress(t - b.elapsed)
	}
	b.elapsed = t
	b.deltaV = s[0]
	for i, name := range b.tankNames {
		tank, _ := b.tanks.Get(name)
		tank.FuelMass = math.Max(s[1+i], 0)
	}
}

// Stop returns whether the current chunk is integrated.
func (b *Burn) Stop(t float64) bool {
	return t >= b.chunk-b.step/2
}

// Func returns the derivative of the state.
func (b *Burn) Func(t float64, f []float64) []float64 {
	fDot := make([]float64, len(f))
	rslt := b.file.Query(b.epoch + t/thf.SecondsPerDay)
	if !rslt.Covered {
		return fDot
	}
	if rslt.ModelsThrust {
		mass := b.dryMass
		for i := range b.tankNames {
			mass += math.Max(f[1+i], 0)
		}
		if mass > 0 {
			fDot[0] = rslt.Magnitude() / mass
		}
	} else {
		fDot[0] = rslt.Magnitude()
	}
	if rslt.Tank != "" {
		for i, name := range b.tankNames {
			if name == rslt.Tank && f[1+i] > 0 {
				fDot[1+i] = rslt.Mdot
			}
		}
	}
	return fDot
}

// PropagateUntil integrates until the A.1 end epoch with steps of at most step seconds.
// Each chunk ends at the next segment boundary so that no step straddles one.
func (b *Burn) PropagateUntil(end, step float64) {
	engine := b.file.Engine()
	for b.epoch < end {
		remaining := (end - b.epoch) * thf.SecondsPerDay
		b.chunk = math.Min(remaining, engine.MaxStep(b.epoch, true))
		if b.chunk < 1e-6 {
			if remaining < 1e-6 {
				break
			}
			// On a boundary up to rounding.
			b.epoch = math.Max(b.epoch+b.chunk/thf.SecondsPerDay, math.Nextafter(b.epoch, end))
			continue
		}
		steps := math.Ceil(b.chunk / step)
		b.step = b.chunk / steps
		b.elapsed = 0
		b.logger.Log("level", "info", "epoch", b.epoch, "chunk", b.chunk, "steps", steps)
		ode.NewRK4(0, b.step, b).Solve() // Blocking.
		b.epoch += b.chunk / thf.SecondsPerDay
	}
}
