package thf

import (
	"fmt"
	"sort"
	"sync"
)

// MassSourceLookup finds mass sources (tanks) by name.
type MassSourceLookup interface {
	// HasMassSource returns whether a mass source of that name exists.
	HasMassSource(name string) bool
}

// Tank is a fuel tank.
type Tank struct {
	Name     string
	FuelMass float64 // kg
}

func (t *Tank) String() string {
	return fmt.Sprintf("%s (%.3f kg)", t.Name, t.FuelMass)
}

// Tanks is a MassSourceLookup over a set of tanks.
type Tanks struct {
	sync.Mutex
	byName map[string]*Tank
}

// NewTanks returns a registry of the provided tanks.
func NewTanks(tanks ...*Tank) *Tanks {
	reg := &Tanks{byName: make(map[string]*Tank, len(tanks))}
	for _, tank := range tanks {
		reg.byName[tank.Name] = tank
	}
	return reg
}

// HasMassSource implements the MassSourceLookup interface.
func (r *Tanks) HasMassSource(name string) bool {
	_, exists := r.Get(name)
	return exists
}

// Get returns the named tank.
func (r *Tanks) Get(name string) (*Tank, bool) {
	r.Lock()
	defer r.Unlock()
	tank, exists := r.byName[name]
	return tank, exists
}

// Names returns the sorted tank names.
func (r *Tanks) Names() []string {
	r.Lock()
	defer r.Unlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flow applies a mass flow rate (kg/s, negative when depleting) for dt seconds to the
// named tank and returns the mass change. The fuel mass never drops below zero.
func (r *Tanks) Flow(name string, mdot, dt float64) (float64, error) {
	r.Lock()
	defer r.Unlock()
	tank, exists := r.byName[name]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMassSource, name)
	}
	delta := mdot * dt
	if tank.FuelMass+delta < 0 {
		delta = -tank.FuelMass
	}
	tank.FuelMass += delta
	return delta, nil
}
