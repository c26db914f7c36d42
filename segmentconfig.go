package thf

import "fmt"

// SegmentConfig wraps one segment with its scale factors and mass sources.
// Only the first mass source is used when depleting mass.
type SegmentConfig struct {
	Name                string
	Data                Segment
	ThrustScaleFactor   float64
	MassFlowScaleFactor float64
	CoupleMassToThrust  bool     // if set, the mass flow is also scaled by ThrustScaleFactor
	MassSourceNames     []string // tank identifiers
	active              bool
	hasData             bool
}

// NewSegmentConfig returns a configuration with unit scale factors and no mass source.
func NewSegmentConfig(name string) *SegmentConfig {
	return &SegmentConfig{Name: name, ThrustScaleFactor: 1, MassFlowScaleFactor: 1, active: true}
}

// SetScaleFactors sets the thrust and mass flow scale factors, which must be positive.
func (c *SegmentConfig) SetScaleFactors(thrust, massFlow float64, couple bool) error {
	if thrust <= 0 || massFlow <= 0 {
		return newError(ErrInvalidScaleFactor, c.Name, 0, "thrust=%g, mass flow=%g", thrust, massFlow)
	}
	c.ThrustScaleFactor = thrust
	c.MassFlowScaleFactor = massFlow
	c.CoupleMassToThrust = couple
	return nil
}

// SetMassSources replaces the mass source names.
func (c *SegmentConfig) SetMassSources(names ...string) {
	c.MassSourceNames = append([]string(nil), names...)
}

// EffectiveMassFlowScale returns the factor applied to the mass flow rate.
func (c *SegmentConfig) EffectiveMassFlowScale() float64 {
	if c.CoupleMassToThrust {
		return c.MassFlowScaleFactor * c.ThrustScaleFactor
	}
	return c.MassFlowScaleFactor
}

// DependsOnMassFlow returns whether the segment data carries mass flow rates.
func (c *SegmentConfig) DependsOnMassFlow() bool {
	return c.Data.Model.HasMassRate()
}

// ActiveMassSource returns the first mass source, if any.
func (c *SegmentConfig) ActiveMassSource() (string, bool) {
	if len(c.MassSourceNames) == 0 {
		return "", false
	}
	return c.MassSourceNames[0], true
}

// Active returns whether the segment takes part in queries.
func (c *SegmentConfig) Active() bool {
	return c.active
}

// Loaded returns whether segment data was ingested for this configuration.
func (c *SegmentConfig) Loaded() bool {
	return c.hasData
}

func (c *SegmentConfig) String() string {
	return fmt.Sprintf("%s [%.9f, %.9f] %s/%s tsf=%g msf=%g couple=%v tanks=%v", c.Name, c.Data.StartEpoch, c.Data.EndEpoch, c.Data.AccelInterpolation, c.Data.MassInterpolation, c.ThrustScaleFactor, c.MassFlowScaleFactor, c.CoupleMassToThrust, c.MassSourceNames)
}
