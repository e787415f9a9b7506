// Package panel models the electrical output of a dual-axis solar panel and
// the mechanical energy its linear actuators spend rotating it.
package panel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPanel is returned when a Spec describes an impossible panel.
var ErrInvalidPanel = errors.New("invalid panel specification")

// Gravity is standard gravitational acceleration in m/s^2.
const Gravity = 9.80665

// Axis names one of the panel's two rotation axes.
type Axis string

const (
	AxisNS Axis = "ns" // north-south tilt
	AxisEW Axis = "ew" // east-west tilt
)

// Axes lists the axes in a fixed order.
var Axes = [...]Axis{AxisNS, AxisEW}

// Actuator describes a linear actuator pivoting the panel about one axis.
// The actuator, the mount arm and the offset arm form a triangle whose
// third side is the actuator length.
type Actuator struct {
	Mount  float64 `json:"mount" yaml:"mount"`   // mount arm length, m
	Offset float64 `json:"offset" yaml:"offset"` // panel center to actuator pivot, m
}

// Range is an inclusive angle range in degrees.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Spec is the physical description of a panel and its mount.
type Spec struct {
	XDim               float64 `json:"x_dim" yaml:"x-dim"`                             // m
	YDim               float64 `json:"y_dim" yaml:"y-dim"`                             // m
	Efficiency         float64 `json:"efficiency" yaml:"efficiency"`                   // (0, 1]
	AssemblyMass       float64 `json:"assembly_mass" yaml:"assembly-mass"`             // kg
	COMOffset          float64 `json:"com_offset" yaml:"com-offset"`                   // m, center of mass to pivot
	BearingFriction    float64 `json:"bearing_friction" yaml:"bearing-friction"`       // fraction of load torque
	OffsetAngle        float64 `json:"offset_angle" yaml:"offset-angle"`               // rad, actuator angle at a flat panel
	ActuatorForce      float64 `json:"actuator_force" yaml:"actuator-force"`           // N
	ActuatorEfficiency float64 `json:"actuator_efficiency" yaml:"actuator-efficiency"` // (0, 1]

	Actuators map[Axis]Actuator `json:"actuators" yaml:"actuators"`
	Bounds    map[Axis]Range    `json:"bounds" yaml:"bounds"`
}

// DefaultSpec returns the one square meter reference panel.
func DefaultSpec() Spec {
	return Spec{
		XDim:               1,
		YDim:               1,
		Efficiency:         0.9,
		AssemblyMass:       15,
		COMOffset:          0.1,
		BearingFriction:    0.1,
		OffsetAngle:        0.25,
		ActuatorForce:      1500,
		ActuatorEfficiency: 1,
		Actuators: map[Axis]Actuator{
			AxisNS: {Mount: 0.5, Offset: 0.1},
			AxisEW: {Mount: 0.5, Offset: 0.1},
		},
		Bounds: map[Axis]Range{
			AxisNS: {Min: -90, Max: 90},
			AxisEW: {Min: -90, Max: 90},
		},
	}
}

// Validate checks the spec for values that would make the model meaningless
// or divide by zero.
func (s Spec) Validate() error {
	switch {
	case !(s.XDim > 0) || !(s.YDim > 0):
		return fmt.Errorf("%w: panel dimensions must be positive, got %vx%v", ErrInvalidPanel, s.XDim, s.YDim)
	case !(s.Efficiency > 0) || s.Efficiency > 1:
		return fmt.Errorf("%w: efficiency %v outside (0, 1]", ErrInvalidPanel, s.Efficiency)
	case !(s.ActuatorEfficiency > 0) || s.ActuatorEfficiency > 1:
		return fmt.Errorf("%w: actuator efficiency %v outside (0, 1]", ErrInvalidPanel, s.ActuatorEfficiency)
	case s.AssemblyMass < 0, s.COMOffset < 0, s.BearingFriction < 0, s.ActuatorForce < 0:
		return fmt.Errorf("%w: mass, center of mass offset, friction and force must not be negative", ErrInvalidPanel)
	case math.IsNaN(s.OffsetAngle) || math.IsInf(s.OffsetAngle, 0):
		return fmt.Errorf("%w: offset angle must be finite", ErrInvalidPanel)
	}

	for _, axis := range Axes {
		act, ok := s.Actuators[axis]
		if !ok {
			return fmt.Errorf("%w: no actuator for axis %s", ErrInvalidPanel, axis)
		}
		if !(act.Mount > 0) || !(act.Offset > 0) {
			return fmt.Errorf("%w: axis %s actuator mount and offset must be positive", ErrInvalidPanel, axis)
		}

		bounds, ok := s.Bounds[axis]
		if !ok {
			return fmt.Errorf("%w: no bounds for axis %s", ErrInvalidPanel, axis)
		}
		if bounds.Min > bounds.Max || bounds.Min < -180 || bounds.Max > 180 {
			return fmt.Errorf("%w: axis %s bounds [%v, %v] invalid", ErrInvalidPanel, axis, bounds.Min, bounds.Max)
		}

		// The actuator length sqrt(a^2 + b^2 - 2ab cos phi) vanishes only when
		// a == b and phi is a whole turn.
		if act.Mount == act.Offset && s.spansWholeTurn(bounds) {
			return fmt.Errorf("%w: axis %s actuator collapses to zero length within [%v, %v] degrees",
				ErrInvalidPanel, axis, bounds.Min, bounds.Max)
		}
	}

	return nil
}

// spansWholeTurn reports whether the actuator angle reaches a multiple of
// 2*pi somewhere inside bounds.
func (s Spec) spansWholeTurn(bounds Range) bool {
	lo := degToRad(bounds.Min) + s.OffsetAngle
	hi := degToRad(bounds.Max) + s.OffsetAngle
	return math.Ceil(lo/(2*math.Pi)) <= math.Floor(hi/(2*math.Pi))
}

// Model computes power and motion energy for a validated Spec. It is
// immutable and safe for concurrent use.
type Model struct {
	spec Spec
}

// New validates spec and returns a Model.
func New(spec Spec) (*Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	// Copy the maps so later changes by the caller cannot reach the model
	s := spec
	s.Actuators = make(map[Axis]Actuator, len(spec.Actuators))
	for k, v := range spec.Actuators {
		s.Actuators[k] = v
	}
	s.Bounds = make(map[Axis]Range, len(spec.Bounds))
	for k, v := range spec.Bounds {
		s.Bounds[k] = v
	}

	return &Model{spec: s}, nil
}

// Spec returns the model's specification.
func (m *Model) Spec() Spec {
	return m.spec
}

// Area returns the panel area in m^2.
func (m *Model) Area() float64 {
	return m.spec.XDim * m.spec.YDim
}

// ElectricalPower returns the electrical output in W for an incident flux in
// W/m^2.
func (m *Model) ElectricalPower(flux float64) float64 {
	return m.Area() * m.spec.Efficiency * flux
}

// ActuatorLength returns the actuator length in m with the panel at angleRad
// about axis.
func (m *Model) ActuatorLength(axis Axis, angleRad float64) float64 {
	act := m.spec.Actuators[axis]
	phi := angleRad + m.spec.OffsetAngle
	a, b := act.Mount, act.Offset
	return math.Sqrt(a*a + b*b - 2*a*b*math.Cos(phi))
}

// RotationEnergy returns the energy in J spent rotating the panel from
// angleRad by deltaRad about axis. The actuator extension follows from the
// law of cosines; the actuator then works against its rated force and the
// gravitational torque of the off-center mass, inflated by bearing
// friction. Energy is never recovered, so the result is the same for
// forward and backward moves of equal size.
func (m *Model) RotationEnergy(axis Axis, angleRad, deltaRad, actuatorEfficiency float64) (float64, error) {
	act, ok := m.spec.Actuators[axis]
	if !ok {
		return 0, fmt.Errorf("unknown panel axis %q", axis)
	}
	if !(actuatorEfficiency > 0) || actuatorEfficiency > 1 {
		return 0, fmt.Errorf("actuator efficiency %v outside (0, 1]", actuatorEfficiency)
	}
	if deltaRad == 0 {
		return 0, nil
	}

	a, b := act.Mount, act.Offset
	phi := angleRad + m.spec.OffsetAngle
	length := m.ActuatorLength(axis, angleRad)
	if length == 0 {
		return 0, fmt.Errorf("%w: axis %s actuator has zero length at %v rad", ErrInvalidPanel, axis, angleRad)
	}

	// dx/dtheta of the actuator length
	dx := a * b * math.Sin(phi) / length * deltaRad

	torque := m.spec.AssemblyMass * Gravity * m.spec.COMOffset * math.Abs(math.Sin(angleRad))
	load := torque * (1 + m.spec.BearingFriction) * math.Abs(deltaRad)

	return (math.Abs(m.spec.ActuatorForce*dx) + load) / actuatorEfficiency, nil
}

// MoveEnergy is RotationEnergy for a move given in degrees, using the
// spec's actuator efficiency.
func (m *Model) MoveEnergy(axis Axis, angleDeg, deltaDeg float64) (float64, error) {
	return m.RotationEnergy(axis, degToRad(angleDeg), degToRad(deltaDeg), m.spec.ActuatorEfficiency)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
