package panel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Spec)
	}{
		{"zero width", func(s *Spec) { s.XDim = 0 }},
		{"negative height", func(s *Spec) { s.YDim = -1 }},
		{"efficiency above one", func(s *Spec) { s.Efficiency = 1.2 }},
		{"zero efficiency", func(s *Spec) { s.Efficiency = 0 }},
		{"NaN efficiency", func(s *Spec) { s.Efficiency = math.NaN() }},
		{"zero actuator efficiency", func(s *Spec) { s.ActuatorEfficiency = 0 }},
		{"negative mass", func(s *Spec) { s.AssemblyMass = -1 }},
		{"negative friction", func(s *Spec) { s.BearingFriction = -0.1 }},
		{"zero mount", func(s *Spec) { s.Actuators[AxisEW] = Actuator{Mount: 0, Offset: 0.1} }},
		{"zero offset", func(s *Spec) { s.Actuators[AxisNS] = Actuator{Mount: 0.5, Offset: 0} }},
		{"missing actuator", func(s *Spec) { delete(s.Actuators, AxisNS) }},
		{"missing bounds", func(s *Spec) { delete(s.Bounds, AxisEW) }},
		{"inverted bounds", func(s *Spec) { s.Bounds[AxisEW] = Range{Min: 10, Max: -10} }},
		{"collapsing actuator", func(s *Spec) {
			s.Actuators[AxisEW] = Actuator{Mount: 0.3, Offset: 0.3}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec()
			tt.modify(&spec)
			_, err := New(spec)
			require.ErrorIs(t, err, ErrInvalidPanel)
		})
	}
}

func TestEqualArmsAllowedWhenActuatorCannotCollapse(t *testing.T) {
	spec := DefaultSpec()
	spec.Actuators[AxisEW] = Actuator{Mount: 0.3, Offset: 0.3}
	// Actuator angle stays within [0.25 + 5deg, 0.25 + 90deg]
	spec.Bounds[AxisEW] = Range{Min: 5, Max: 90}

	m, err := New(spec)
	require.NoError(t, err)
	assert.Greater(t, m.ActuatorLength(AxisEW, degToRad(5)), 0.0)
}

func TestNewCopiesSpec(t *testing.T) {
	spec := DefaultSpec()
	m, err := New(spec)
	require.NoError(t, err)

	spec.Actuators[AxisNS] = Actuator{Mount: 9, Offset: 9}
	assert.Equal(t, 0.5, m.Spec().Actuators[AxisNS].Mount)
}

func TestElectricalPower(t *testing.T) {
	spec := DefaultSpec()
	spec.XDim, spec.YDim, spec.Efficiency = 2, 1.5, 0.2
	m, err := New(spec)
	require.NoError(t, err)

	assert.InDelta(t, 300.0, m.ElectricalPower(500), 1e-9)
	assert.Zero(t, m.ElectricalPower(0))
	assert.InDelta(t, 3.0, m.Area(), 1e-12)
}

func TestRotationEnergy(t *testing.T) {
	m, err := New(DefaultSpec())
	require.NoError(t, err)

	step := degToRad(20)
	tests := []struct {
		name  string
		axis  Axis
		angle float64
	}{
		{"flat ew", AxisEW, 0},
		{"tilted ew", AxisEW, degToRad(40)},
		{"tilted back ns", AxisNS, degToRad(-60)},
		{"near bound ns", AxisNS, degToRad(85)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, err := m.RotationEnergy(tt.axis, tt.angle, step, 1)
			require.NoError(t, err)
			back, err := m.RotationEnergy(tt.axis, tt.angle, -step, 1)
			require.NoError(t, err)

			assert.Greater(t, forward, 0.0)
			assert.InDelta(t, forward, back, 1e-12)

			// A less efficient actuator spends more
			lossy, err := m.RotationEnergy(tt.axis, tt.angle, step, 0.5)
			require.NoError(t, err)
			assert.InDelta(t, 2*forward, lossy, 1e-9)
		})
	}
}

func TestRotationEnergyKnownValue(t *testing.T) {
	spec := DefaultSpec()
	spec.AssemblyMass = 0
	m, err := New(spec)
	require.NoError(t, err)

	// Flat panel: phi = 0.25, a = 0.5, b = 0.1
	phi := 0.25
	length := math.Sqrt(0.25 + 0.01 - 0.1*math.Cos(phi))
	want := 1500 * 0.05 * math.Sin(phi) / length * 0.1

	got, err := m.RotationEnergy(AxisEW, 0, 0.1, 1)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestRotationEnergyErrors(t *testing.T) {
	m, err := New(DefaultSpec())
	require.NoError(t, err)

	_, err = m.RotationEnergy("up", 0, 0.1, 1)
	assert.Error(t, err)
	_, err = m.RotationEnergy(AxisNS, 0, 0.1, 0)
	assert.Error(t, err)

	e, err := m.RotationEnergy(AxisNS, 0.3, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, e)
}

func TestMoveEnergyUsesDegrees(t *testing.T) {
	m, err := New(DefaultSpec())
	require.NoError(t, err)

	deg, err := m.MoveEnergy(AxisEW, 30, 10)
	require.NoError(t, err)
	rad, err := m.RotationEnergy(AxisEW, degToRad(30), degToRad(10), 1)
	require.NoError(t, err)
	assert.Equal(t, rad, deg)
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: -90, Max: 90}
	assert.Equal(t, 90.0, r.Clamp(95))
	assert.Equal(t, -90.0, r.Clamp(-120))
	assert.Equal(t, 12.5, r.Clamp(12.5))
	assert.True(t, r.Contains(90))
	assert.False(t, r.Contains(90.1))
}
