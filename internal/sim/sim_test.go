package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/suntracker/internal/cloud"
	"github.com/chrissnell/suntracker/pkg/panel"
	"github.com/chrissnell/suntracker/pkg/solar"
)

func TestActionSets(t *testing.T) {
	assert.Equal(t, []Action{"do_nothing", "panel_forward_ns", "panel_back_ns", "panel_forward_ew", "panel_back_ew"},
		DualAxisActions.Actions())
	assert.Equal(t, []Action{"do_nothing", "panel_forward_ew", "panel_back_ew"}, SingleAxisActions.Actions())

	// Callers cannot change the shared sets
	acts := DualAxisActions.Actions()
	acts[0] = "jump"
	assert.True(t, DualAxisActions.Contains(DoNothing))

	assert.Equal(t, DualAxisActions, ActionsFor(true))
	assert.Equal(t, SingleAxisActions, ActionsFor(false))
}

func TestActionSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     ActionSet
		action  Action
		wantErr bool
	}{
		{"dual forward ns", DualAxisActions, PanelForwardNS, false},
		{"single do nothing", SingleAxisActions, DoNothing, false},
		{"single rejects ns", SingleAxisActions, PanelBackNS, true},
		{"rejects legacy name", DualAxisActions, "doNothing", true},
		{"rejects empty", DualAxisActions, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate(tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoseApply(t *testing.T) {
	tests := []struct {
		name   string
		pose   PanelPose
		action Action
		bounds Bounds
		want   PanelPose
	}{
		{"forward ew clamps", PanelPose{EW: 85}, PanelForwardEW, DualAxisBounds(), PanelPose{EW: 90}},
		{"back ns clamps", PanelPose{NS: -88}, PanelBackNS, DualAxisBounds(), PanelPose{NS: -90}},
		{"forward ns", PanelPose{NS: 10, EW: 5}, PanelForwardNS, DualAxisBounds(), PanelPose{NS: 20, EW: 5}},
		{"back ew", PanelPose{EW: 0}, PanelBackEW, DualAxisBounds(), PanelPose{EW: -10}},
		{"do nothing", PanelPose{NS: 3, EW: 4}, DoNothing, DualAxisBounds(), PanelPose{NS: 3, EW: 4}},
		{"single axis pins ns", PanelPose{NS: 0, EW: 0}, PanelForwardNS, SingleAxisBounds(), PanelPose{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pose.Apply(tt.action, 10, tt.bounds))
		})
	}
}

func TestClock(t *testing.T) {
	_, err := NewClock(time.Now(), 0)
	assert.Error(t, err)

	start := time.Date(2020, 12, 31, 23, 50, 0, 0, time.UTC)
	c, err := NewClock(start, 20)
	require.NoError(t, err)

	next := c.Advance()
	assert.Equal(t, start, c.Now, "Advance must not modify the receiver")
	assert.Equal(t, time.Date(2021, 1, 1, 0, 10, 0, 0, time.UTC), next.Now)
	assert.Equal(t, 20.0, next.StepMinutes())
	assert.Equal(t, 1200.0, next.StepSeconds())
}

func testConfig() Config {
	return Config{
		Start:           time.Date(2020, 5, 1, 15, 0, 0, 0, time.UTC),
		Location:        solar.Location{Latitude: 30.03, Longitude: -90.05},
		TimestepMinutes: 20,
		PanelStepDeg:    20,
		DualAxis:        true,
		Percept:         PerceptAngles,
		Clouds:          cloud.DefaultConfig(),
	}
}

func TestEnvironmentStep(t *testing.T) {
	var seen []Transition
	rewarder := RewarderFunc(func(tr Transition) (float64, error) {
		seen = append(seen, tr)
		return tr.To.EW, nil
	})

	env, err := NewEnvironment(testConfig(), rewarder, nil)
	require.NoError(t, err)

	r, s, err := env.Step(PanelForwardEW)
	require.NoError(t, err)
	assert.Equal(t, 20.0, r)
	assert.Equal(t, PanelPose{EW: 20}, s.Pose)
	assert.Equal(t, time.Date(2020, 5, 1, 15, 20, 0, 0, time.UTC), s.Time)
	assert.Equal(t, solar.Position(s.Location, s.Time), s.Sun)
	require.Len(t, seen, 1)
	assert.Equal(t, PanelPose{}, seen[0].From)
	assert.Zero(t, seen[0].Occlusion)

	// Unknown actions leave the environment untouched
	_, s2, err := env.Step("spin")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, s, s2)
	assert.Len(t, seen, 1)

	env.Reset()
	assert.Equal(t, PanelPose{}, env.State().Pose)
	assert.Equal(t, testConfig().Start, env.State().Time)
}

func TestEnvironmentSingleAxisRejectsNS(t *testing.T) {
	cfg := testConfig()
	cfg.DualAxis = false
	env, err := NewEnvironment(cfg, RewarderFunc(func(Transition) (float64, error) { return 0, nil }), nil)
	require.NoError(t, err)

	_, _, err = env.Step(PanelForwardNS)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, SingleAxisBounds(), env.Bounds())
}

func TestNewEnvironmentValidation(t *testing.T) {
	ok := RewarderFunc(func(Transition) (float64, error) { return 0, nil })

	tests := []struct {
		name     string
		modify   func(*Config)
		rewarder Rewarder
	}{
		{"no rewarder", func(*Config) {}, nil},
		{"bad latitude", func(c *Config) { c.Location.Latitude = 91 }, ok},
		{"zero step", func(c *Config) { c.PanelStepDeg = 0 }, ok},
		{"zero timestep", func(c *Config) { c.TimestepMinutes = 0 }, ok},
		{"unknown percept", func(c *Config) { c.Percept = "sonar" }, ok},
		{"clouds need image", func(c *Config) { c.CloudMode = true }, ok},
		{"inverted bounds", func(c *Config) {
			c.PanelBounds = map[panel.Axis]panel.Range{panel.AxisEW: {Min: 30, Max: 10}}
		}, ok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			_, err := NewEnvironment(cfg, tt.rewarder, nil)
			assert.Error(t, err)
		})
	}
}

func TestEnvironmentCloudsAreSeeded(t *testing.T) {
	cfg := testConfig()
	cfg.Percept = PerceptImage
	cfg.CloudMode = true
	cfg.Seed = 99

	var occlusions [2][]float64
	for i := range occlusions {
		env, err := NewEnvironment(cfg, RewarderFunc(func(tr Transition) (float64, error) {
			occlusions[i] = append(occlusions[i], tr.Occlusion)
			return 0, nil
		}), nil)
		require.NoError(t, err)
		assert.Len(t, env.Clouds(), cfg.Clouds.Count)
		assert.Equal(t, env.Clouds(), env.State().Clouds)
		for j := 0; j < 100; j++ {
			_, _, err := env.Step(DoNothing)
			require.NoError(t, err)
		}
	}

	assert.Equal(t, occlusions[0], occlusions[1])
}

func TestNewBounds(t *testing.T) {
	tests := []struct {
		name     string
		ranges   map[panel.Axis]panel.Range
		dualAxis bool
		want     Bounds
	}{
		{"defaults", nil, true, DualAxisBounds()},
		{"single axis defaults", nil, false, SingleAxisBounds()},
		{"configured ranges", map[panel.Axis]panel.Range{
			panel.AxisNS: {Min: -45, Max: 60},
			panel.AxisEW: {Min: 10, Max: 90},
		}, true, Bounds{NS: panel.Range{Min: -45, Max: 60}, EW: panel.Range{Min: 10, Max: 90}}},
		{"single axis pins ns inside its range", map[panel.Axis]panel.Range{
			panel.AxisNS: {Min: 5, Max: 60},
		}, false, Bounds{NS: panel.Range{Min: 5, Max: 5}, EW: panel.Range{Min: -90, Max: 90}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBounds(tt.ranges, tt.dualAxis))
		})
	}
}

func TestEnvironmentStaysInPanelBounds(t *testing.T) {
	cfg := testConfig()
	cfg.PanelBounds = map[panel.Axis]panel.Range{panel.AxisEW: {Min: 10, Max: 90}}

	var seen []Transition
	env, err := NewEnvironment(cfg, RewarderFunc(func(tr Transition) (float64, error) {
		seen = append(seen, tr)
		return 0, nil
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, env.State().Pose.EW, "start pose is clamped into the bounds")

	for i := 0; i < 3; i++ {
		_, s, err := env.Step(PanelBackEW)
		require.NoError(t, err)
		assert.Equal(t, 10.0, s.Pose.EW)
	}
	assert.Equal(t, PanelPose{EW: 10}, seen[0].To)

	_, s, err := env.Step(PanelForwardEW)
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.Pose.EW)
}
