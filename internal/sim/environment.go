package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/suntracker/internal/cloud"
	"github.com/chrissnell/suntracker/pkg/panel"
	"github.com/chrissnell/suntracker/pkg/solar"
)

// ErrInvalidConfig is returned when an Environment cannot be built.
var ErrInvalidConfig = errors.New("invalid simulation configuration")

// PerceptMode selects what the agent observes.
type PerceptMode string

const (
	PerceptAngles PerceptMode = "angles" // sun and panel angles
	PerceptImage  PerceptMode = "image"  // a sky image; enables clouds
)

// ParsePerceptMode maps a configuration string to a PerceptMode. An empty
// string selects PerceptAngles.
func ParsePerceptMode(s string) (PerceptMode, error) {
	switch PerceptMode(s) {
	case "", PerceptAngles:
		return PerceptAngles, nil
	case PerceptImage:
		return PerceptImage, nil
	}
	return "", fmt.Errorf("%w: unknown percept mode %q", ErrInvalidConfig, s)
}

// Transition is one step of the simulation as seen by a Rewarder.
type Transition struct {
	Time      time.Time
	From      PanelPose
	To        PanelPose
	Action    Action
	Occlusion float64 // share of the direct beam blocked by clouds
}

// Rewarder scores a transition.
type Rewarder interface {
	Reward(tr Transition) (float64, error)
}

// RewarderFunc adapts a function to Rewarder.
type RewarderFunc func(tr Transition) (float64, error)

// Reward calls f.
func (f RewarderFunc) Reward(tr Transition) (float64, error) {
	return f(tr)
}

// State is what an agent sees before choosing an action.
type State struct {
	Time     time.Time         `json:"time"`
	Location solar.Location    `json:"location"`
	Pose     PanelPose         `json:"pose"`
	Sun      solar.SunPosition `json:"sun"`
	// Clouds is the sky the image percept renders; empty without cloud mode.
	Clouds []cloud.Cloud `json:"clouds,omitempty"`
}

// Config describes one simulation instance.
type Config struct {
	Start           time.Time
	Location        solar.Location
	TimestepMinutes float64
	PanelStepDeg    float64
	DualAxis        bool
	Percept         PerceptMode
	CloudMode       bool
	Clouds          cloud.Config
	Seed            uint64
	StartPose       PanelPose
	// PanelBounds limits each axis; nil lets both swing from -90 to 90.
	PanelBounds map[panel.Axis]panel.Range
}

// Environment is a single simulation instance. It is not safe for
// concurrent use; run independent instances in parallel instead.
type Environment struct {
	cfg      Config
	actions  ActionSet
	bounds   Bounds
	rewarder Rewarder
	sun      solar.PositionFunc

	clock  SimClock
	pose   PanelPose
	clouds *cloud.Field
}

// NewEnvironment validates cfg and returns an Environment in its start
// state. sun supplies the true sun position; nil uses solar.Position.
func NewEnvironment(cfg Config, rewarder Rewarder, sun solar.PositionFunc) (*Environment, error) {
	if rewarder == nil {
		return nil, fmt.Errorf("%w: no rewarder", ErrInvalidConfig)
	}
	if err := cfg.Location.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.PanelStepDeg > 0) {
		return nil, fmt.Errorf("%w: panel step must be positive, got %v", ErrInvalidConfig, cfg.PanelStepDeg)
	}
	percept, err := ParsePerceptMode(string(cfg.Percept))
	if err != nil {
		return nil, err
	}
	cfg.Percept = percept
	if cfg.CloudMode && cfg.Percept != PerceptImage {
		return nil, fmt.Errorf("%w: cloud mode requires the image percept", ErrInvalidConfig)
	}
	for axis, r := range cfg.PanelBounds {
		if !(r.Min <= r.Max) {
			return nil, fmt.Errorf("%w: axis %s bounds [%v, %v] invalid", ErrInvalidConfig, axis, r.Min, r.Max)
		}
	}
	if _, err := NewClock(cfg.Start, cfg.TimestepMinutes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if sun == nil {
		sun = solar.Position
	}

	e := &Environment{
		cfg:      cfg,
		actions:  ActionsFor(cfg.DualAxis),
		bounds:   NewBounds(cfg.PanelBounds, cfg.DualAxis),
		rewarder: rewarder,
		sun:      sun,
	}

	if cfg.CloudMode {
		e.clouds, err = cloud.NewField(cfg.Clouds, cfg.Seed)
		if err != nil {
			return nil, err
		}
	}

	e.Reset()
	return e, nil
}

// Reset returns the environment to its start state.
func (e *Environment) Reset() {
	e.clock, _ = NewClock(e.cfg.Start, e.cfg.TimestepMinutes)
	e.pose = e.cfg.StartPose.Clamp(e.bounds)
	if e.clouds != nil {
		e.clouds.Reset(e.clock.Now)
	}
}

// Actions returns the action set of this environment.
func (e *Environment) Actions() ActionSet {
	return e.actions
}

// Bounds returns the pose bounds of this environment.
func (e *Environment) Bounds() Bounds {
	return e.bounds
}

// PanelStep returns the degrees one action moves an axis.
func (e *Environment) PanelStep() float64 {
	return e.cfg.PanelStepDeg
}

// Clock returns the current clock.
func (e *Environment) Clock() SimClock {
	return e.clock
}

// Clouds returns the current clouds, or nil when cloud mode is off.
func (e *Environment) Clouds() []cloud.Cloud {
	if e.clouds == nil {
		return nil
	}
	return e.clouds.Clouds()
}

// State returns the current observation.
func (e *Environment) State() State {
	return State{
		Time:     e.clock.Now,
		Location: e.cfg.Location,
		Pose:     e.pose,
		Sun:      e.sun(e.cfg.Location, e.clock.Now),
		Clouds:   e.Clouds(),
	}
}

// Step applies action a, scores the transition and advances the clock. An
// unknown action fails without changing the environment.
func (e *Environment) Step(a Action) (float64, State, error) {
	if err := e.actions.Validate(a); err != nil {
		return 0, e.State(), err
	}

	tr := Transition{
		Time:   e.clock.Now,
		From:   e.pose,
		To:     e.pose.Apply(a, e.cfg.PanelStepDeg, e.bounds),
		Action: a,
	}
	if e.clouds != nil {
		tr.Occlusion = e.clouds.Occlusion(e.sun(e.cfg.Location, tr.Time))
	}

	reward, err := e.rewarder.Reward(tr)
	if err != nil {
		return 0, e.State(), fmt.Errorf("scoring %s at %s: %w", a, tr.Time.Format(time.RFC3339), err)
	}

	e.pose = tr.To
	e.clock = e.clock.Advance()
	if e.clouds != nil {
		e.clouds.Advance(e.clock.Now, e.clock.StepMinutes())
	}

	return reward, e.State(), nil
}
