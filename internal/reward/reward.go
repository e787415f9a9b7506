// Package reward turns a simulation transition into a scalar reward: the
// electrical power the panel produces at its new pose, less the cost of
// moving it there.
package reward

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/pkg/panel"
	"github.com/chrissnell/suntracker/pkg/solar"
)

// ErrInvalidConfig is returned when an Assembler cannot be built.
var ErrInvalidConfig = errors.New("invalid reward configuration")

// DefaultFlatPenalty is the per-move penalty in W for ModeFlatPenalty.
const DefaultFlatPenalty = 100.0

// Mode selects how movement is charged.
type Mode string

const (
	// ModePhysical charges the actuator energy of a move, spread over the
	// timestep as average power.
	ModePhysical Mode = "physical"

	// ModeFlatPenalty charges a fixed amount for any move.
	ModeFlatPenalty Mode = "flat_penalty"
)

// ParseMode maps a configuration string to a Mode. An empty string selects
// ModePhysical.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePhysical:
		return ModePhysical, nil
	case ModeFlatPenalty:
		return ModeFlatPenalty, nil
	}
	return "", fmt.Errorf("%w: unknown reward mode %q", ErrInvalidConfig, s)
}

// Units scales the reward for numerical conditioning of a learner.
type Units string

const (
	Watts     Units = "W"
	Kilowatts Units = "kW"
	Megawatts Units = "MW"
)

// ParseUnits maps a configuration string to Units. An empty string selects
// Watts.
func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case "", Watts:
		return Watts, nil
	case Kilowatts:
		return Kilowatts, nil
	case Megawatts:
		return Megawatts, nil
	}
	return "", fmt.Errorf("%w: unknown reward units %q", ErrInvalidConfig, s)
}

// Scale returns the factor that converts W to u.
func (u Units) Scale() float64 {
	switch u {
	case Kilowatts:
		return 1e-3
	case Megawatts:
		return 1e-6
	}
	return 1
}

// Config holds everything a reward depends on besides the transition.
type Config struct {
	Location        solar.Location
	Panel           *panel.Model
	Irradiance      solar.Irradiance
	ReflectiveIndex float64
	Mode            Mode
	FlatPenalty     float64 // W, ModeFlatPenalty only
	Units           Units
	TimestepMinutes float64

	// Sun supplies the true sun position; nil uses solar.Position.
	Sun solar.PositionFunc
}

// Assembler computes rewards. It holds no mutable state and is safe for
// concurrent use.
type Assembler struct {
	cfg         Config
	stepSeconds float64
}

// NewAssembler validates cfg and returns an Assembler.
func NewAssembler(cfg Config) (*Assembler, error) {
	if err := cfg.Location.Validate(); err != nil {
		return nil, err
	}
	if cfg.Panel == nil {
		return nil, fmt.Errorf("%w: no panel model", ErrInvalidConfig)
	}
	if cfg.ReflectiveIndex < 0 || cfg.ReflectiveIndex > 1 {
		return nil, fmt.Errorf("%w: reflective index %v outside [0, 1]", ErrInvalidConfig, cfg.ReflectiveIndex)
	}
	clock, err := sim.NewClock(time.Time{}, cfg.TimestepMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.FlatPenalty < 0 {
		return nil, fmt.Errorf("%w: flat penalty must not be negative", ErrInvalidConfig)
	}

	if cfg.Mode, err = ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.Units, err = ParseUnits(string(cfg.Units)); err != nil {
		return nil, err
	}
	if cfg.Sun == nil {
		cfg.Sun = solar.Position
	}

	return &Assembler{cfg: cfg, stepSeconds: clock.StepSeconds()}, nil
}

// Breakdown is every intermediate of one reward.
type Breakdown struct {
	Time       time.Time         `json:"time"`
	Sun        solar.SunPosition `json:"sun"`
	Irradiance solar.Components  `json:"irradiance"` // W/m^2 on the ground, direct after cloud cover
	Tilt       solar.TiltFactors `json:"tilt"`
	Occlusion  float64           `json:"occlusion"`
	Flux       float64           `json:"flux"`        // W/m^2 on the panel
	Power      float64           `json:"power"`       // W electrical
	MotionJ    float64           `json:"motion_j"`    // actuator energy of the move, J
	MotionCost float64           `json:"motion_cost"` // W charged for the move
	NetWatts   float64           `json:"net_watts"`   // Power - MotionCost
	Reward     float64           `json:"reward"`      // NetWatts in the configured units
}

// Reward scores a transition. It implements sim.Rewarder.
func (a *Assembler) Reward(tr sim.Transition) (float64, error) {
	b, err := a.Breakdown(tr)
	if err != nil {
		return 0, err
	}
	return b.Reward, nil
}

// Breakdown scores a transition and returns every intermediate value.
func (a *Assembler) Breakdown(tr sim.Transition) (Breakdown, error) {
	if tr.Occlusion < 0 || tr.Occlusion > 1 {
		return Breakdown{}, fmt.Errorf("occlusion %v outside [0, 1]", tr.Occlusion)
	}

	sun := a.cfg.Sun(a.cfg.Location, tr.Time)
	b := Breakdown{
		Time:       tr.Time,
		Sun:        sun,
		Irradiance: a.cfg.Irradiance.Components(tr.Time, sun.AltitudeDeg, a.cfg.ReflectiveIndex),
		Tilt:       solar.Tilt(sun, tr.To.NS, tr.To.EW),
		Occlusion:  tr.Occlusion,
	}
	b.Irradiance.Direct *= 1 - tr.Occlusion
	b.Flux = b.Irradiance.Weighted(b.Tilt)
	b.Power = a.cfg.Panel.ElectricalPower(b.Flux)

	cost, joules, err := a.motionCost(tr)
	if err != nil {
		return Breakdown{}, err
	}
	b.MotionJ = joules
	b.MotionCost = cost
	b.NetWatts = b.Power - cost
	b.Reward = b.NetWatts * a.cfg.Units.Scale()

	return b, nil
}

// motionCost returns the W charged for the move and, in physical mode, the
// actuator energy in J.
func (a *Assembler) motionCost(tr sim.Transition) (float64, float64, error) {
	if tr.Action == sim.DoNothing {
		return 0, 0, nil
	}
	if a.cfg.Mode == ModeFlatPenalty {
		return a.cfg.FlatPenalty, 0, nil
	}

	axis, _, ok := tr.Action.Move()
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", sim.ErrUnknownAction, tr.Action)
	}
	from, to := tr.From.Angle(axis), tr.To.Angle(axis)
	joules, err := a.cfg.Panel.MoveEnergy(axis, from, to-from)
	if err != nil {
		return 0, 0, err
	}
	return joules / a.stepSeconds, joules, nil
}

// Config returns the assembler's configuration.
func (a *Assembler) Config() Config {
	return a.cfg
}
