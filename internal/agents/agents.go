// Package agents holds fixed-policy trackers: baselines that pick an action
// from the current state without learning.
package agents

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/pkg/solar"
)

// Agent picks an action for each state.
type Agent interface {
	Name() string
	Act(s sim.State) sim.Action
	Reset()
}

// Controls is what an agent needs to know about the panel it drives.
// *sim.Environment implements it.
type Controls interface {
	Actions() sim.ActionSet
	Bounds() sim.Bounds
	PanelStep() float64
}

const (
	NameFixedPanel   = "fixed-panel"
	NameGrenaTracker = "grena-tracker"
	NameOptimal      = "optimal"
	NameRandom       = "random"
)

// Names lists every agent New can build.
func Names() []string {
	names := []string{NameFixedPanel, NameGrenaTracker, NameOptimal, NameRandom}
	sort.Strings(names)
	return names
}

// Known reports whether New can build the named agent.
func Known(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// New builds the named agent. sun is the true sun position the optimal
// tracker follows; nil uses solar.Position. seed only matters for the random
// agent.
func New(name string, controls Controls, sun solar.PositionFunc, seed uint64) (Agent, error) {
	if sun == nil {
		sun = solar.Position
	}
	switch name {
	case NameFixedPanel:
		return FixedPanel{}, nil
	case NameGrenaTracker:
		return NewTracker(NameGrenaTracker, solar.GrenaEstimate, controls), nil
	case NameOptimal:
		return NewTracker(NameOptimal, sun, controls), nil
	case NameRandom:
		return NewRandom(controls, seed), nil
	}
	return nil, fmt.Errorf("unknown agent %q", name)
}

// FixedPanel never moves.
type FixedPanel struct{}

func (FixedPanel) Name() string { return NameFixedPanel }

func (FixedPanel) Act(sim.State) sim.Action { return sim.DoNothing }

func (FixedPanel) Reset() {}

// Tracker greedily picks the action whose resulting panel normal is closest
// to its own estimate of the sun.
type Tracker struct {
	name     string
	estimate solar.PositionFunc
	controls Controls
}

// NewTracker returns a greedy tracker using estimate to locate the sun.
func NewTracker(name string, estimate solar.PositionFunc, controls Controls) *Tracker {
	return &Tracker{name: name, estimate: estimate, controls: controls}
}

func (t *Tracker) Name() string { return t.name }

func (t *Tracker) Reset() {}

// Act holds still at night and on ties.
func (t *Tracker) Act(s sim.State) sim.Action {
	sun := t.estimate(s.Location, s.Time)
	if !sun.AboveHorizon() {
		return sim.DoNothing
	}
	sunVec := sun.Vector()

	best := sim.DoNothing
	bestScore := solar.CosineSimilarity(sunVec, solar.PanelNormal(s.Pose.NS, s.Pose.EW))
	for _, a := range t.controls.Actions().Actions() {
		next := s.Pose.Apply(a, t.controls.PanelStep(), t.controls.Bounds())
		score := solar.CosineSimilarity(sunVec, solar.PanelNormal(next.NS, next.EW))
		if score > bestScore+1e-12 {
			best, bestScore = a, score
		}
	}
	return best
}

// Random picks uniformly from the action set.
type Random struct {
	controls Controls
	seed     uint64
	rng      *rand.Rand
}

// NewRandom returns a seeded random agent.
func NewRandom(controls Controls, seed uint64) *Random {
	r := &Random{controls: controls, seed: seed}
	r.Reset()
	return r
}

func (r *Random) Name() string { return NameRandom }

// Reset rewinds the generator so every episode replays the same choices.
func (r *Random) Reset() {
	r.rng = rand.New(rand.NewPCG(r.seed, r.seed+1))
}

func (r *Random) Act(sim.State) sim.Action {
	actions := r.controls.Actions().Actions()
	return actions[r.rng.IntN(len(actions))]
}
