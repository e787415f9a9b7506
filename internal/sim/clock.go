package sim

import (
	"fmt"
	"math"
	"time"
)

// SimClock is the simulated UTC time and the fixed step between
// transitions.
type SimClock struct {
	Now  time.Time
	Step time.Duration
}

// NewClock returns a clock starting at start and advancing timestepMinutes
// per transition.
func NewClock(start time.Time, timestepMinutes float64) (SimClock, error) {
	if !(timestepMinutes > 0) || math.IsInf(timestepMinutes, 1) {
		return SimClock{}, fmt.Errorf("timestep must be positive, got %v minutes", timestepMinutes)
	}
	return SimClock{
		Now:  start.UTC(),
		Step: time.Duration(timestepMinutes * float64(time.Minute)),
	}, nil
}

// Advance returns the clock one step later.
func (c SimClock) Advance() SimClock {
	return SimClock{Now: c.Now.Add(c.Step), Step: c.Step}
}

// StepMinutes returns the step length in minutes.
func (c SimClock) StepMinutes() float64 {
	return c.Step.Minutes()
}

// StepSeconds returns the step length in seconds.
func (c SimClock) StepSeconds() float64 {
	return c.Step.Seconds()
}
