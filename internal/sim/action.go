// Package sim drives a tracking simulation: it owns the clock, the panel
// pose and the cloud field, validates actions, and asks a Rewarder to score
// each transition.
package sim

import (
	"errors"
	"fmt"

	"github.com/chrissnell/suntracker/pkg/panel"
)

// ErrUnknownAction is returned for an action outside the configured set.
var ErrUnknownAction = errors.New("unknown action")

// Action is one of the tracker's moves.
type Action string

const (
	DoNothing      Action = "do_nothing"
	PanelForwardNS Action = "panel_forward_ns"
	PanelBackNS    Action = "panel_back_ns"
	PanelForwardEW Action = "panel_forward_ew"
	PanelBackEW    Action = "panel_back_ew"
)

// Move returns the axis an action turns and the direction, +1 or -1. ok is
// false for DoNothing and unknown actions.
func (a Action) Move() (axis panel.Axis, dir float64, ok bool) {
	switch a {
	case PanelForwardNS:
		return panel.AxisNS, 1, true
	case PanelBackNS:
		return panel.AxisNS, -1, true
	case PanelForwardEW:
		return panel.AxisEW, 1, true
	case PanelBackEW:
		return panel.AxisEW, -1, true
	}
	return "", 0, false
}

// ActionSet is a fixed vocabulary of actions.
type ActionSet struct {
	actions []Action
}

var (
	// DualAxisActions moves the panel on both axes.
	DualAxisActions = ActionSet{actions: []Action{DoNothing, PanelForwardNS, PanelBackNS, PanelForwardEW, PanelBackEW}}

	// SingleAxisActions moves the panel east-west only.
	SingleAxisActions = ActionSet{actions: []Action{DoNothing, PanelForwardEW, PanelBackEW}}
)

// ActionsFor returns the action set for a dual or single axis panel.
func ActionsFor(dualAxis bool) ActionSet {
	if dualAxis {
		return DualAxisActions
	}
	return SingleAxisActions
}

// Actions returns a copy of the actions in a fixed order.
func (s ActionSet) Actions() []Action {
	return append([]Action(nil), s.actions...)
}

// Len returns the number of actions.
func (s ActionSet) Len() int {
	return len(s.actions)
}

// Contains reports whether a is in the set.
func (s ActionSet) Contains(a Action) bool {
	for _, x := range s.actions {
		if x == a {
			return true
		}
	}
	return false
}

// Validate returns an error wrapping ErrUnknownAction if a is not in the set.
func (s ActionSet) Validate(a Action) error {
	if !s.Contains(a) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}
