package sim

import "github.com/chrissnell/suntracker/pkg/panel"

// PanelPose is the panel's tilt on each axis in degrees.
type PanelPose struct {
	NS float64 `json:"ns"`
	EW float64 `json:"ew"`
}

// Bounds limits each axis of a PanelPose.
type Bounds struct {
	NS panel.Range `json:"ns"`
	EW panel.Range `json:"ew"`
}

// DualAxisBounds lets both axes swing from -90 to 90 degrees.
func DualAxisBounds() Bounds {
	return Bounds{
		NS: panel.Range{Min: -90, Max: 90},
		EW: panel.Range{Min: -90, Max: 90},
	}
}

// SingleAxisBounds pins the north-south axis flat.
func SingleAxisBounds() Bounds {
	return Bounds{
		NS: panel.Range{Min: 0, Max: 0},
		EW: panel.Range{Min: -90, Max: 90},
	}
}

// BoundsFor returns the bounds for a dual or single axis panel.
func BoundsFor(dualAxis bool) Bounds {
	if dualAxis {
		return DualAxisBounds()
	}
	return SingleAxisBounds()
}

// NewBounds returns the bounds a panel with the given per-axis ranges can
// reach. Axes missing from ranges swing from -90 to 90 degrees. A single
// axis panel holds north-south at the angle in its range closest to flat.
func NewBounds(ranges map[panel.Axis]panel.Range, dualAxis bool) Bounds {
	b := DualAxisBounds()
	if r, ok := ranges[panel.AxisNS]; ok {
		b.NS = r
	}
	if r, ok := ranges[panel.AxisEW]; ok {
		b.EW = r
	}
	if !dualAxis {
		ns := b.NS.Clamp(0)
		b.NS = panel.Range{Min: ns, Max: ns}
	}
	return b
}

// Range returns the bounds of one axis.
func (b Bounds) Range(axis panel.Axis) panel.Range {
	if axis == panel.AxisNS {
		return b.NS
	}
	return b.EW
}

// Angle returns the pose angle on axis.
func (p PanelPose) Angle(axis panel.Axis) float64 {
	if axis == panel.AxisNS {
		return p.NS
	}
	return p.EW
}

// Clamp limits the pose to b.
func (p PanelPose) Clamp(b Bounds) PanelPose {
	return PanelPose{NS: b.NS.Clamp(p.NS), EW: b.EW.Clamp(p.EW)}
}

// Apply returns the pose after action a moves one axis by stepDeg. The
// result is clamped to b, never wrapped.
func (p PanelPose) Apply(a Action, stepDeg float64, b Bounds) PanelPose {
	axis, dir, ok := a.Move()
	if !ok {
		return p.Clamp(b)
	}
	next := p
	if axis == panel.AxisNS {
		next.NS += dir * stepDeg
	} else {
		next.EW += dir * stepDeg
	}
	return next.Clamp(b)
}
