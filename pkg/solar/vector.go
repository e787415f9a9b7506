package solar

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3-vector in the North-East-Up frame.
type Vec = r3.Vec

// Up is the zenith unit vector, the normal of a flat panel.
var Up = Vec{X: 0, Y: 0, Z: 1}

// SunVector converts an altitude and azimuth in degrees to a unit vector
// pointing at the sun.
func SunVector(altitudeDeg, azimuthDeg float64) Vec {
	sinH, cosH := math.Sincos(degToRad(altitudeDeg))
	sinA, cosA := math.Sincos(degToRad(azimuthDeg))
	return r3.Unit(Vec{X: cosH * cosA, Y: cosH * sinA, Z: sinH})
}

// PanelNormal returns the unit normal of a panel tilted nsDeg about the
// east-west axis (positive toward North) and ewDeg about the north-south
// axis (positive toward East). Each tilt scales the components independently
// rather than composing two rotations, matching the sun vector frame at the
// poses a tracker actually visits.
func PanelNormal(nsDeg, ewDeg float64) Vec {
	sinNS, cosNS := math.Sincos(degToRad(nsDeg))
	sinEW, cosEW := math.Sincos(degToRad(ewDeg))
	// At +/-90 on both axes every component is tiny but the direction is
	// still well defined, so normalize without a cutoff.
	return r3.Unit(Vec{X: sinNS * cosEW, Y: sinEW * cosNS, Z: cosNS * cosEW})
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is zero.
func CosineSimilarity(a, b Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clampUnit(r3.Dot(a, b) / (na * nb))
}

// AngleBetween returns the angle in degrees between a and b.
func AngleBetween(a, b Vec) float64 {
	return radToDeg(math.Acos(CosineSimilarity(a, b)))
}

// PoseFacing returns the panel pose whose normal points along v. It is the
// inverse of PanelNormal for directions above the horizon; ok is false when
// v has no upward component.
func PoseFacing(v Vec) (nsDeg, ewDeg float64, ok bool) {
	if v.Z <= 0 {
		return 0, 0, false
	}
	return radToDeg(math.Atan2(v.X, v.Z)), radToDeg(math.Atan2(v.Y, v.Z)), true
}
