package solar

import "math"

// TiltFactors are the fractions of each irradiance component captured by a
// tilted panel.
type TiltFactors struct {
	Direct     float64 `json:"direct"`
	Diffuse    float64 `json:"diffuse"`
	Reflective float64 `json:"reflective"`
}

// DirectTiltFactor is the cosine between the sun vector and the panel
// normal. Light arriving from behind the panel is not captured, so the
// factor is clamped at 0.
func DirectTiltFactor(sun SunPosition, nsDeg, ewDeg float64) float64 {
	return math.Max(0, CosineSimilarity(sun.Vector(), PanelNormal(nsDeg, ewDeg)))
}

// DiffuseTiltFactor is the share of the sky dome a panel sees. It depends
// only on how far the panel is tipped from flat.
func DiffuseTiltFactor(nsDeg, ewDeg float64) float64 {
	return (math.Cos(degToRad(math.Abs(nsDeg))) + math.Cos(degToRad(math.Abs(ewDeg)))) / 2
}

// ReflectiveTiltFactor is the share of the ground a panel sees: 0 when flat,
// 1 when both axes are at 90 degrees.
func ReflectiveTiltFactor(nsDeg, ewDeg float64) float64 {
	return (2 - math.Cos(degToRad(nsDeg)) - math.Cos(degToRad(ewDeg))) / 2
}

// Tilt computes all three tilt factors for a panel pose.
func Tilt(sun SunPosition, nsDeg, ewDeg float64) TiltFactors {
	return TiltFactors{
		Direct:     DirectTiltFactor(sun, nsDeg, ewDeg),
		Diffuse:    DiffuseTiltFactor(nsDeg, ewDeg),
		Reflective: ReflectiveTiltFactor(nsDeg, ewDeg),
	}
}
