package solar

import (
	"math"
	"time"
)

// ExtraterrestrialFlux is the solar flux in W/m^2 just outside the atmosphere
// on the given day of the year.
func ExtraterrestrialFlux(dayOfYear int) float64 {
	return 1160 + 75*math.Sin(2*math.Pi/365*float64(dayOfYear-275))
}

// OpticalDepth is the seasonal atmospheric optical depth.
func OpticalDepth(dayOfYear int) float64 {
	return 0.174 + 0.035*math.Sin(2*math.Pi/365*float64(dayOfYear-100))
}

// AirMassRatio is the atmospheric path length relative to the zenith path.
// Callers must keep altitude above zero.
func AirMassRatio(altitudeDeg float64) float64 {
	return 1 / math.Sin(degToRad(altitudeDeg))
}

// SkyDiffusionFactor is the ratio of diffuse to direct irradiance.
func SkyDiffusionFactor(dayOfYear int) float64 {
	return 0.095 + 0.04*math.Sin(2*math.Pi/365*float64(dayOfYear-100))
}

// Components holds the three ground-level irradiance components in W/m^2.
type Components struct {
	Direct     float64 `json:"direct"`
	Diffuse    float64 `json:"diffuse"`
	Reflective float64 `json:"reflective"`
}

// Total returns the sum of the components.
func (c Components) Total() float64 {
	return c.Direct + c.Diffuse + c.Reflective
}

// Weighted returns the flux in W/m^2 reaching a panel with the given tilt
// factors.
func (c Components) Weighted(f TiltFactors) float64 {
	return c.Direct*f.Direct + c.Diffuse*f.Diffuse + c.Reflective*f.Reflective
}

// Irradiance is the clear-sky irradiance model.
type Irradiance struct {
	// MinAltitudeDeg cuts off direct irradiance when the sun is within this
	// many degrees of the horizon, where the air mass ratio blows up.
	MinAltitudeDeg float64 `json:"min_altitude_deg" yaml:"min-altitude-deg"`
}

// StrictIrradiance ignores the sun within 5 degrees of the horizon.
func StrictIrradiance() Irradiance {
	return Irradiance{MinAltitudeDeg: 5}
}

// Direct returns the direct beam irradiance on a surface facing the sun.
func (m Irradiance) Direct(t time.Time, altitudeDeg float64) float64 {
	if altitudeDeg <= 0 || altitudeDeg <= m.MinAltitudeDeg || altitudeDeg >= 180-m.MinAltitudeDeg {
		return 0
	}
	day := DayOfYear(t)
	return ExtraterrestrialFlux(day) * math.Exp(-OpticalDepth(day)*AirMassRatio(altitudeDeg))
}

// Diffuse returns the scattered skylight irradiance on a horizontal surface.
func (m Irradiance) Diffuse(t time.Time, altitudeDeg float64) float64 {
	return SkyDiffusionFactor(DayOfYear(t)) * m.Direct(t, altitudeDeg)
}

// Reflective returns the irradiance reflected from the ground with the given
// reflective index in [0, 1].
func (m Irradiance) Reflective(t time.Time, reflectiveIndex, altitudeDeg float64) float64 {
	direct := m.Direct(t, altitudeDeg)
	if direct == 0 {
		return 0
	}
	return reflectiveIndex * direct * (math.Sin(degToRad(altitudeDeg)) + SkyDiffusionFactor(DayOfYear(t)))
}

// Components computes all three components at once.
func (m Irradiance) Components(t time.Time, altitudeDeg, reflectiveIndex float64) Components {
	direct := m.Direct(t, altitudeDeg)
	if direct == 0 {
		return Components{}
	}
	c := SkyDiffusionFactor(DayOfYear(t))
	return Components{
		Direct:     direct,
		Diffuse:    c * direct,
		Reflective: reflectiveIndex * direct * (math.Sin(degToRad(altitudeDeg)) + c),
	}
}
