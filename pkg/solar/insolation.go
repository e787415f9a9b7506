package solar

import (
	"time"

	"gonum.org/v1/gonum/integrate/quad"
)

// defaultQuadPoints covers a day with enough Legendre nodes to resolve the
// kinks at sunrise and sunset to well under a percent.
const defaultQuadPoints = 240

// FluxFunc returns a flux in W/m^2 at an instant.
type FluxFunc func(t time.Time) float64

// DailyInsolation integrates flux over the UTC day containing date and
// returns the energy in Wh/m^2. A non-positive n uses a default node count.
func DailyInsolation(date time.Time, flux FluxFunc, n int) float64 {
	if n <= 0 {
		n = defaultQuadPoints
	}
	y, m, d := date.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	f := func(hours float64) float64 {
		return flux(midnight.Add(time.Duration(hours * float64(time.Hour))))
	}
	return quad.Fixed(f, 0, 24, n, nil, 0)
}

// ClearSkyInsolation is the daily energy in Wh/m^2 falling on a fixed panel
// at the given pose under the irradiance model. A nil pos uses Position.
func (m Irradiance) ClearSkyInsolation(pos PositionFunc, loc Location, date time.Time, nsDeg, ewDeg, reflectiveIndex float64) float64 {
	if pos == nil {
		pos = Position
	}
	return DailyInsolation(date, func(t time.Time) float64 {
		sun := pos(loc, t)
		return m.Components(t, sun.AltitudeDeg, reflectiveIndex).Weighted(Tilt(sun, nsDeg, ewDeg))
	}, 0)
}

// TrackingInsolation is the daily energy in Wh/m^2 captured by an ideal
// tracker that keeps its normal on the sun while the sun is up.
func (m Irradiance) TrackingInsolation(pos PositionFunc, loc Location, date time.Time, reflectiveIndex float64) float64 {
	if pos == nil {
		pos = Position
	}
	return DailyInsolation(date, func(t time.Time) float64 {
		sun := pos(loc, t)
		ns, ew, ok := PoseFacing(sun.Vector())
		if !ok {
			return 0
		}
		return m.Components(t, sun.AltitudeDeg, reflectiveIndex).Weighted(Tilt(sun, ns, ew))
	}, 0)
}
