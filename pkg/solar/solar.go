// Package solar computes sun geometry, clear-sky irradiance and panel tilt
// factors. Every function here is a pure function of its inputs; nothing in
// the package holds mutable state, so independent simulations may call it
// concurrently.
//
// Coordinate frame: x points North, y points East, z points Up. Azimuths are
// degrees clockwise from North in [0, 360). Longitudes are positive East.
package solar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidLocation is returned when a latitude or longitude is out of range.
var ErrInvalidLocation = errors.New("invalid location")

// Location is a point on the Earth's surface in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// NewLocation validates lat/lon and returns a Location.
func NewLocation(latitude, longitude float64) (Location, error) {
	loc := Location{Latitude: latitude, Longitude: longitude}
	if err := loc.Validate(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Validate reports whether the location is within [-90,90] x [-180,180].
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidLocation, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// DayOfYear returns the 1-based day of the year of t in UTC.
func DayOfYear(t time.Time) int {
	return t.UTC().YearDay()
}

// degToRad converts an angle from degrees to radians for trigonometric calculations
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// radToDeg converts an angle from radians to degrees
func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(a float64) float64 {
	return a - 360.0*math.Floor(a/360.0)
}

// clampUnit keeps rounding noise from pushing a cosine outside [-1, 1]
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
