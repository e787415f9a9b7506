package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SunPosition is the apparent position of the sun in the local sky.
type SunPosition struct {
	AltitudeDeg float64 `json:"altitude_deg"` // above the horizon, negative below
	AzimuthDeg  float64 `json:"azimuth_deg"`  // clockwise from North, [0, 360)
}

// AboveHorizon reports whether the sun is strictly above the horizon.
func (p SunPosition) AboveHorizon() bool {
	return p.AltitudeDeg > 0
}

// Vector returns the unit vector pointing at the sun.
func (p SunPosition) Vector() Vec {
	return SunVector(p.AltitudeDeg, p.AzimuthDeg)
}

// Algorithm selects the ephemeris used to compute a SunPosition.
type Algorithm string

const (
	// AlgorithmNOAA uses the NOAA general solar position formulas: declination
	// and equation of time from the sun's mean anomaly, then the hour angle.
	AlgorithmNOAA Algorithm = "noaa"

	// AlgorithmMeeus uses apparent equatorial coordinates and apparent
	// sidereal time from the meeus library.
	AlgorithmMeeus Algorithm = "meeus"

	// AlgorithmGrena uses Grena's (2012) Algorithm 1. Cheap and valid for
	// 2010-2110; used as a tracker's own onboard estimate.
	AlgorithmGrena Algorithm = "grena"
)

// PositionFunc computes the sun position for a location and UTC instant.
type PositionFunc func(loc Location, t time.Time) SunPosition

// ParseAlgorithm maps a configuration string to an Algorithm. An empty
// string selects AlgorithmNOAA.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmNOAA:
		return AlgorithmNOAA, nil
	case AlgorithmMeeus:
		return AlgorithmMeeus, nil
	case AlgorithmGrena:
		return AlgorithmGrena, nil
	default:
		return "", fmt.Errorf("unknown sun position algorithm %q", s)
	}
}

// Func returns the PositionFunc implementing the algorithm.
func (a Algorithm) Func() PositionFunc {
	switch a {
	case AlgorithmMeeus:
		return MeeusPosition
	case AlgorithmGrena:
		return GrenaEstimate
	default:
		return Position
	}
}

// Position computes the sun's altitude and azimuth using the NOAA formulas.
// Accuracy is a small fraction of a degree for dates near the present.
func Position(loc Location, t time.Time) SunPosition {
	t = t.UTC()
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))  // mean anomaly
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(omega)) // apparent longitude
	eps := meanObliquity(T) + 0.00256*math.Cos(degToRad(omega))
	decl := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))

	// True solar time in minutes, 4 minutes per degree of longitude
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0 + float64(t.Nanosecond())/6e10
	tst := utcMin + equationOfTime(t) + 4*loc.Longitude
	hourAngle := degToRad(tst/4 - 180)

	return horizontal(degToRad(loc.Latitude), decl, hourAngle)
}

// horizontal converts declination and local hour angle (radians) to altitude
// and azimuth for an observer at latitude phi (radians).
func horizontal(phi, decl, hourAngle float64) SunPosition {
	sinAlt := math.Sin(phi)*math.Sin(decl) + math.Cos(phi)*math.Cos(decl)*math.Cos(hourAngle)
	alt := math.Asin(clampUnit(sinAlt))

	// Meeus 13.5 measures azimuth from South, westward. Rotate by 180 for North.
	az := math.Atan2(math.Sin(hourAngle), math.Cos(hourAngle)*math.Sin(phi)-math.Tan(decl)*math.Cos(phi))

	return SunPosition{
		AltitudeDeg: radToDeg(alt),
		AzimuthDeg:  fixAngle(radToDeg(az) + 180),
	}
}

// meanObliquity returns the mean obliquity of the ecliptic in degrees
func meanObliquity(T float64) float64 {
	return 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
}

// equationOfTime calculates the Equation of Time (EoT) in minutes, the difference between apparent and mean solar time
func equationOfTime(t time.Time) float64 {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267) // eccentricity of Earth's orbit
	eps0 := meanObliquity(T)

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	return radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4 // 4 minutes per degree
}

// Calculator computes sun positions with an algorithm chosen once at
// construction.
type Calculator struct {
	algorithm Algorithm
	position  PositionFunc
}

// NewCalculator returns a Calculator for the named algorithm.
func NewCalculator(name string) (*Calculator, error) {
	a, err := ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return &Calculator{algorithm: a, position: a.Func()}, nil
}

// Algorithm returns the algorithm in use.
func (c *Calculator) Algorithm() Algorithm {
	return c.algorithm
}

// Position computes the sun position at loc and t.
func (c *Calculator) Position(loc Location, t time.Time) SunPosition {
	return c.position(loc, t)
}
