package solar

import (
	"math"
	"time"
)

// Grena holds the atmospheric inputs to Grena's (2012) Algorithm 1.
type Grena struct {
	DeltaT      float64 // TT - UT in seconds
	Pressure    float64 // atm
	Temperature float64 // Celsius
}

// DefaultGrena returns the reference inputs: 65 s, 1 atm, 20 C.
func DefaultGrena() Grena {
	return Grena{DeltaT: 65, Pressure: 1, Temperature: 20}
}

// GrenaEstimate computes the sun position with Grena's Algorithm 1 under
// default atmospheric conditions.
func GrenaEstimate(loc Location, t time.Time) SunPosition {
	return DefaultGrena().Estimate(loc, t)
}

// Estimate computes the refraction-corrected sun position with Grena's
// Algorithm 1. The algorithm is valid between 2010 and 2110 with a maximum
// error of about 0.2 degrees.
func (g Grena) Estimate(loc Location, t time.Time) SunPosition {
	t = t.UTC()
	ut := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600 + float64(t.Nanosecond())/3.6e12

	year, month := t.Year(), int(t.Month())
	if month <= 2 {
		month += 12
		year--
	}

	// Days relative to the 2060 epoch, truncated the way the published algorithm does
	days := float64(int(365.25*float64(year-2000))+int(30.6001*float64(month+1))-int(0.01*float64(year))+t.Day()) +
		0.0416667*ut - 21958.0
	te := days + 1.1574e-5*g.DeltaT
	wte := 0.017202786 * te

	s1, c1 := math.Sincos(wte)
	s2 := 2 * s1 * c1
	c2 := (c1 + s1) * (c1 - s1)

	ra := -1.38880 + 1.72027920e-2*te + 3.199e-2*s1 - 2.65e-3*c1 + 4.050e-2*s2 + 1.525e-2*c2
	ra = math.Mod(ra, 2*math.Pi)
	if ra < 0 {
		ra += 2 * math.Pi
	}

	decl := 6.57e-3 + 7.347e-2*s1 - 3.9919e-1*c1 + 7.3e-4*s2 - 6.60e-3*c2

	hourAngle := math.Remainder(1.75283+6.3003881*days+degToRad(loc.Longitude)-ra, 2*math.Pi)

	sp, cp := math.Sincos(degToRad(loc.Latitude))
	sd, cd := math.Sincos(decl)
	sH, cH := math.Sincos(hourAngle)

	se0 := clampUnit(sp*sd + cp*cd*cH)
	ep := math.Asin(se0) - 4.26e-5*math.Sqrt(1-se0*se0) // parallax

	// Measured from South, westward
	az := math.Atan2(sH, cH*sp-sd*cp/cd)

	var refraction float64
	if ep > 0 {
		refraction = (0.08422 * g.Pressure) / ((273 + g.Temperature) * math.Tan(ep+0.003138/(ep+0.08919)))
	}

	return SunPosition{
		AltitudeDeg: radToDeg(ep + refraction),
		AzimuthDeg:  fixAngle(radToDeg(az) + 180),
	}
}
