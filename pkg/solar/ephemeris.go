package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	meeussolar "github.com/soniakeys/meeus/v3/solar"
)

// MeeusPosition computes the sun position from the apparent equatorial
// coordinates of the sun and the apparent sidereal time at Greenwich. It is
// slower than Position and serves as the reference ephemeris.
//
// The difference between TT and UT (about a minute) is ignored.
func MeeusPosition(loc Location, t time.Time) SunPosition {
	jd := julian.TimeToJD(t.UTC())

	ra, dec := meeussolar.ApparentEquatorial(jd)
	gst := sidereal.Apparent(jd)

	// Local hour angle, longitude positive East
	hourAngle := gst.Angle().Rad() + degToRad(loc.Longitude) - ra.Rad()
	hourAngle = math.Remainder(hourAngle, 2*math.Pi)

	return horizontal(degToRad(loc.Latitude), dec.Rad(), hourAngle)
}
