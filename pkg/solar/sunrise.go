package solar

import (
	"math"
	"time"
)

// DaylightWindow returns sunrise and sunset as minutes from midnight UTC
// for the given day-of-year at loc. Both values are -1 during polar day
// (sun never sets) or polar night (sun never rises).
//
// The window is a flat-horizon estimate good to a few minutes; it ignores
// refraction and the solar disc radius.
func DaylightWindow(dayOfYear int, loc Location) (sunriseMinutes, sunsetMinutes int) {
	// Solar declination from the day angle
	doy := float64(dayOfYear)
	innerAngle := degToRad(356.6 + 0.9856*doy)
	outerAngle := degToRad(278.97 + 0.9856*doy + 1.9165*math.Sin(innerAngle))
	declinationRad := math.Asin(0.39785 * math.Sin(outerAngle))

	// At sunrise/sunset cos(H) = -tan(lat) * tan(declination)
	cosH := -math.Tan(degToRad(loc.Latitude)) * math.Tan(declinationRad)
	if cosH < -1.0 || cosH > 1.0 {
		return -1, -1
	}

	hourAngleMinutes := radToDeg(math.Acos(cosH)) * 4 // 4 minutes per degree

	// Fixed non-leap reference year keeps the window a pure function of its inputs
	refTime := time.Date(2001, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)

	// 720 = 12:00 UTC; positive (east) longitude means an earlier solar noon
	solarNoonUTC := 720.0 - 4*loc.Longitude - equationOfTime(refTime)

	sunriseUTC := math.Mod(solarNoonUTC-hourAngleMinutes+1440, 1440)
	sunsetUTC := math.Mod(solarNoonUTC+hourAngleMinutes+1440, 1440)

	return int(math.Round(sunriseUTC)), int(math.Round(sunsetUTC))
}

// IsDaylight reports whether t falls inside the daylight window at loc.
// Polar day counts as daylight; polar night does not.
func IsDaylight(loc Location, t time.Time) bool {
	t = t.UTC()
	sunrise, sunset := DaylightWindow(DayOfYear(t), loc)
	if sunrise < 0 {
		return Position(loc, t).AboveHorizon()
	}
	now := t.Hour()*60 + t.Minute()
	if sunrise <= sunset {
		return now >= sunrise && now < sunset
	}
	// Window wraps past midnight UTC
	return now >= sunrise || now < sunset
}

// FormatSunTime converts UTC minutes from midnight to a formatted time string
// in the given timezone location.
func FormatSunTime(utcMinutes int, loc *time.Location) string {
	if utcMinutes < 0 {
		return ""
	}

	hours := utcMinutes / 60
	minutes := utcMinutes % 60

	// Create a time in UTC, then convert to local
	t := time.Date(2000, 1, 1, hours, minutes, 0, 0, time.UTC)
	local := t.In(loc)

	return local.Format("3:04 PM")
}
