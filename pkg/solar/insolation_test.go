package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyInsolationConstantFlux(t *testing.T) {
	got := DailyInsolation(time.Date(2020, 3, 1, 15, 0, 0, 0, time.UTC), func(time.Time) float64 { return 100 }, 0)
	assert.InDelta(t, 2400, got, 1e-6)
}

func TestTrackingBeatsFlatPanel(t *testing.T) {
	loc := Location{Latitude: 40.7, Longitude: -74.006}
	m := Irradiance{}

	for _, date := range []time.Time{
		time.Date(2020, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 6, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 12, 21, 0, 0, 0, 0, time.UTC),
	} {
		flat := m.ClearSkyInsolation(nil, loc, date, 0, 0, 0.55)
		tracking := m.TrackingInsolation(nil, loc, date, 0.55)
		assert.Greater(t, flat, 0.0)
		assert.Greater(t, tracking, flat, date.Format("2006-01-02"))
	}

	// Summer days collect more than winter days
	summer := m.ClearSkyInsolation(nil, loc, time.Date(2020, 6, 21, 0, 0, 0, 0, time.UTC), 0, 0, 0)
	winter := m.ClearSkyInsolation(nil, loc, time.Date(2020, 12, 21, 0, 0, 0, 0, time.UTC), 0, 0, 0)
	assert.Greater(t, summer, winter)
}

func TestInsolationFollowsPositionFunc(t *testing.T) {
	loc := Location{Latitude: 40.7, Longitude: -74.006}
	date := time.Date(2020, 6, 21, 0, 0, 0, 0, time.UTC)
	m := Irradiance{}

	night := func(Location, time.Time) SunPosition { return SunPosition{AltitudeDeg: -10, AzimuthDeg: 0} }
	assert.Zero(t, m.ClearSkyInsolation(night, loc, date, 0, 0, 0.55))
	assert.Zero(t, m.TrackingInsolation(night, loc, date, 0.55))

	noaa := m.ClearSkyInsolation(AlgorithmNOAA.Func(), loc, date, 0, 0, 0.55)
	meeus := m.ClearSkyInsolation(AlgorithmMeeus.Func(), loc, date, 0, 0, 0.55)
	assert.InDelta(t, noaa, meeus, noaa*0.01)
	assert.Equal(t, m.ClearSkyInsolation(nil, loc, date, 0, 0, 0.55), noaa)
}
