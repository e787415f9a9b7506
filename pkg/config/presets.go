package config

import (
	"fmt"
	"sort"
	"time"

	// Presets name IANA zones; embed the database so they resolve anywhere.
	_ "time/tzdata"

	"github.com/chrissnell/suntracker/pkg/solar"
)

// startLayout is the wall-clock layout of LocationData.Start.
const startLayout = "2006-01-02T15:04"

// DefaultPresetYear is the year preset start times fall in.
const DefaultPresetYear = 2020

// Preset is a named experiment site. Start times are local wall clock in
// Timezone.
type Preset struct {
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
	Month     time.Month
	Day       int
	Hour      int

	RandomLocation bool
	LatRange       [2]float64
	LonRange       [2]float64
}

var presets = map[string]Preset{
	"australia": {Name: "australia", Latitude: -34.25, Longitude: 142.17, Timezone: "Australia/Sydney", Month: time.November, Day: 23, Hour: 20},
	"iceland":   {Name: "iceland", Latitude: 64.1265, Longitude: -21.8174, Timezone: "Iceland", Month: time.August, Day: 1, Hour: 1},
	"nyc":       {Name: "nyc", Latitude: 40.7, Longitude: -74.006, Timezone: "America/New_York", Month: time.June, Day: 1, Hour: 10},
	"nola":      {Name: "nola", Latitude: 30.03, Longitude: -90.05, Timezone: "America/Kentucky/Louisville", Month: time.May, Day: 1, Hour: 15},
	"pvd":       {Name: "pvd", Latitude: 41.82399, Longitude: -71.41283, Timezone: "America/New_York", Month: time.September, Day: 1, Hour: 10},
	"rio":       {Name: "rio", Latitude: -22.9068, Longitude: -43.1729, Timezone: "Brazil/West", Month: time.October, Day: 5, Hour: 10},
	"japan":     {Name: "japan", Latitude: 35.6895, Longitude: 139.6917, Timezone: "Japan", Month: time.January, Day: 1, Hour: 10},
	"alaska":    {Name: "alaska", Latitude: 58.3019, Longitude: -134.4197, Timezone: "US/Alaska", Month: time.June, Day: 25, Hour: 5},
	"cape_town": {Name: "cape_town", Latitude: -33.9351, Longitude: 18.4289, Timezone: "Africa/Johannesburg", Month: time.July, Day: 1, Hour: 10},
	"usa_avg": {
		Name: "usa_avg", Timezone: "America/New_York", Month: time.July, Day: 1, Hour: 10,
		RandomLocation: true,
		LatRange:       [2]float64{30, 50},
		LonRange:       [2]float64{-120, -80},
	},
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown location preset %q, want one of %v", ErrInvalidConfig, name, PresetNames())
	}
	return p, nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start returns the preset's start instant in year, in UTC.
func (p Preset) Start(year int) (time.Time, error) {
	tz, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: preset %s: %v", ErrInvalidConfig, p.Name, err)
	}
	return time.Date(year, p.Month, p.Day, p.Hour, 0, 0, 0, tz).UTC(), nil
}

// Resolve turns the location section into a Site. A preset supplies
// defaults that explicit latitude, longitude, timezone and start override.
func (l LocationData) Resolve() (Site, error) {
	site := Site{Name: "custom"}
	tzName := l.Timezone
	lat, lon := l.Latitude, l.Longitude

	if l.Preset != "" {
		p, err := LookupPreset(l.Preset)
		if err != nil {
			return Site{}, err
		}
		year := l.Year
		if year == 0 {
			year = DefaultPresetYear
		}
		if site.Start, err = p.Start(year); err != nil {
			return Site{}, err
		}
		site.Name = p.Name
		site.RandomLocation = p.RandomLocation
		site.LatRange, site.LonRange = p.LatRange, p.LonRange
		if lat == 0 && lon == 0 {
			lat, lon = p.Latitude, p.Longitude
		} else {
			site.RandomLocation = false
		}
		if tzName == "" {
			tzName = p.Timezone
		}
	} else if l.Start == "" {
		return Site{}, fmt.Errorf("%w: location needs a preset or a start time", ErrInvalidConfig)
	}

	if l.Start != "" {
		tz := time.UTC
		if tzName != "" {
			var err error
			if tz, err = time.LoadLocation(tzName); err != nil {
				return Site{}, fmt.Errorf("%w: location.timezone: %v", ErrInvalidConfig, err)
			}
		}
		start, err := time.ParseInLocation(startLayout, l.Start, tz)
		if err != nil {
			return Site{}, fmt.Errorf("%w: location.start: %v", ErrInvalidConfig, err)
		}
		site.Start = start.UTC()
	}

	loc, err := solar.NewLocation(lat, lon)
	if err != nil {
		return Site{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	site.Location = loc
	return site, nil
}
