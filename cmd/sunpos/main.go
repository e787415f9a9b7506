package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/suntracker/pkg/solar"
)

func main() {
	var (
		timeStr    string
		lat, lon   float64
		reflective float64
		algorithm  string
		strict     bool
	)
	flag.StringVar(&timeStr, "time", "", "UTC time to calculate for (RFC3339 format, e.g., 2024-06-21T18:00:00Z)")
	flag.Float64Var(&lat, "lat", 29.95, "Latitude in degrees, positive north")
	flag.Float64Var(&lon, "lon", -90.07, "Longitude in degrees, positive east")
	flag.Float64Var(&reflective, "reflective", 0.55, "Ground reflective index in [0, 1]")
	flag.StringVar(&algorithm, "algorithm", "noaa", "Sun position algorithm: noaa, meeus or grena")
	flag.BoolVar(&strict, "strict", false, "Ignore direct irradiance within 5 degrees of the horizon")
	flag.Parse()

	t := time.Now().UTC()
	if timeStr != "" {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
		t = t.UTC()
	}

	loc, err := solar.NewLocation(lat, lon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if reflective < 0 || reflective > 1 {
		fmt.Fprintf(os.Stderr, "Error: reflective index %v outside [0, 1]\n", reflective)
		os.Exit(1)
	}
	calc, err := solar.NewCalculator(algorithm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var irr solar.Irradiance
	if strict {
		irr = solar.StrictIrradiance()
	}

	sun := calc.Position(loc, t)
	c := irr.Components(t, sun.AltitudeDeg, reflective)
	sunrise, sunset := solar.DaylightWindow(solar.DayOfYear(t), loc)

	fmt.Printf("Sun at %.4f, %.4f for %s (%s)\n", loc.Latitude, loc.Longitude, t.Format(time.RFC3339), calc.Algorithm())
	fmt.Printf("  Altitude:     %.2f°\n", sun.AltitudeDeg)
	fmt.Printf("  Azimuth:      %.2f°\n", sun.AzimuthDeg)
	if sunrise < 0 {
		fmt.Printf("  Daylight:     polar day or night\n")
	} else {
		fmt.Printf("  Sunrise:      %s UTC\n", solar.FormatSunTime(sunrise, time.UTC))
		fmt.Printf("  Sunset:       %s UTC\n", solar.FormatSunTime(sunset, time.UTC))
	}
	fmt.Printf("  Direct:       %.1f W/m²\n", c.Direct)
	fmt.Printf("  Diffuse:      %.1f W/m²\n", c.Diffuse)
	fmt.Printf("  Reflective:   %.1f W/m²\n", c.Reflective)

	if ns, ew, ok := solar.PoseFacing(sun.Vector()); ok {
		tracked := c.Weighted(solar.Tilt(sun, ns, ew))
		flat := c.Weighted(solar.Tilt(sun, 0, 0))
		fmt.Printf("  Facing pose:  ns %.1f°, ew %.1f°\n", ns, ew)
		fmt.Printf("  Flux:         %.1f W/m² tracking, %.1f W/m² flat\n", tracked, flat)
	}
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	fmt.Printf("  Day total:    %.0f Wh/m² tracking, %.0f Wh/m² flat\n",
		irr.TrackingInsolation(calc.Position, loc, date, reflective), irr.ClearSkyInsolation(calc.Position, loc, date, 0, 0, reflective))
}
