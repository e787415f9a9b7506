// Package cloud keeps a drifting field of synthetic clouds and reports how
// much of the direct solar beam they block.
//
// Clouds live in sky image coordinates: a square of ImageDims pixels where
// x runs from west (0) to east (ImageDims) and y runs from the horizon (0)
// to the zenith (ImageDims/2).
package cloud

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/chrissnell/suntracker/pkg/solar"
)

const (
	DefaultImageDims      = 64
	DefaultCount          = 5
	DefaultGenerationHour = 6
	DefaultMaxSpeed       = 4
	DefaultMinRadius      = 4
	DefaultMaxRadius      = 12
	DefaultMinIntensity   = 0.22
	DefaultMaxIntensity   = 0.8

	// Velocities are given per this many minutes of simulated time.
	velocityMinutes = 20.0
)

// ErrInvalidConfig is returned for an unusable cloud configuration.
var ErrInvalidConfig = errors.New("invalid cloud configuration")

// Cloud is an elliptical cloud in sky image coordinates.
type Cloud struct {
	X, Y      float64 // center
	DX, DY    float64 // drift per 20 simulated minutes
	RX, RY    float64 // radii
	Intensity float64 // share of the direct beam blocked at the center, [0, 1]
}

// Moved returns the cloud advected over timestepMinutes.
func (c Cloud) Moved(timestepMinutes float64) Cloud {
	c.X += c.DX * timestepMinutes / velocityMinutes
	c.Y += c.DY * timestepMinutes / velocityMinutes
	return c
}

// Cover returns the share of the beam blocked at (x, y): Intensity at the
// center, falling linearly to 0 at the edge of the ellipse.
func (c Cloud) Cover(x, y float64) float64 {
	if c.RX <= 0 || c.RY <= 0 {
		return 0
	}
	d := math.Hypot((x-c.X)/c.RX, (y-c.Y)/c.RY)
	if d >= 1 {
		return 0
	}
	return c.Intensity * (1 - d)
}

// SkyPoint projects a sun position into sky image coordinates.
func SkyPoint(sun solar.SunPosition, dims float64) (x, y float64) {
	az := sun.AzimuthDeg * math.Pi / 180
	alt := sun.AltitudeDeg * math.Pi / 180
	return dims * (1 + math.Sin(az)) / 2, dims * math.Sin(alt) / 2
}

// Occlusion returns the share of the direct beam blocked by clouds, in
// [0, 1]. Overlapping clouds add up.
func Occlusion(clouds []Cloud, sun solar.SunPosition, dims float64) float64 {
	if !sun.AboveHorizon() || len(clouds) == 0 {
		return 0
	}
	x, y := SkyPoint(sun, dims)
	var total float64
	for _, c := range clouds {
		total += c.Cover(x, y)
	}
	return math.Min(1, total)
}

// Config controls cloud generation.
type Config struct {
	Count          int     `yaml:"count"`
	GenerationHour int     `yaml:"generation-hour"` // UTC hour a fresh batch appears each day
	ImageDims      float64 `yaml:"image-dims"`
	MaxSpeed       float64 `yaml:"max-speed"`
	MinRadius      float64 `yaml:"min-radius"`
	MaxRadius      float64 `yaml:"max-radius"`
	MinIntensity   float64 `yaml:"min-intensity"`
	MaxIntensity   float64 `yaml:"max-intensity"`
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		Count:          DefaultCount,
		GenerationHour: DefaultGenerationHour,
		ImageDims:      DefaultImageDims,
		MaxSpeed:       DefaultMaxSpeed,
		MinRadius:      DefaultMinRadius,
		MaxRadius:      DefaultMaxRadius,
		MinIntensity:   DefaultMinIntensity,
		MaxIntensity:   DefaultMaxIntensity,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("%w: count %d is negative", ErrInvalidConfig, c.Count)
	case c.GenerationHour < 0 || c.GenerationHour > 23:
		return fmt.Errorf("%w: generation hour %d outside [0, 23]", ErrInvalidConfig, c.GenerationHour)
	case !(c.ImageDims > 0):
		return fmt.Errorf("%w: image dims must be positive", ErrInvalidConfig)
	case c.MaxSpeed < 0:
		return fmt.Errorf("%w: max speed is negative", ErrInvalidConfig)
	case !(c.MinRadius > 0) || c.MaxRadius < c.MinRadius:
		return fmt.Errorf("%w: radius range [%v, %v] invalid", ErrInvalidConfig, c.MinRadius, c.MaxRadius)
	case c.MinIntensity < 0 || c.MaxIntensity > 1 || c.MaxIntensity < c.MinIntensity:
		return fmt.Errorf("%w: intensity range [%v, %v] invalid", ErrInvalidConfig, c.MinIntensity, c.MaxIntensity)
	}
	return nil
}

// Field is the cloud cover of one simulation instance. It is not safe for
// concurrent use; each simulation owns its own Field.
type Field struct {
	cfg       Config
	rng       *rand.Rand
	clouds    []Cloud
	batchDate time.Time // UTC midnight of the day the current batch appeared
}

// NewField returns an empty Field whose batches are drawn from a generator
// seeded with seed.
func NewField(cfg Config, seed uint64) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Field{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Reset draws a fresh batch for the day containing now.
func (f *Field) Reset(now time.Time) {
	f.generate(now)
}

// Advance moves the field forward to now, timestepMinutes after the last
// call. The first step at or past GenerationHour on a new day replaces the
// batch; every other step advects it.
func (f *Field) Advance(now time.Time, timestepMinutes float64) {
	now = now.UTC()
	if now.Hour() >= f.cfg.GenerationHour && midnight(now).After(f.batchDate) {
		f.generate(now)
		return
	}
	for i := range f.clouds {
		f.clouds[i] = f.clouds[i].Moved(timestepMinutes)
	}
}

// Clouds returns a copy of the current clouds.
func (f *Field) Clouds() []Cloud {
	return append([]Cloud(nil), f.clouds...)
}

// Occlusion returns the share of the direct beam the field blocks for sun.
func (f *Field) Occlusion(sun solar.SunPosition) float64 {
	return Occlusion(f.clouds, sun, f.cfg.ImageDims)
}

// ImageDims returns the sky image size the field is laid out in.
func (f *Field) ImageDims() float64 {
	return f.cfg.ImageDims
}

func (f *Field) generate(now time.Time) {
	dims := f.cfg.ImageDims
	f.clouds = f.clouds[:0]
	for i := 0; i < f.cfg.Count; i++ {
		f.clouds = append(f.clouds, Cloud{
			X:         f.uniform(0, dims),
			Y:         f.uniform(0, dims/2),
			DX:        f.uniform(-f.cfg.MaxSpeed, f.cfg.MaxSpeed),
			DY:        f.uniform(-f.cfg.MaxSpeed/4, f.cfg.MaxSpeed/4),
			RX:        f.uniform(f.cfg.MinRadius, f.cfg.MaxRadius),
			RY:        f.uniform(f.cfg.MinRadius, f.cfg.MaxRadius),
			Intensity: f.uniform(f.cfg.MinIntensity, f.cfg.MaxIntensity),
		})
	}
	f.batchDate = midnight(now.UTC())
}

func (f *Field) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*f.rng.Float64()
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
