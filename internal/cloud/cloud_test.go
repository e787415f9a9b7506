package cloud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/suntracker/pkg/solar"
)

func TestCloudMoved(t *testing.T) {
	c := Cloud{X: 10, Y: 5, DX: 2, DY: -1}
	got := c.Moved(10)
	assert.Equal(t, 11.0, got.X)
	assert.Equal(t, 4.5, got.Y)
	assert.Equal(t, 10.0, c.X, "Moved must not modify the receiver")
}

func TestOcclusion(t *testing.T) {
	zenith := solar.SunPosition{AltitudeDeg: 90, AzimuthDeg: 0}
	x, y := SkyPoint(zenith, 64)
	require.InDelta(t, 32.0, x, 1e-9)
	require.InDelta(t, 32.0, y, 1e-9)

	tests := []struct {
		name   string
		clouds []Cloud
		sun    solar.SunPosition
		want   float64
	}{
		{"no clouds", nil, zenith, 0},
		{"centered cloud", []Cloud{{X: 32, Y: 32, RX: 5, RY: 5, Intensity: 0.6}}, zenith, 0.6},
		{"halfway to edge", []Cloud{{X: 32, Y: 29.5, RX: 5, RY: 5, Intensity: 0.6}}, zenith, 0.3},
		{"outside ellipse", []Cloud{{X: 10, Y: 32, RX: 5, RY: 5, Intensity: 0.6}}, zenith, 0},
		{"overlap saturates", []Cloud{
			{X: 32, Y: 32, RX: 5, RY: 5, Intensity: 0.7},
			{X: 32, Y: 32, RX: 8, RY: 3, Intensity: 0.7},
		}, zenith, 1},
		{"sun below horizon", []Cloud{{X: 32, Y: 0, RX: 50, RY: 50, Intensity: 1}}, solar.SunPosition{AltitudeDeg: -3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Occlusion(tt.clouds, tt.sun, 64), 1e-9)
		})
	}
}

func TestFieldIsReproducible(t *testing.T) {
	start := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)

	run := func() [][]Cloud {
		f, err := NewField(DefaultConfig(), 42)
		require.NoError(t, err)
		f.Reset(start)
		var out [][]Cloud
		for now := start; now.Before(start.Add(48 * time.Hour)); now = now.Add(30 * time.Minute) {
			f.Advance(now.Add(30*time.Minute), 30)
			out = append(out, f.Clouds())
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestFieldRegeneratesOncePerDay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GenerationHour = 6
	f, err := NewField(cfg, 7)
	require.NoError(t, err)

	day := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	f.Reset(day.Add(10 * time.Hour))
	first := f.Clouds()
	require.Len(t, first, cfg.Count)

	// Later the same day the batch only drifts
	f.Advance(day.Add(10*time.Hour+20*time.Minute), 20)
	drifted := f.Clouds()
	for i := range first {
		assert.InDelta(t, first[i].X+first[i].DX, drifted[i].X, 1e-9)
		assert.Equal(t, first[i].RX, drifted[i].RX)
	}

	// Before the generation hour on the next day nothing new appears
	f.Advance(day.Add(29*time.Hour), 20)
	assert.Equal(t, first[0].RX, f.Clouds()[0].RX)

	// At the generation hour a new batch replaces it
	f.Advance(day.Add(30*time.Hour), 20)
	assert.NotEqual(t, first[0].RX, f.Clouds()[0].RX)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative count", func(c *Config) { c.Count = -1 }},
		{"bad hour", func(c *Config) { c.GenerationHour = 24 }},
		{"zero dims", func(c *Config) { c.ImageDims = 0 }},
		{"inverted radius", func(c *Config) { c.MinRadius, c.MaxRadius = 5, 2 }},
		{"intensity above one", func(c *Config) { c.MaxIntensity = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			_, err := NewField(cfg, 1)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
