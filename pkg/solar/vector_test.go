package solar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSunVectorIsUnit(t *testing.T) {
	for alt := -90.0; alt <= 90; alt += 7.5 {
		for az := 0.0; az < 360; az += 11.25 {
			v := SunVector(alt, az)
			assert.InDelta(t, 1.0, r3.Norm(v), 1e-9, "alt=%v az=%v", alt, az)
		}
	}
}

func TestSunVectorDirections(t *testing.T) {
	tests := []struct {
		name string
		alt  float64
		az   float64
		want Vec
	}{
		{"zenith", 90, 123, Vec{X: 0, Y: 0, Z: 1}},
		{"north horizon", 0, 0, Vec{X: 1, Y: 0, Z: 0}},
		{"east horizon", 0, 90, Vec{X: 0, Y: 1, Z: 0}},
		{"south horizon", 0, 180, Vec{X: -1, Y: 0, Z: 0}},
		{"west horizon", 0, 270, Vec{X: 0, Y: -1, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunVector(tt.alt, tt.az)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestPanelNormal(t *testing.T) {
	assert.Equal(t, Up, PanelNormal(0, 0))

	for ns := -90.0; ns <= 90; ns += 10 {
		for ew := -90.0; ew <= 90; ew += 10 {
			v := PanelNormal(ns, ew)
			assert.InDelta(t, 1.0, r3.Norm(v), 1e-9, "ns=%v ew=%v", ns, ew)
		}
	}

	// Fully tilted on both axes the panel faces the horizon between them
	corner := PanelNormal(90, 90)
	assert.InDelta(t, math.Sqrt2/2, corner.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, corner.Y, 1e-9)
	assert.InDelta(t, 0, corner.Z, 1e-9)

	sun := SunPosition{AltitudeDeg: 5, AzimuthDeg: 45}
	assert.InDelta(t, math.Cos(5*math.Pi/180), DirectTiltFactor(sun, 90, 90), 1e-9)
}

func TestPoseFacingInvertsPanelNormal(t *testing.T) {
	tests := []struct {
		name string
		ns   float64
		ew   float64
	}{
		{"flat", 0, 0},
		{"north", 30, 0},
		{"south east", -20, 45},
		{"steep west", 10, -80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, ew, ok := PoseFacing(PanelNormal(tt.ns, tt.ew))
			assert.True(t, ok)
			assert.InDelta(t, tt.ns, ns, 1e-9)
			assert.InDelta(t, tt.ew, ew, 1e-9)
		})
	}

	_, _, ok := PoseFacing(SunVector(-5, 180))
	assert.False(t, ok)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    Vec
		b    Vec
		want float64
	}{
		{"parallel", Vec{X: 1, Y: 2, Z: 3}, Vec{X: 2, Y: 4, Z: 6}, 1},
		{"orthogonal", Vec{X: 1}, Vec{Y: 1}, 0},
		{"opposite", Vec{Z: 1}, Vec{Z: -3}, -1},
		{"zero vector", Vec{}, Vec{Z: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-12)
		})
	}
}
