package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectTiltFactorPeaksWhenFacingSun(t *testing.T) {
	sun := SunPosition{AltitudeDeg: 55, AzimuthDeg: 140}
	ns, ew, ok := PoseFacing(sun.Vector())
	assert.True(t, ok)
	assert.InDelta(t, 1.0, DirectTiltFactor(sun, ns, ew), 1e-12)

	// Tipping the panel away from the sun along one axis lowers the factor
	prev := 1.0
	for d := 1.0; ns+d <= 90 && prev > 0; d++ {
		f := DirectTiltFactor(sun, ns+d, ew)
		assert.Less(t, f, prev, "offset %v", d)
		prev = f
	}
}

func TestDirectTiltFactorMonotoneInSeparation(t *testing.T) {
	// Sun straight up, panel tipped further and further along one axis
	sun := SunPosition{AltitudeDeg: 90}
	prev := DirectTiltFactor(sun, 0, 0)
	assert.InDelta(t, 1.0, prev, 1e-12)
	for ew := 5.0; ew <= 90; ew += 5 {
		f := DirectTiltFactor(sun, 0, ew)
		assert.Less(t, f, prev)
		prev = f
	}
	assert.InDelta(t, 0.0, prev, 1e-12)
}

func TestDirectTiltFactorNeverNegative(t *testing.T) {
	sun := SunPosition{AltitudeDeg: 10, AzimuthDeg: 90}
	assert.Zero(t, DirectTiltFactor(sun, 0, -90))
}

func TestDiffuseAndReflectiveTiltFactors(t *testing.T) {
	tests := []struct {
		name           string
		ns             float64
		ew             float64
		wantDiffuse    float64
		wantReflective float64
	}{
		{"flat", 0, 0, 1, 0},
		{"one axis vertical", 0, 90, 0.5, 0.5},
		{"both axes vertical", 90, -90, 0, 1},
		{"sixty degrees", 60, 0, 0.75, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Tilt(SunPosition{AltitudeDeg: 45}, tt.ns, tt.ew)
			assert.InDelta(t, tt.wantDiffuse, f.Diffuse, 1e-12)
			assert.InDelta(t, tt.wantReflective, f.Reflective, 1e-12)
			assert.InDelta(t, DiffuseTiltFactor(-tt.ns, -tt.ew), f.Diffuse, 1e-12)
		})
	}
}
