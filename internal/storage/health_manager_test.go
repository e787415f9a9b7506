package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthManager(t *testing.T) {
	hm := NewHealthManager()
	assert.False(t, hm.IsHealthy("sqlite", time.Minute))

	hm.UpdateHealth("sqlite", CreateHealthData(StatusHealthy, "ok", nil))
	hm.UpdateHealth("csv", CreateHealthData(StatusUnhealthy, "write failed", errors.New("disk full")))

	assert.True(t, hm.IsHealthy("sqlite", time.Minute))
	assert.False(t, hm.IsHealthy("csv", time.Minute))

	csv, ok := hm.GetHealth("csv")
	assert.True(t, ok)
	assert.Equal(t, "disk full", csv.Error)

	all := hm.GetAllHealth()
	assert.Len(t, all, 2)
	delete(all, "sqlite")
	_, ok = hm.GetHealth("sqlite")
	assert.True(t, ok, "GetAllHealth returns a copy")

	stale := CreateHealthData(StatusHealthy, "ok", nil)
	stale.LastCheck = time.Now().Add(-time.Hour)
	hm.UpdateHealth("timescaledb", stale)
	assert.False(t, hm.IsHealthy("timescaledb", time.Minute))
}
