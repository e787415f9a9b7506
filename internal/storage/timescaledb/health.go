package timescaledb

import (
	"github.com/chrissnell/suntracker/internal/storage"
)

// CheckHealth pings the database and runs a trivial query.
func (t *Storage) CheckHealth() *storage.HealthData {
	if t.TimescaleDBConn == nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "No database connection", nil)
	}

	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "Failed to get underlying database connection", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "Database ping failed", err)
	}

	var result int
	if err := t.TimescaleDBConn.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "Database query test failed", err)
	}
	return storage.CreateHealthData(storage.StatusHealthy, "TimescaleDB operational - ping: OK, query test: OK", nil)
}
