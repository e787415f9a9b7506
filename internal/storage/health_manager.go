package storage

import (
	"sync"
	"time"
)

// Health statuses reported by storage backends.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthData is the last health check of one storage backend.
type HealthData struct {
	LastCheck time.Time `json:"last_check"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// HealthManager manages storage health status in memory
type HealthManager struct {
	mu     sync.RWMutex
	health map[string]HealthData
}

// NewHealthManager creates a new health manager
func NewHealthManager() *HealthManager {
	return &HealthManager{
		health: make(map[string]HealthData),
	}
}

// UpdateHealth updates the health status for a storage backend
func (hm *HealthManager) UpdateHealth(storageType string, health *HealthData) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.health[storageType] = *health
}

// GetHealth retrieves the health status for a specific storage backend
func (hm *HealthManager) GetHealth(storageType string) (HealthData, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	health, exists := hm.health[storageType]
	return health, exists
}

// GetAllHealth retrieves all storage health statuses
func (hm *HealthManager) GetAllHealth() map[string]HealthData {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	result := make(map[string]HealthData, len(hm.health))
	for k, v := range hm.health {
		result[k] = v
	}
	return result
}

// IsHealthy checks if a storage backend is healthy
func (hm *HealthManager) IsHealthy(storageType string, maxAge time.Duration) bool {
	health, exists := hm.GetHealth(storageType)
	if !exists {
		return false
	}

	// Stale health data counts as unhealthy
	if time.Since(health.LastCheck) > maxAge {
		return false
	}

	return health.Status == StatusHealthy
}
