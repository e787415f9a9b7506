package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/types"
)

// HealthChecker defines the interface for storage backends to implement health checks
type HealthChecker interface {
	CheckHealth() *HealthData
}

// StartHealthMonitor records one health check right away, then keeps
// checking every interval until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, hm *HealthManager, storageType string, checker HealthChecker, interval time.Duration) {
	updateHealth := func() {
		health := checker.CheckHealth()
		hm.UpdateHealth(storageType, health)
		log.Debugf("updated %s health status: %s", storageType, health.Status)
	}

	updateHealth()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				updateHealth()
			case <-ctx.Done():
				log.Infof("stopping %s health monitor", storageType)
				return
			}
		}
	}()
}

// ProcessRecords feeds records from recordChan to processor until the channel
// is closed or ctx is cancelled. The caller must wg.Add(1) before starting it.
// flush, when not nil, runs once on the way out.
func ProcessRecords(ctx context.Context, wg *sync.WaitGroup, recordChan <-chan types.Record, processor func(types.Record) error, flush func() error, name string) {
	defer wg.Done()
	if flush != nil {
		defer func() {
			if err := flush(); err != nil {
				log.Errorf("%s flush error: %v", name, err)
			}
		}()
	}

	for {
		select {
		case r, ok := <-recordChan:
			if !ok {
				log.Infof("%s record channel closed", name)
				return
			}
			if err := processor(r); err != nil {
				log.Errorf("%s record processor error: %v", name, err)
			}
		case <-ctx.Done():
			log.Infof("cancellation request received. Cancelling %s record processor", name)
			return
		}
	}
}

// CreateHealthData creates a basic health data structure
func CreateHealthData(status, message string, err error) *HealthData {
	health := &HealthData{
		LastCheck: time.Now(),
		Status:    status,
		Message:   message,
	}

	if err != nil {
		health.Error = err.Error()
	}

	return health
}
