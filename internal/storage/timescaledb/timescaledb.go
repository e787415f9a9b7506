// Package timescaledb stores reward records in a TimescaleDB hypertable.
package timescaledb

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/chrissnell/suntracker/internal/database"
	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/types"
)

// batchSize is the number of records inserted per statement.
const batchSize = 200

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB

	mu      sync.Mutex
	pending []types.Record
}

// StartStorageEngine creates a goroutine loop to receive records and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Record {
	log.Info("starting TimescaleDB storage engine...")
	recordChan := make(chan types.Record, 10)
	wg.Add(1)
	go storage.ProcessRecords(ctx, wg, recordChan, t.StoreRecord, t.Flush, "timescaledb")
	return recordChan
}

// StoreRecord queues a record and inserts the queue once it is a full batch.
func (t *Storage) StoreRecord(r types.Record) error {
	t.mu.Lock()
	t.pending = append(t.pending, r)
	full := len(t.pending) >= batchSize
	t.mu.Unlock()

	if full {
		return t.Flush()
	}
	return nil
}

// Flush inserts every queued record.
func (t *Storage) Flush() error {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := t.TimescaleDBConn.CreateInBatches(batch, batchSize).Error; err != nil {
		log.Error("could not store records:", err)
		return err
	}
	return nil
}

// Records returns every stored record of a run.
func (t *Storage) Records(ctx context.Context, runID string) ([]types.Record, error) {
	var records []types.Record
	err := t.TimescaleDBConn.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("agent, instance, episode, chunk").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error querying database for run %s: %w", runID, err)
	}
	return records, nil
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	t := &Storage{TimescaleDBConn: db}

	for _, stmt := range setupStatements {
		log.Infof("creating %s...", stmt.name)
		if err := db.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			log.Warnf("warning: could not create %s", stmt.name)
			return nil, fmt.Errorf("creating %s: %w", stmt.name, err)
		}
	}

	return t, nil
}
