// Package sqlite stores reward records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/types"
)

// batchSize is the number of records written per transaction.
const batchSize = 500

const createTableSQL = `
CREATE TABLE IF NOT EXISTS rewards (
    run_id TEXT NOT NULL,
    time TEXT NOT NULL,
    experiment TEXT NOT NULL,
    agent TEXT NOT NULL,
    dual_axis INTEGER NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    instance INTEGER NOT NULL,
    episode INTEGER NOT NULL,
    chunk INTEGER NOT NULL,
    reward REAL NOT NULL,
    direct_wh REAL NOT NULL DEFAULT 0,
    diffuse_wh REAL NOT NULL DEFAULT 0,
    reflective_wh REAL NOT NULL DEFAULT 0,
    motion_wh REAL NOT NULL DEFAULT 0
)`

const createIndexSQL = `
CREATE INDEX IF NOT EXISTS rewards_run_idx ON rewards (run_id, agent, instance, episode, chunk)`

const insertSQL = `
INSERT INTO rewards (run_id, time, experiment, agent, dual_axis, latitude, longitude,
    instance, episode, chunk, reward, direct_wh, diffuse_wh, reflective_wh, motion_wh)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRunSQL = `
SELECT run_id, time, experiment, agent, dual_axis, latitude, longitude,
    instance, episode, chunk, reward, direct_wh, diffuse_wh, reflective_wh, motion_wh
FROM rewards
WHERE run_id = ?
ORDER BY agent, instance, episode, chunk`

// Storage holds the connection for a SQLite storage backend. Records are
// buffered and written in batches; pending records are written when the
// engine stops.
type Storage struct {
	db *sql.DB

	mu      sync.Mutex
	pending []types.Record
}

// New opens (creating if needed) the SQLite database at path.
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create rewards table: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive records and write
// them to SQLite
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Record {
	log.Info("starting SQLite storage engine...")
	recordChan := make(chan types.Record, 10)
	wg.Add(1)
	go storage.ProcessRecords(ctx, wg, recordChan, s.StoreRecord, s.Flush, "sqlite")
	return recordChan
}

// StoreRecord queues r and writes the queue once it reaches a full batch.
func (s *Storage) StoreRecord(r types.Record) error {
	s.mu.Lock()
	s.pending = append(s.pending, r)
	full := len(s.pending) >= batchSize
	s.mu.Unlock()

	if full {
		return s.Flush()
	}
	return nil
}

// Flush writes every queued record in one transaction.
func (s *Storage) Flush() error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range batch {
		_, err := stmt.Exec(r.RunID, r.Time.UTC().Format(time.RFC3339Nano), r.Experiment, r.Agent, r.DualAxis,
			r.Latitude, r.Longitude, r.Instance, r.Episode, r.Chunk, r.Reward,
			r.DirectWh, r.DiffuseWh, r.ReflectWh, r.MotionWh)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("could not store record: %w", err)
		}
	}
	return tx.Commit()
}

// Records returns every stored record of a run, ordered by agent, instance,
// episode and chunk.
func (s *Storage) Records(ctx context.Context, runID string) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRunSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var r types.Record
		var ts string
		err := rows.Scan(&r.RunID, &ts, &r.Experiment, &r.Agent, &r.DualAxis, &r.Latitude, &r.Longitude,
			&r.Instance, &r.Episode, &r.Chunk, &r.Reward, &r.DirectWh, &r.DiffuseWh, &r.ReflectWh, &r.MotionWh)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward row: %w", err)
		}
		if r.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("bad time %q in rewards: %w", ts, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CheckHealth pings the database.
func (s *Storage) CheckHealth() *storage.HealthData {
	if err := s.db.Ping(); err != nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "SQLite ping failed", err)
	}
	return storage.CreateHealthData(storage.StatusHealthy, "SQLite operational", nil)
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}
