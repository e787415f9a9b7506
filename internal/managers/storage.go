package managers

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/storage/csvfile"
	"github.com/chrissnell/suntracker/internal/storage/sqlite"
	"github.com/chrissnell/suntracker/internal/storage/timescaledb"
	"github.com/chrissnell/suntracker/internal/types"
	"github.com/chrissnell/suntracker/pkg/config"
)

// healthInterval is how often storage backends are health checked.
const healthInterval = time.Minute

// RecordSource reads stored records back.
type RecordSource interface {
	Records(ctx context.Context, runID string) ([]types.Record, error)
}

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines           []StorageEngine
	RecordDistributor chan types.Record
	Health            *storage.HealthManager

	closeOnce sync.Once
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing records to the engine
type StorageEngine struct {
	Name   string
	Engine storage.StorageEngineInterface
	C      chan<- types.Record
}

// NewStorageManager creates a StorageManager object, populated with all
// configured StorageEngines. Call Start once every engine is added.
func NewStorageManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider) (*StorageManager, error) {
	s := &StorageManager{
		RecordDistributor: make(chan types.Record, 20),
		Health:            storage.NewHealthManager(),
	}

	sd, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load storage configuration: %w", err)
	}

	if sd.SQLite != nil {
		engine, err := sqlite.New(ctx, sd.SQLite.Path)
		if err != nil {
			return s, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		s.AddEngine(ctx, wg, "sqlite", engine)
	}

	if sd.TimescaleDB != nil {
		engine, err := timescaledb.New(ctx, sd.TimescaleDB.ConnectionString)
		if err != nil {
			return s, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		s.AddEngine(ctx, wg, "timescaledb", engine)
	}

	if sd.CSV != nil {
		engine, err := csvfile.New(sd.CSV.Path)
		if err != nil {
			return s, fmt.Errorf("could not add CSV storage backend: %w", err)
		}
		s.AddEngine(ctx, wg, "csv", engine)
	}

	return s, nil
}

// AddEngine starts engine and adds it to the fan-out. Engines that can
// report their health are monitored.
func (s *StorageManager) AddEngine(ctx context.Context, wg *sync.WaitGroup, name string, engine storage.StorageEngineInterface) {
	se := StorageEngine{
		Name:   name,
		Engine: engine,
		C:      engine.StartStorageEngine(ctx, wg),
	}
	s.Engines = append(s.Engines, se)

	if checker, ok := engine.(storage.HealthChecker); ok {
		storage.StartHealthMonitor(ctx, s.Health, name, checker, healthInterval)
	}
}

// Start runs the record distributor.
func (s *StorageManager) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go s.startRecordDistributor(ctx, wg)
}

// GetRecordDistributor returns the record distributor channel
func (s *StorageManager) GetRecordDistributor() chan<- types.Record {
	return s.RecordDistributor
}

// RecordSource returns the first engine that can read records back, or nil.
func (s *StorageManager) RecordSource() RecordSource {
	for _, e := range s.Engines {
		if src, ok := e.Engine.(RecordSource); ok {
			return src
		}
	}
	return nil
}

// CloseDistributor tells the distributor that no more records are coming.
// The engines drain and stop after it.
func (s *StorageManager) CloseDistributor() {
	s.closeOnce.Do(func() { close(s.RecordDistributor) })
}

// Close releases engines that hold connections. Call it after the engines
// have stopped.
func (s *StorageManager) Close() error {
	var firstErr error
	for _, e := range s.Engines {
		if _, isFile := e.Engine.(*csvfile.Storage); isFile {
			// Closed by its own engine loop.
			continue
		}
		if c, ok := e.Engine.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("closing %s: %w", e.Name, err)
			}
		}
	}
	return firstErr
}

// startRecordDistributor receives records from the experiment runner and fans them out to the various
// storage backends
func (s *StorageManager) startRecordDistributor(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		for _, e := range s.Engines {
			close(e.C)
		}
	}()

	recordCount := 0
	for {
		select {
		case r, ok := <-s.RecordDistributor:
			if !ok {
				log.Infof("record distributor finished after %d records", recordCount)
				return
			}
			recordCount++

			for _, e := range s.Engines {
				select {
				case e.C <- r:
				case <-ctx.Done():
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
