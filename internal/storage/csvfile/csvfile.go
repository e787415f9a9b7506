// Package csvfile writes reward records to a CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/types"
)

// Storage appends records to a CSV file. The file is truncated and given a
// header row when the storage is created.
type Storage struct {
	path   string
	file   *os.File
	writer *csv.Writer

	mu   sync.Mutex
	rows int
	err  error
}

// New creates the CSV file at path.
func New(path string) (*Storage, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(types.CSVHeader()); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &Storage{path: path, file: file, writer: writer}, nil
}

// StartStorageEngine creates a goroutine loop to receive records and write
// them to the file. The file is flushed and closed when the loop ends.
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Record {
	log.Infof("starting CSV storage engine, writing %s...", s.path)
	recordChan := make(chan types.Record, 10)
	wg.Add(1)
	go storage.ProcessRecords(ctx, wg, recordChan, s.StoreRecord, s.Close, "csv")
	return recordChan
}

// StoreRecord writes one row. Rows are buffered until Close.
func (s *Storage) StoreRecord(r types.Record) error {
	err := s.writer.Write(r.CSVRow())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return err
	}
	s.rows++
	return nil
}

// Close flushes buffered rows and closes the file.
func (s *Storage) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// CheckHealth reports the last write error, if any.
func (s *Storage) CheckHealth() *storage.HealthData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return storage.CreateHealthData(storage.StatusUnhealthy, "CSV write failed", s.err)
	}
	return storage.CreateHealthData(storage.StatusHealthy, fmt.Sprintf("%d rows written to %s", s.rows, s.path), nil)
}
