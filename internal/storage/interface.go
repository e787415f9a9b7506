// Package storage defines interfaces and implementations for experiment result storage backends.
package storage

import (
	"context"
	"sync"

	"github.com/chrissnell/suntracker/internal/types"
)

// StorageEngineInterface is an interface that provides a few standardized
// methods for various storage backends
type StorageEngineInterface interface {
	// StartStorageEngine returns the channel the engine reads records from.
	// The engine stops when the channel is closed or ctx is cancelled.
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.Record
}
