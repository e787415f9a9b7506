package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/types"
)

func TestStorageEngine(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "rewards.db"))
	require.NoError(t, err)
	defer s.Close()

	start := time.Date(2020, 5, 1, 19, 0, 0, 0, time.UTC)
	var sent []types.Record
	for chunk := 2; chunk >= 0; chunk-- {
		sent = append(sent, types.Record{
			RunID:      "run-1",
			Time:       start.Add(time.Duration(chunk) * time.Hour),
			Experiment: "nola",
			Agent:      "optimal",
			DualAxis:   true,
			Latitude:   30.03,
			Longitude:  -90.05,
			Chunk:      chunk,
			Reward:     float64(100 * chunk),
			DirectWh:   12.5,
		})
	}
	sent = append(sent, types.Record{RunID: "run-2", Time: start, Agent: "random"})

	var wg sync.WaitGroup
	ch := s.StartStorageEngine(ctx, &wg)
	for _, r := range sent {
		ch <- r
	}
	close(ch)
	wg.Wait()

	got, err := s.Records(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, i, r.Chunk, "ordered by chunk")
		assert.True(t, start.Add(time.Duration(i)*time.Hour).Equal(r.Time))
		assert.True(t, r.DualAxis)
		assert.Equal(t, -90.05, r.Longitude)
		assert.Equal(t, 12.5, r.DirectWh)
	}

	none, err := s.Records(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStorageFlushesFullBatches(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, filepath.Join(t.TempDir(), "rewards.db"))
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < batchSize+1; i++ {
		require.NoError(t, s.StoreRecord(types.Record{RunID: "run", Chunk: i, Time: time.Unix(0, 0)}))
	}

	got, err := s.Records(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, got, batchSize, "the last record waits for the next flush")

	require.NoError(t, s.Flush())
	got, err = s.Records(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, got, batchSize+1)
}

func TestCheckHealth(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "rewards.db"))
	require.NoError(t, err)

	assert.Equal(t, storage.StatusHealthy, s.CheckHealth().Status)
	require.NoError(t, s.Close())
	assert.Equal(t, storage.StatusUnhealthy, s.CheckHealth().Status)
}
