package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/suntracker/internal/types"
)

func testRecords() []types.Record {
	at := time.Date(2020, 6, 1, 14, 0, 0, 0, time.UTC)
	return []types.Record{
		{RunID: "run", Agent: "optimal", Time: at, Chunk: 0, Reward: 410.5},
		{RunID: "run", Agent: "optimal", Time: at.Add(time.Hour), Chunk: 1, Reward: 402.25},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export(&buf, testRecords(), formatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.CSVHeader(), rows[0])
	assert.Equal(t, testRecords()[1].CSVRow(), rows[2])
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export(&buf, testRecords(), formatJSON))

	var got []types.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testRecords(), got)
}

func TestExportMsgpack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export(&buf, testRecords(), formatMsgpack))

	var got []map[string]any
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "optimal", got[0]["agent"])
}

func TestExportUnknownFormat(t *testing.T) {
	assert.Error(t, export(&bytes.Buffer{}, testRecords(), "xml"))
}
