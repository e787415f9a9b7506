package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/storage/sqlite"
	"github.com/chrissnell/suntracker/internal/storage/timescaledb"
	"github.com/chrissnell/suntracker/internal/types"
)

type exportFormat string

const (
	formatCSV     exportFormat = "csv"
	formatJSON    exportFormat = "json"
	formatMsgpack exportFormat = "msgpack"
)

// recordSource is implemented by every storage backend that can read
// records back.
type recordSource interface {
	Records(ctx context.Context, runID string) ([]types.Record, error)
	Close() error
}

func main() {
	var (
		sqlitePath = flag.String("sqlite", "", "Path to a SQLite result database")
		connString = flag.String("timescaledb", "", "TimescaleDB connection string")
		runID      = flag.String("run", "", "Run ID to export (required)")
		formatStr  = flag.String("format", "csv", "Export format: csv, json, or msgpack")
		output     = flag.String("output", "rewards", "Output file base name (extension added automatically)")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	format := exportFormat(*formatStr)
	switch format {
	case formatCSV, formatJSON, formatMsgpack:
	default:
		log.Fatalf("Invalid format: %s. Must be csv, json, or msgpack", *formatStr)
	}
	if *runID == "" || (*sqlitePath == "") == (*connString == "") {
		fmt.Fprintf(os.Stderr, "Usage: %s -run <id> (-sqlite <results.db> | -timescaledb <conn>)\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	var src recordSource
	var err error
	if *sqlitePath != "" {
		src, err = sqlite.New(ctx, *sqlitePath)
	} else {
		src, err = timescaledb.New(ctx, *connString)
	}
	if err != nil {
		log.Fatalf("Failed to open result storage: %v", err)
	}
	defer src.Close()

	records, err := src.Records(ctx, *runID)
	if err != nil {
		log.Fatalf("Failed to read records: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("No records found for run %s", *runID)
	}
	log.Infof("Found %d records to export", len(records))

	filename := *output + "." + string(format)
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	if err := export(file, records, format); err != nil {
		file.Close()
		log.Fatalf("Export failed: %v", err)
	}
	if err := file.Close(); err != nil {
		log.Fatalf("Failed to close %s: %v", filename, err)
	}

	log.Infof("Exported %d records to %s", len(records), filename)
}

func export(w io.Writer, records []types.Record, format exportFormat) error {
	switch format {
	case formatCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write(types.CSVHeader()); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		for _, r := range records {
			if err := writer.Write(r.CSVRow()); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		writer.Flush()
		return writer.Error()
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case formatMsgpack:
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json")
		return encoder.Encode(records)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
