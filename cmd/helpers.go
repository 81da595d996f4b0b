package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/ingest"
)

var (
	flagTable string
	flagSheet int
)

// loadDataset ingests the given path honoring the shared --table/--sheet
// flags and reports what was loaded.
func loadDataset(path string) (*dataset.Dataset, error) {
	ds, meta, err := ingest.ReadFile(path, ingest.Options{Table: flagTable, Sheet: flagSheet})
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %s: %d rows, %d columns (%s)\n", meta.Path, meta.Rows, meta.Columns, meta.Format)
	return ds, nil
}

// diagLogger returns the diagnostic sink components receive: stderr when
// --debug is set, discard otherwise.
func diagLogger() *log.Logger {
	if debug {
		return log.New(os.Stderr, "autotab: ", 0)
	}
	return log.New(io.Discard, "", 0)
}

// writeOutput writes ds as CSV to path, or prints a head preview when path
// is empty.
func writeOutput(ds *dataset.Dataset, path string) error {
	if path == "" {
		fmt.Print(ds.String())
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := ds.WriteCSV(f); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %d rows to %s\n", ds.NumRows(), path)
	return nil
}
