// Package ingest loads tabular files into datasets. A reader registry keyed
// on filename extension covers CSV/TSV, JSON record arrays, XLSX workbooks,
// and SQLite databases. Every reader returns a typed dataset plus metadata;
// the rest of the pipeline never sees file formats.
package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

// Metadata describes what was loaded.
type Metadata struct {
	Path    string
	Format  string
	Rows    int
	Columns int
}

// Options carries reader-specific parameters.
type Options struct {
	// Table selects the table for SQLite files. Required for .db/.sqlite.
	Table string
	// Sheet selects the worksheet for XLSX files, 1-based. 0 means first.
	Sheet int
}

// Reader loads one file format.
type Reader interface {
	CanRead(filename string) bool
	Read(path string, opts Options) (*dataset.Dataset, error)
	Format() string
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(csvReader{})
	Register(jsonReader{})
	Register(xlsxReader{})
	Register(sqliteReader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// ReadFile selects a reader by filename and loads the dataset.
func ReadFile(path string, opts Options) (*dataset.Dataset, Metadata, error) {
	for _, r := range registry {
		if !r.CanRead(path) {
			continue
		}
		ds, err := r.Read(path, opts)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("read %s: %w", r.Format(), err)
		}
		meta := Metadata{Path: path, Format: r.Format(), Rows: ds.NumRows(), Columns: ds.NumCols()}
		return ds, meta, nil
	}
	var formats []string
	for _, r := range registry {
		formats = append(formats, r.Format())
	}
	sort.Strings(formats)
	return nil, Metadata{}, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupported, path, strings.Join(formats, ", "))
}

// buildDataset turns raw string records into typed columns. Per column the
// narrowest kind every non-empty value parses as wins: integer, float,
// boolean, timestamp, then text. Empty cells become nulls.
func buildDataset(header []string, rows [][]string) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{}
	seen := make(map[string]int)
	for j, rawName := range header {
		name := strings.TrimSpace(rawName)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 1
		}
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		col := buildColumn(name, cells)
		if err := ds.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func buildColumn(name string, cells []string) dataset.Column {
	kind := inferKind(cells)
	vals := make([]dataset.Value, len(cells))
	for i, s := range cells {
		if s == "" {
			vals[i] = dataset.NullValue()
			continue
		}
		switch kind {
		case dataset.KindInt:
			n, _ := strconv.ParseInt(s, 10, 64)
			vals[i] = dataset.IntValue(n)
		case dataset.KindFloat:
			f, _ := strconv.ParseFloat(s, 64)
			vals[i] = dataset.FloatValue(f)
		case dataset.KindBool:
			b, _ := strconv.ParseBool(strings.ToLower(s))
			vals[i] = dataset.BoolValue(b)
		case dataset.KindTime:
			t, _ := parseTime(s)
			vals[i] = dataset.TimeValue(t)
		default:
			vals[i] = dataset.TextValue(s)
		}
	}
	return dataset.Column{Name: name, Kind: kind, Values: vals}
}

func inferKind(cells []string) dataset.Kind {
	isInt, isFloat, isBool, isTime := true, true, true, true
	nonEmpty := 0
	for _, s := range cells {
		if s == "" {
			continue
		}
		nonEmpty++
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(strings.ToLower(s)); err != nil {
				isBool = false
			}
		}
		if isTime {
			if _, ok := parseTime(s); !ok {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isBool && !isTime {
			return dataset.KindText
		}
	}
	if nonEmpty == 0 {
		return dataset.KindText
	}
	switch {
	case isInt:
		return dataset.KindInt
	case isFloat:
		return dataset.KindFloat
	case isBool:
		return dataset.KindBool
	case isTime:
		return dataset.KindTime
	}
	return dataset.KindText
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02",
	"2006/01/02", "01/02/2006", "02/01/2006",
}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
