package ingest

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

type sqliteReader struct{}

func (sqliteReader) Format() string { return "sqlite" }

func (sqliteReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".db") || strings.HasSuffix(name, ".sqlite")
}

var identPat = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (sqliteReader) Read(path string, opts Options) (*dataset.Dataset, error) {
	if opts.Table == "" {
		return nil, fmt.Errorf("table parameter required for SQLite database files")
	}
	if !identPat.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %q", opts.Table))
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", opts.Table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	var records [][]string
	ptrs := make([]any, len(header))
	cells := make([]any, len(header))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(records)+1, err)
		}
		rec := make([]string, len(header))
		for i, c := range cells {
			rec[i] = stringifySQL(c)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return buildDataset(header, records)
}

func stringifySQL(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
