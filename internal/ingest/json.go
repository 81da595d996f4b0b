package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

type jsonReader struct{}

func (jsonReader) Format() string { return "json" }

func (jsonReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// Read expects an array of flat record objects. Column order follows first
// appearance across records; missing keys become nulls.
func (jsonReader) Read(path string, _ Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse: expected an array of records: %w", err)
	}
	var header []string
	seen := make(map[string]bool)
	for _, rec := range records {
		// Objects are unordered; collect new keys sorted per record for a
		// deterministic column order.
		var fresh []string
		for k := range rec {
			if !seen[k] {
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		for _, k := range fresh {
			seen[k] = true
			header = append(header, k)
		}
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for j, k := range header {
			row[j] = stringifyJSON(rec[k])
		}
		rows[i] = row
	}
	return buildDataset(header, rows)
}

func stringifyJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case json.Number:
		return x.String()
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
