// Package clean applies ordered heuristic cleaning passes to a dataset:
// duplicate removal, per-kind missing-value imputation, text normalization,
// and type coercion. Every action taken is recorded in an operation log.
package clean

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

// Config toggles individual cleaning steps. Steps always run in the fixed
// order: duplicates, missing values, text normalization, type fixes.
type Config struct {
	RemoveDuplicates bool
	HandleMissing    bool
	NormalizeText    bool
	FixTypes         bool
}

// DefaultConfig enables every step, the behavior when no config is given.
func DefaultConfig() Config {
	return Config{RemoveDuplicates: true, HandleMissing: true, NormalizeText: true, FixTypes: true}
}

// Cleaner performs the cleaning passes. One instance per call site; the
// operation log is owned by the instance and reset only on re-instantiation.
type Cleaner struct {
	log  []string
	diag *log.Logger
}

// New returns a Cleaner writing internal diagnostics to the given logger.
// A nil logger discards them.
func New(diag *log.Logger) *Cleaner {
	if diag == nil {
		diag = log.New(io.Discard, "", 0)
	}
	return &Cleaner{diag: diag}
}

// Log returns the operations performed so far, in order.
func (c *Cleaner) Log() []string { return c.log }

var (
	wsRun      = regexp.MustCompile(`\s+`)
	numericPat = regexp.MustCompile(`^-?\d+\.?\d*$`)
)

// timeKeywords mark columns coerced to timestamps by name.
var timeKeywords = []string{"date", "time", "datetime", "timestamp"}

// Clean returns a cleaned copy of ds. The input is never mutated.
func (c *Cleaner) Clean(ds *dataset.Dataset, cfg Config) *dataset.Dataset {
	out := ds.Clone()
	if cfg.RemoveDuplicates {
		out = c.removeDuplicates(out)
	}
	if cfg.HandleMissing {
		c.handleMissing(out)
	}
	if cfg.NormalizeText {
		c.normalizeText(out)
	}
	if cfg.FixTypes {
		c.fixTypes(out)
	}
	return out
}

// removeDuplicates drops exact-duplicate rows, keeping the first occurrence.
func (c *Cleaner) removeDuplicates(ds *dataset.Dataset) *dataset.Dataset {
	rows := ds.NumRows()
	seen := make(map[string]struct{}, rows)
	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		key := ds.RowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	removed := rows - len(keep)
	if removed == 0 {
		return ds
	}
	c.log = append(c.log, fmt.Sprintf("Removed %d duplicate rows", removed))
	return ds.SelectRows(keep)
}

// handleMissing imputes nulls per column: numeric columns take the median,
// text/categorical columns the mode (falling back to "Unknown"), timestamp
// columns carry the previous non-null value forward.
func (c *Cleaner) handleMissing(ds *dataset.Dataset) {
	for _, col := range ds.Columns() {
		if !hasNull(col) {
			continue
		}
		switch {
		case col.Kind.Numeric():
			med, ok := columnMedian(col)
			if !ok {
				continue
			}
			fill := dataset.FloatValue(med)
			if col.Kind == dataset.KindInt && med == float64(int64(med)) {
				fill = dataset.IntValue(int64(med))
			} else if col.Kind == dataset.KindInt {
				// Median of an even-length int column can be fractional;
				// the column widens to float.
				widenToFloat(ds, col.Name)
			}
			fillNulls(ds, col.Name, fill)
			c.log = append(c.log, fmt.Sprintf("Imputed missing values in '%s' with median: %s", col.Name, fill.String()))
		case col.Kind == dataset.KindText || col.Kind == dataset.KindCategorical:
			mode, ok := columnMode(col)
			if ok {
				fill := dataset.TextValue(mode)
				if col.Kind == dataset.KindCategorical {
					fill = dataset.CategoryValue(mode)
				}
				fillNulls(ds, col.Name, fill)
				c.log = append(c.log, fmt.Sprintf("Imputed missing values in '%s' with mode: %s", col.Name, mode))
			} else {
				fill := dataset.TextValue("Unknown")
				if col.Kind == dataset.KindCategorical {
					fill = dataset.CategoryValue("Unknown")
				}
				fillNulls(ds, col.Name, fill)
				c.log = append(c.log, fmt.Sprintf("Imputed missing values in '%s' with 'Unknown'", col.Name))
			}
		case col.Kind == dataset.KindTime:
			forwardFill(ds, col.Name)
			c.log = append(c.log, fmt.Sprintf("Forward filled missing values in '%s'", col.Name))
		}
	}
}

// normalizeText trims and collapses whitespace in every text column. Logged
// per column processed, even when nothing changed.
func (c *Cleaner) normalizeText(ds *dataset.Dataset) {
	for _, col := range ds.Columns() {
		if col.Kind != dataset.KindText {
			continue
		}
		vals := make([]dataset.Value, len(col.Values))
		for i, v := range col.Values {
			if v.Null || v.Kind() != dataset.KindText {
				vals[i] = v
				continue
			}
			s := wsRun.ReplaceAllString(strings.TrimSpace(v.Text()), " ")
			vals[i] = dataset.TextValue(s)
		}
		_ = ds.SetColumn(col.Name, col.Kind, vals)
		c.log = append(c.log, fmt.Sprintf("Normalized text in '%s'", col.Name))
	}
}

// fixTypes coerces columns whose name suggests a timestamp, and text columns
// whose values look numeric. Unparseable values become null; coercion never
// aborts the pass.
func (c *Cleaner) fixTypes(ds *dataset.Dataset) {
	for _, col := range ds.Columns() {
		lower := strings.ToLower(col.Name)
		if containsAny(lower, timeKeywords) {
			if col.Kind == dataset.KindTime {
				continue
			}
			vals := make([]dataset.Value, len(col.Values))
			parsed := 0
			for i, v := range col.Values {
				if v.Null {
					vals[i] = dataset.NullValue()
					continue
				}
				if t, ok := parseTimestamp(v.String()); ok {
					vals[i] = dataset.TimeValue(t)
					parsed++
				} else {
					vals[i] = dataset.NullValue()
				}
			}
			if parsed == 0 {
				c.diag.Printf("could not convert '%s' to datetime: no parseable values", col.Name)
				continue
			}
			_ = ds.SetColumn(col.Name, dataset.KindTime, vals)
			c.log = append(c.log, fmt.Sprintf("Converted '%s' to datetime", col.Name))
			continue
		}
		if col.Kind == dataset.KindText {
			if !mostlyNumeric(col) {
				continue
			}
			vals := make([]dataset.Value, len(col.Values))
			for i, v := range col.Values {
				if v.Null {
					vals[i] = dataset.NullValue()
					continue
				}
				if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64); err == nil {
					vals[i] = dataset.FloatValue(f)
				} else {
					vals[i] = dataset.NullValue()
				}
			}
			_ = ds.SetColumn(col.Name, dataset.KindFloat, vals)
			c.log = append(c.log, fmt.Sprintf("Converted '%s' to numeric", col.Name))
		}
	}
}

// mostlyNumeric samples up to the first 100 non-null values and reports
// whether strictly more than 80% match the numeric pattern.
func mostlyNumeric(col dataset.Column) bool {
	matched, total := 0, 0
	for _, v := range col.Values {
		if v.Null {
			continue
		}
		total++
		if numericPat.MatchString(strings.TrimSpace(v.Text())) {
			matched++
		}
		if total == 100 {
			break
		}
	}
	if total == 0 {
		return false
	}
	return float64(matched)/float64(total) > 0.8
}

var timestampLayouts = []string{
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02",
	"2006/01/02", "01/02/2006", "02/01/2006", "1/2/2006 15:04",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasNull(col dataset.Column) bool {
	for _, v := range col.Values {
		if v.Null {
			return true
		}
	}
	return false
}

func fillNulls(ds *dataset.Dataset, name string, fill dataset.Value) {
	col, _ := ds.Column(name)
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.Null {
			vals[i] = fill
		} else {
			vals[i] = v
		}
	}
	_ = ds.SetColumn(name, col.Kind, vals)
}

func widenToFloat(ds *dataset.Dataset, name string) {
	col, _ := ds.Column(name)
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if x, ok := v.Num(); ok {
			vals[i] = dataset.FloatValue(x)
		} else {
			vals[i] = dataset.NullValue()
		}
	}
	_ = ds.SetColumn(name, dataset.KindFloat, vals)
}

// forwardFill carries the previous non-null value down the column. Leading
// nulls with no prior value stay null.
func forwardFill(ds *dataset.Dataset, name string) {
	col, _ := ds.Column(name)
	vals := make([]dataset.Value, len(col.Values))
	var last dataset.Value
	haveLast := false
	for i, v := range col.Values {
		if v.Null {
			if haveLast {
				vals[i] = last
			} else {
				vals[i] = v
			}
			continue
		}
		vals[i] = v
		last = v
		haveLast = true
	}
	_ = ds.SetColumn(name, col.Kind, vals)
}

// columnMedian computes the median over non-null numeric values.
func columnMedian(col dataset.Column) (float64, bool) {
	var nums []float64
	for _, v := range col.Values {
		if x, ok := v.Num(); ok {
			nums = append(nums, x)
		}
	}
	if len(nums) == 0 {
		return 0, false
	}
	sort.Float64s(nums)
	n := len(nums)
	if n%2 == 1 {
		return nums[n/2], true
	}
	return (nums[n/2-1] + nums[n/2]) / 2, true
}

// columnMode returns the most frequent non-null value; ties break toward the
// value seen first in row order.
func columnMode(col dataset.Column) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, v := range col.Values {
		if v.Null {
			continue
		}
		s := v.Text()
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, s := range order {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best, true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
