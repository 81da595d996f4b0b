// Package feature derives additional columns from a dataset: temporal
// decomposition of timestamp columns, quantile binning of numeric columns,
// and pairwise ratio features. All passes are strictly additive; existing
// columns are never removed or modified.
package feature

import (
	"fmt"
	"sort"

	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/schema"
)

const (
	binCount  = 5
	maxRatios = 5
)

// Engineer derives features and records one log entry per action. One
// instance per call site.
type Engineer struct {
	log []string
}

// New returns an Engineer with an empty operation log.
func New() *Engineer { return &Engineer{} }

// Log returns the operations performed so far, in order.
func (e *Engineer) Log() []string { return e.log }

// Engineer returns an expanded copy of ds. The input is never mutated.
func (e *Engineer) Engineer(ds *dataset.Dataset) *dataset.Dataset {
	out := ds.Clone()
	e.extractDateFeatures(out)
	e.createBins(out)
	e.createRatios(out)
	return out
}

// extractDateFeatures derives year/month/day/dayofweek/quarter from every
// timestamp column, plus hour when the data carries sub-day resolution.
func (e *Engineer) extractDateFeatures(ds *dataset.Dataset) {
	for _, col := range snapshot(ds) {
		if col.Kind != dataset.KindTime {
			continue
		}
		addDerived(ds, col, "year", func(t timeParts) int64 { return int64(t.year) })
		e.log = append(e.log, fmt.Sprintf("Extracted year from '%s'", col.Name))
		addDerived(ds, col, "month", func(t timeParts) int64 { return int64(t.month) })
		e.log = append(e.log, fmt.Sprintf("Extracted month from '%s'", col.Name))
		addDerived(ds, col, "day", func(t timeParts) int64 { return int64(t.day) })
		e.log = append(e.log, fmt.Sprintf("Extracted day from '%s'", col.Name))
		addDerived(ds, col, "dayofweek", func(t timeParts) int64 { return int64(t.dayOfWeek) })
		e.log = append(e.log, fmt.Sprintf("Extracted day of week from '%s'", col.Name))
		addDerived(ds, col, "quarter", func(t timeParts) int64 { return int64(t.quarter) })
		e.log = append(e.log, fmt.Sprintf("Extracted quarter from '%s'", col.Name))
		if hourVaries(col) {
			addDerived(ds, col, "hour", func(t timeParts) int64 { return int64(t.hour) })
			e.log = append(e.log, fmt.Sprintf("Extracted hour from '%s'", col.Name))
		}
	}
}

type timeParts struct {
	year, month, day, dayOfWeek, quarter, hour int
}

func addDerived(ds *dataset.Dataset, col dataset.Column, suffix string, pick func(timeParts) int64) {
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.Null {
			vals[i] = dataset.NullValue()
			continue
		}
		t := v.Time()
		parts := timeParts{
			year:  t.Year(),
			month: int(t.Month()),
			day:   t.Day(),
			// Monday=0 convention.
			dayOfWeek: (int(t.Weekday()) + 6) % 7,
			quarter:   (int(t.Month())-1)/3 + 1,
			hour:      t.Hour(),
		}
		vals[i] = dataset.IntValue(pick(parts))
	}
	_ = ds.AddColumn(dataset.Column{Name: col.Name + "_" + suffix, Kind: dataset.KindInt, Values: vals})
}

// hourVaries reports whether the column's hour component takes more than one
// value. Pure-date data would otherwise yield an all-zero hour column.
func hourVaries(col dataset.Column) bool {
	seen := -1
	for _, v := range col.Values {
		if v.Null {
			continue
		}
		h := v.Time().Hour()
		if seen == -1 {
			seen = h
		} else if h != seen {
			return true
		}
	}
	return false
}

// createBins assigns each numeric column with at least 5 distinct values to
// equal-frequency quantile bins labeled Q1..Q5. Collapsed edges silently
// yield fewer bins.
func (e *Engineer) createBins(ds *dataset.Dataset) {
	for _, col := range snapshot(ds) {
		if !col.Kind.Numeric() {
			continue
		}
		nums, distinct := numericValues(col)
		if distinct < binCount {
			continue
		}
		sorted := make([]float64, len(nums))
		copy(sorted, nums)
		sort.Float64s(sorted)
		edges := make([]float64, 0, binCount+1)
		for i := 0; i <= binCount; i++ {
			edges = append(edges, schema.Quantile(sorted, float64(i)/binCount))
		}
		edges = dedupe(edges)
		if len(edges) < 2 {
			continue
		}
		vals := make([]dataset.Value, len(col.Values))
		for i, v := range col.Values {
			x, ok := v.Num()
			if !ok {
				vals[i] = dataset.NullValue()
				continue
			}
			vals[i] = dataset.CategoryValue(fmt.Sprintf("Q%d", binIndex(edges, x)+1))
		}
		_ = ds.AddColumn(dataset.Column{Name: col.Name + "_bin", Kind: dataset.KindCategorical, Values: vals})
		e.log = append(e.log, fmt.Sprintf("Created %d bins for '%s'", len(edges)-1, col.Name))
	}
}

// binIndex returns the 0-based bin for x over ascending edges, with the
// first and last bins open-ended.
func binIndex(edges []float64, x float64) int {
	for i := 1; i < len(edges)-1; i++ {
		if x <= edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

func dedupe(edges []float64) []float64 {
	out := edges[:1]
	for _, e := range edges[1:] {
		if e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}

// createRatios derives col1/col2 ratio features for numeric column pairs in
// original column order. Only attempted when more than 2 numeric columns
// exist; a divisor column containing any zero is skipped; capped at 5
// features total.
func (e *Engineer) createRatios(ds *dataset.Dataset) {
	var numeric []dataset.Column
	for _, col := range snapshot(ds) {
		if col.Kind.Numeric() {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) <= 2 {
		return
	}
	count := 0
	for i := 0; i < len(numeric) && count < maxRatios; i++ {
		for j := i + 1; j < len(numeric) && count < maxRatios; j++ {
			col1, col2 := numeric[i], numeric[j]
			if hasZero(col2) {
				continue
			}
			vals := make([]dataset.Value, len(col1.Values))
			for r := range col1.Values {
				a, okA := col1.Values[r].Num()
				b, okB := col2.Values[r].Num()
				if !okA || !okB {
					vals[r] = dataset.NullValue()
					continue
				}
				vals[r] = dataset.FloatValue(a / b)
			}
			_ = ds.AddColumn(dataset.Column{Name: col1.Name + "_per_" + col2.Name, Kind: dataset.KindFloat, Values: vals})
			e.log = append(e.log, fmt.Sprintf("Created ratio feature: %s/%s", col1.Name, col2.Name))
			count++
		}
	}
}

func hasZero(col dataset.Column) bool {
	for _, v := range col.Values {
		if x, ok := v.Num(); ok && x == 0 {
			return true
		}
	}
	return false
}

func numericValues(col dataset.Column) (nums []float64, distinct int) {
	seen := make(map[float64]struct{})
	for _, v := range col.Values {
		if x, ok := v.Num(); ok {
			nums = append(nums, x)
			seen[x] = struct{}{}
		}
	}
	return nums, len(seen)
}

// snapshot copies the column list so derived columns added during a pass are
// not themselves re-processed.
func snapshot(ds *dataset.Dataset) []dataset.Column {
	cols := ds.Columns()
	out := make([]dataset.Column, len(cols))
	copy(out, cols)
	return out
}
