// Package schema profiles datasets: per-column type, null and uniqueness
// statistics, sample values, and numeric summaries. Profiles are recomputed
// on every call and never cached across mutations.
package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

// sampleValues is the number of leading non-null values reported per column.
const sampleValues = 3

// Stats holds numeric summary statistics over non-null values. Absent when a
// numeric column is entirely null.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64
}

// ColumnProfile describes a single column.
type ColumnProfile struct {
	Name           string
	Kind           dataset.Kind
	NullCount      int
	NullPercentage float64
	UniqueCount    int
	SampleValues   []string
	Statistics     *Stats
}

// Summary describes the dataset shape.
type Summary struct {
	TotalColumns int
	TotalRows    int
	MemoryBytes  int64
}

// Profile computes per-column profiles plus a dataset summary. The column
// kind reported is the physical storage kind, not a semantic guess.
func Profile(ds *dataset.Dataset) (map[string]ColumnProfile, Summary) {
	rows := ds.NumRows()
	profiles := make(map[string]ColumnProfile, ds.NumCols())
	var mem int64
	for _, col := range ds.Columns() {
		p := ColumnProfile{Name: col.Name, Kind: col.Kind}
		distinct := make(map[string]struct{})
		var nums []float64
		for _, v := range col.Values {
			mem += estimateBytes(v)
			if v.Null {
				p.NullCount++
				continue
			}
			distinct[v.Key()] = struct{}{}
			if len(p.SampleValues) < sampleValues {
				p.SampleValues = append(p.SampleValues, v.String())
			}
			if x, ok := v.Num(); ok {
				nums = append(nums, x)
			}
		}
		// rows == 0 must not divide.
		if rows > 0 {
			p.NullPercentage = float64(p.NullCount) / float64(rows) * 100
		}
		p.UniqueCount = len(distinct)
		if col.Kind.Numeric() && len(nums) > 0 {
			p.Statistics = numericStats(nums)
		}
		profiles[col.Name] = p
	}
	return profiles, Summary{TotalColumns: ds.NumCols(), TotalRows: rows, MemoryBytes: mem}
}

func numericStats(nums []float64) *Stats {
	s := &Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, x := range nums {
		sum += x
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	s.Mean = sum / float64(len(nums))
	var m2 float64
	for _, x := range nums {
		d := x - s.Mean
		m2 += d * d
	}
	if len(nums) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(nums)-1))
	}
	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	sort.Float64s(sorted)
	s.Median = Quantile(sorted, 0.5)
	return s
}

// Quantile interpolates linearly over an ascending-sorted slice at position
// q*(n-1).
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func estimateBytes(v dataset.Value) int64 {
	if v.Null {
		return 1
	}
	switch v.Kind() {
	case dataset.KindInt, dataset.KindFloat, dataset.KindTime:
		return 8
	case dataset.KindBool:
		return 1
	default:
		return int64(len(v.Text()))
	}
}

// Render writes a human-readable schema listing, column order following the
// dataset.
func Render(ds *dataset.Dataset) string {
	profiles, sum := Profile(ds)
	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d\nColumns: %d\nEstimated size: %d bytes\n\n", sum.TotalRows, sum.TotalColumns, sum.MemoryBytes)
	for _, name := range ds.ColumnNames() {
		p := profiles[name]
		fmt.Fprintf(&b, "- %s: %s (nulls %d, %.1f%%; unique %d)", p.Name, p.Kind, p.NullCount, p.NullPercentage, p.UniqueCount)
		if p.Statistics != nil {
			st := p.Statistics
			fmt.Fprintf(&b, " — mean %.4g, median %.4g, min %.4g, max %.4g, std %.4g", st.Mean, st.Median, st.Min, st.Max, st.Std)
		}
		if len(p.SampleValues) > 0 {
			fmt.Fprintf(&b, "; e.g. %s", strings.Join(p.SampleValues, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
