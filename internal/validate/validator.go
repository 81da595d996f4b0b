// Package validate runs heuristic data-quality checks over a dataset and
// aggregates findings into a report. Validation is read-only: the dataset is
// never mutated and repeated runs yield identical reports.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/schema"
)

// DefaultIQRMultiplier is Tukey's conventional fence multiplier.
const DefaultIQRMultiplier = 1.5

// moneyKeywords mark columns whose values should never be negative.
var moneyKeywords = []string{"price", "amount", "cost", "salary"}

// Validator holds check configuration. The zero value is not usable; use New.
type Validator struct {
	iqrMultiplier float64
	now           func() time.Time
}

// Option customizes a Validator.
type Option func(*Validator)

// WithIQRMultiplier overrides the outlier fence multiplier.
func WithIQRMultiplier(k float64) Option {
	return func(v *Validator) {
		if k > 0 {
			v.iqrMultiplier = k
		}
	}
}

// withNow fixes the evaluation clock, used by tests for the future-date check.
func withNow(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New returns a Validator with default settings.
func New(opts ...Option) *Validator {
	v := &Validator{iqrMultiplier: DefaultIQRMultiplier, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

// MissingDetail describes missing values in one column.
type MissingDetail struct {
	Count      int
	Percentage float64
}

// MissingInfo aggregates the missing-value check.
type MissingInfo struct {
	HasMissing         bool
	TotalMissing       int
	ColumnsWithMissing int
	Details            map[string]MissingDetail
}

// DuplicateInfo aggregates the duplicate-row check.
type DuplicateInfo struct {
	HasDuplicates bool
	Count         int
	Percentage    float64
}

// OutlierDetail describes IQR outliers in one numeric column.
type OutlierDetail struct {
	Count      int
	Percentage float64
	LowerBound float64
	UpperBound float64
	MinOutlier float64
	MaxOutlier float64
}

// OutlierInfo aggregates the outlier check. Only columns with at least one
// outlier appear in Details.
type OutlierInfo struct {
	ColumnsWithOutliers []string
	Details             map[string]OutlierDetail
}

// ColumnCheck carries per-column semantic findings.
type ColumnCheck struct {
	Kind   dataset.Kind
	Issues []string
}

// Report is the immutable outcome of a validation run.
type Report struct {
	TotalRows    int
	TotalColumns int
	Issues       []string
	Warnings     []string
	Missing      MissingInfo
	Duplicates   DuplicateInfo
	Outliers     OutlierInfo
	ColumnChecks map[string]ColumnCheck
}

// Validate runs all four checks unconditionally and aggregates the findings.
func (v *Validator) Validate(ds *dataset.Dataset) *Report {
	rep := &Report{
		TotalRows:    ds.NumRows(),
		TotalColumns: ds.NumCols(),
		ColumnChecks: make(map[string]ColumnCheck),
	}
	rep.Missing = v.checkMissing(ds)
	rep.Duplicates = v.checkDuplicates(ds)
	rep.Outliers = v.checkOutliers(ds)
	v.checkConstraints(ds, rep)

	if rep.Missing.HasMissing {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("Found missing values in %d columns", rep.Missing.ColumnsWithMissing))
	}
	if rep.Duplicates.Count > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("Found %d duplicate rows", rep.Duplicates.Count))
	}
	if len(rep.Outliers.ColumnsWithOutliers) > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("Found outliers in %d columns", len(rep.Outliers.ColumnsWithOutliers)))
	}
	return rep
}

func (v *Validator) checkMissing(ds *dataset.Dataset) MissingInfo {
	info := MissingInfo{Details: make(map[string]MissingDetail)}
	rows := ds.NumRows()
	for _, col := range ds.Columns() {
		count := 0
		for _, val := range col.Values {
			if val.Null {
				count++
			}
		}
		if count == 0 {
			continue
		}
		info.HasMissing = true
		info.TotalMissing += count
		info.ColumnsWithMissing++
		pct := 0.0
		if rows > 0 {
			pct = float64(count) / float64(rows) * 100
		}
		info.Details[col.Name] = MissingDetail{Count: count, Percentage: pct}
	}
	return info
}

func (v *Validator) checkDuplicates(ds *dataset.Dataset) DuplicateInfo {
	info := DuplicateInfo{}
	rows := ds.NumRows()
	if rows == 0 || ds.NumCols() == 0 {
		return info
	}
	seen := make(map[string]struct{}, rows)
	for i := 0; i < rows; i++ {
		key := ds.RowKey(i)
		if _, ok := seen[key]; ok {
			info.Count++
		} else {
			seen[key] = struct{}{}
		}
	}
	info.HasDuplicates = info.Count > 0
	info.Percentage = float64(info.Count) / float64(rows) * 100
	return info
}

func (v *Validator) checkOutliers(ds *dataset.Dataset) OutlierInfo {
	info := OutlierInfo{Details: make(map[string]OutlierDetail)}
	rows := ds.NumRows()
	for _, col := range ds.Columns() {
		if !col.Kind.Numeric() {
			continue
		}
		var nums []float64
		for _, val := range col.Values {
			if x, ok := val.Num(); ok {
				nums = append(nums, x)
			}
		}
		if len(nums) == 0 {
			continue
		}
		sorted := make([]float64, len(nums))
		copy(sorted, nums)
		sort.Float64s(sorted)
		q1 := schema.Quantile(sorted, 0.25)
		q3 := schema.Quantile(sorted, 0.75)
		iqr := q3 - q1
		lower := q1 - v.iqrMultiplier*iqr
		upper := q3 + v.iqrMultiplier*iqr
		det := OutlierDetail{LowerBound: lower, UpperBound: upper}
		first := true
		for _, x := range nums {
			if x < lower || x > upper {
				det.Count++
				if first || x < det.MinOutlier {
					det.MinOutlier = x
				}
				if first || x > det.MaxOutlier {
					det.MaxOutlier = x
				}
				first = false
			}
		}
		if det.Count == 0 {
			continue
		}
		if rows > 0 {
			det.Percentage = float64(det.Count) / float64(rows) * 100
		}
		info.ColumnsWithOutliers = append(info.ColumnsWithOutliers, col.Name)
		info.Details[col.Name] = det
	}
	return info
}

// checkConstraints runs column-name-driven semantic checks. Negative
// age/money findings land on both the column check and the aggregate issue
// list; future-date findings stay on the column check only. Downstream report
// consumers depend on that asymmetry.
func (v *Validator) checkConstraints(ds *dataset.Dataset, rep *Report) {
	now := v.now()
	for _, col := range ds.Columns() {
		check := ColumnCheck{Kind: col.Kind}
		lower := strings.ToLower(col.Name)

		if strings.Contains(lower, "age") && col.Kind.Numeric() {
			if n := countNegative(col); n > 0 {
				issue := fmt.Sprintf("Found %d negative values in '%s' column", n, col.Name)
				check.Issues = append(check.Issues, issue)
				rep.Issues = append(rep.Issues, issue)
			}
		}
		if col.Kind == dataset.KindTime {
			future := 0
			for _, val := range col.Values {
				if !val.Null && val.Time().After(now) {
					future++
				}
			}
			if future > 0 {
				check.Issues = append(check.Issues, fmt.Sprintf("Found %d future dates in '%s' column", future, col.Name))
			}
		}
		if containsAny(lower, moneyKeywords) && col.Kind.Numeric() {
			if n := countNegative(col); n > 0 {
				issue := fmt.Sprintf("Found %d negative values in '%s' column", n, col.Name)
				check.Issues = append(check.Issues, issue)
				rep.Issues = append(rep.Issues, issue)
			}
		}
		rep.ColumnChecks[col.Name] = check
	}
}

func countNegative(col dataset.Column) int {
	n := 0
	for _, val := range col.Values {
		if x, ok := val.Num(); ok && x < 0 {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
