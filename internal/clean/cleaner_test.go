package clean

import (
	"strings"
	"testing"
	"time"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

func mustDataset(t *testing.T, cols ...dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(cols...)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestAllStepsDisabledIsIdentity(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "a", Kind: dataset.KindInt, Values: []dataset.Value{
		dataset.IntValue(1), dataset.IntValue(1), dataset.NullValue(),
	}})
	c := New(nil)
	out := c.Clean(ds, Config{})
	if out.NumRows() != ds.NumRows() || out.NumCols() != ds.NumCols() {
		t.Fatalf("shape changed: %dx%d", out.NumRows(), out.NumCols())
	}
	for i, col := range out.Columns() {
		for j, v := range col.Values {
			if !v.Equal(ds.Columns()[i].Values[j]) {
				t.Fatalf("cell (%d,%d) changed", i, j)
			}
		}
	}
	if len(c.Log()) != 0 {
		t.Errorf("log should be empty, got %v", c.Log())
	}
}

func TestRemoveDuplicatesKeepsFirst(t *testing.T) {
	ds := mustDataset(t,
		dataset.Column{Name: "a", Kind: dataset.KindInt, Values: []dataset.Value{
			dataset.IntValue(1), dataset.IntValue(2), dataset.IntValue(1), dataset.IntValue(3),
		}},
	)
	c := New(nil)
	out := c.Clean(ds, Config{RemoveDuplicates: true})
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	col, _ := out.Column("a")
	if col.Values[0].Int() != 1 || col.Values[1].Int() != 2 || col.Values[2].Int() != 3 {
		t.Errorf("unexpected order after dedup: %v", col.Values)
	}
	if len(c.Log()) != 1 || c.Log()[0] != "Removed 1 duplicate rows" {
		t.Errorf("log = %v", c.Log())
	}
	// Input is untouched.
	if ds.NumRows() != 4 {
		t.Error("input dataset was mutated")
	}
}

func TestRemoveDuplicatesKeepsSubSecondTimestamps(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ds := mustDataset(t, dataset.Column{Name: "ts", Kind: dataset.KindTime, Values: []dataset.Value{
		dataset.TimeValue(base.Add(500 * time.Millisecond)),
		dataset.TimeValue(base.Add(600 * time.Millisecond)),
	}})
	c := New(nil)
	out := c.Clean(ds, Config{RemoveDuplicates: true})
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2: distinct sub-second timestamps are not duplicates", out.NumRows())
	}
	if len(c.Log()) != 0 {
		t.Errorf("log = %v, want no dedup action", c.Log())
	}
}

func TestImputeNumericMedian(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "x", Kind: dataset.KindFloat, Values: []dataset.Value{
		dataset.FloatValue(1), dataset.FloatValue(3), dataset.NullValue(), dataset.FloatValue(9),
	}})
	c := New(nil)
	out := c.Clean(ds, Config{HandleMissing: true})
	col, _ := out.Column("x")
	for _, v := range col.Values {
		if v.Null {
			t.Fatal("nulls remain after imputation")
		}
	}
	if got := col.Values[2].Float(); got != 3 {
		t.Errorf("imputed value = %v, want the median 3", got)
	}
	if c.Log()[0] != "Imputed missing values in 'x' with median: 3" {
		t.Errorf("log = %v", c.Log())
	}
}

func TestImputeIntWidensOnFractionalMedian(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "x", Kind: dataset.KindInt, Values: []dataset.Value{
		dataset.IntValue(1), dataset.IntValue(2), dataset.NullValue(), dataset.IntValue(3), dataset.IntValue(4),
	}})
	out := New(nil).Clean(ds, Config{HandleMissing: true})
	col, _ := out.Column("x")
	if col.Kind != dataset.KindFloat {
		t.Fatalf("kind = %s, want float after fractional-median widening", col.Kind)
	}
	if got := col.Values[2].Float(); got != 2.5 {
		t.Errorf("imputed value = %v, want 2.5", got)
	}
}

func TestImputeModeAndUnknownFallback(t *testing.T) {
	ds := mustDataset(t,
		dataset.Column{Name: "city", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.TextValue("Oslo"), dataset.TextValue("Oslo"), dataset.TextValue("Bergen"), dataset.NullValue(),
		}},
		dataset.Column{Name: "note", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.NullValue(), dataset.NullValue(), dataset.NullValue(), dataset.NullValue(),
		}},
	)
	c := New(nil)
	out := c.Clean(ds, Config{HandleMissing: true})
	city, _ := out.Column("city")
	if got := city.Values[3].Text(); got != "Oslo" {
		t.Errorf("mode imputation = %q, want Oslo", got)
	}
	note, _ := out.Column("note")
	for _, v := range note.Values {
		if v.Text() != "Unknown" {
			t.Errorf("fallback imputation = %q, want Unknown", v.Text())
		}
	}
	logText := strings.Join(c.Log(), "\n")
	if !strings.Contains(logText, "Imputed missing values in 'city' with mode: Oslo") ||
		!strings.Contains(logText, "Imputed missing values in 'note' with 'Unknown'") {
		t.Errorf("log = %v", c.Log())
	}
}

func TestModeTieBreaksToFirstSeen(t *testing.T) {
	col := dataset.Column{Name: "c", Kind: dataset.KindText, Values: []dataset.Value{
		dataset.TextValue("b"), dataset.TextValue("a"), dataset.TextValue("a"), dataset.TextValue("b"),
	}}
	mode, ok := columnMode(col)
	if !ok || mode != "b" {
		t.Errorf("mode = %q, want first-seen b", mode)
	}
}

func TestForwardFillLeavesLeadingNulls(t *testing.T) {
	mk := func(day int) dataset.Value {
		return dataset.TimeValue(date(2024, 1, day))
	}
	ds := mustDataset(t, dataset.Column{Name: "ts", Kind: dataset.KindTime, Values: []dataset.Value{
		dataset.NullValue(), mk(2), dataset.NullValue(), dataset.NullValue(), mk(5),
	}})
	out := New(nil).Clean(ds, Config{HandleMissing: true})
	col, _ := out.Column("ts")
	if !col.Values[0].Null {
		t.Error("leading null must stay null")
	}
	if !col.Values[2].Equal(mk(2)) || !col.Values[3].Equal(mk(2)) {
		t.Errorf("forward fill failed: %v", col.Values)
	}
}

func TestNormalizeText(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "s", Kind: dataset.KindText, Values: []dataset.Value{
		dataset.TextValue("  hello   world "), dataset.TextValue("ok"),
	}})
	out := New(nil).Clean(ds, Config{NormalizeText: true})
	col, _ := out.Column("s")
	if got := col.Values[0].Text(); got != "hello world" {
		t.Errorf("normalized = %q", got)
	}
}

func TestFixTypesDatetimeByName(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "order_date", Kind: dataset.KindText, Values: []dataset.Value{
		dataset.TextValue("2024-01-02"), dataset.TextValue("not a date"), dataset.TextValue("2024-01-03"),
	}})
	c := New(nil)
	out := c.Clean(ds, Config{FixTypes: true})
	col, _ := out.Column("order_date")
	if col.Kind != dataset.KindTime {
		t.Fatalf("kind = %s, want timestamp", col.Kind)
	}
	if !col.Values[1].Null {
		t.Error("unparseable value must become null")
	}
	if c.Log()[0] != "Converted 'order_date' to datetime" {
		t.Errorf("log = %v", c.Log())
	}
}

func TestFixTypesNumericText(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "score", Kind: dataset.KindText, Values: []dataset.Value{
		dataset.TextValue("1"), dataset.TextValue("2.5"), dataset.TextValue("-3"), dataset.TextValue("4"), dataset.TextValue("5"),
	}})
	out := New(nil).Clean(ds, Config{FixTypes: true})
	col, _ := out.Column("score")
	if col.Kind != dataset.KindFloat {
		t.Fatalf("kind = %s, want float", col.Kind)
	}
	if col.Values[1].Float() != 2.5 {
		t.Errorf("value = %v", col.Values[1])
	}
}

func TestFixTypesSkipsMixedText(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "mixed", Kind: dataset.KindText, Values: []dataset.Value{
		dataset.TextValue("1"), dataset.TextValue("two"), dataset.TextValue("3"), dataset.TextValue("four"), dataset.TextValue("5"),
	}})
	out := New(nil).Clean(ds, Config{FixTypes: true})
	col, _ := out.Column("mixed")
	if col.Kind != dataset.KindText {
		t.Errorf("60%% numeric column must stay text, got %s", col.Kind)
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
