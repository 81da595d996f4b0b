package sample

import (
	"strings"
	"testing"

	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/validate"
)

func TestSalesDataShape(t *testing.T) {
	ds := SalesData(200, 42)
	if ds.NumRows() != 210 {
		t.Errorf("rows = %d, want 200 base + 10 duplicates", ds.NumRows())
	}
	if ds.NumCols() != 7 {
		t.Errorf("cols = %d, want 7", ds.NumCols())
	}
	for _, name := range []string{"date", "region", "product", "sales", "quantity", "customer_age", "satisfaction_score"} {
		if !ds.HasColumn(name) {
			t.Errorf("missing column %q", name)
		}
	}
}

func TestSalesDataIsDirtyOnPurpose(t *testing.T) {
	ds := SalesData(500, 7)
	rep := validate.New().Validate(ds)
	if !rep.Duplicates.HasDuplicates {
		t.Error("generated data should contain duplicate rows")
	}
	found := false
	for _, is := range rep.Issues {
		if strings.Contains(is, "customer_age") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected negative-age issues, got %v", rep.Issues)
	}
	age, _ := ds.Column("customer_age")
	neg := 0
	for _, v := range age.Values {
		if x, ok := v.Num(); ok && x < 0 {
			neg++
		}
	}
	if neg != 5 {
		t.Errorf("negative ages = %d, want exactly 5", neg)
	}
}

func TestSalesDataInjectsExactlyFiveNegativeAges(t *testing.T) {
	for _, seed := range []uint64{1, 2, 42, 1234} {
		ds := SalesData(100, seed)
		age, _ := ds.Column("customer_age")
		neg := 0
		// Only the base rows receive injections; duplicates are copied first.
		for _, v := range age.Values[:100] {
			if x, ok := v.Num(); ok && x < 0 {
				neg++
			}
		}
		if neg != 5 {
			t.Errorf("seed %d: negative ages = %d, want exactly 5", seed, neg)
		}
		rep := validate.New().Validate(ds)
		found := false
		for _, is := range rep.Issues {
			if strings.Contains(is, "customer_age") {
				found = true
			}
		}
		if !found {
			t.Errorf("seed %d: no customer_age issue: %v", seed, rep.Issues)
		}
	}
}

func TestSalesDataDeterministicForSeed(t *testing.T) {
	a := SalesData(50, 1)
	b := SalesData(50, 1)
	for i := 0; i < a.NumRows(); i++ {
		if a.RowKey(i) != b.RowKey(i) {
			t.Fatalf("row %d differs across identical seeds", i)
		}
	}
	c := SalesData(50, 2)
	same := true
	for i := 0; i < a.NumRows(); i++ {
		if a.RowKey(i) != c.RowKey(i) {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical data")
	}
}

func TestSalesDataMinimumRows(t *testing.T) {
	ds := SalesData(1, 3)
	if ds.NumRows() < 20 {
		t.Errorf("rows = %d, want at least the 20-row floor", ds.NumRows())
	}
	score, _ := ds.Column("satisfaction_score")
	if score.Kind != dataset.KindFloat {
		t.Errorf("score kind = %s", score.Kind)
	}
}
