package query

import (
	"math"
	"strings"
	"testing"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

func salesFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.Column{Name: "region", Kind: dataset.KindCategorical, Values: []dataset.Value{
			dataset.CategoryValue("North"), dataset.CategoryValue("South"),
			dataset.CategoryValue("North"), dataset.CategoryValue("West"),
		}},
		dataset.Column{Name: "sales", Kind: dataset.KindInt, Values: []dataset.Value{
			dataset.IntValue(100), dataset.IntValue(200), dataset.IntValue(300), dataset.IntValue(50),
		}},
		dataset.Column{Name: "score", Kind: dataset.KindFloat, Values: []dataset.Value{
			dataset.FloatValue(4.5), dataset.FloatValue(3.0), dataset.NullValue(), dataset.FloatValue(2.5),
		}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func runPipeline(t *testing.T, ds *dataset.Dataset, snippet string) *dataset.Dataset {
	t.Helper()
	p, err := Parse(snippet)
	if err != nil {
		t.Fatalf("parse %q: %v", snippet, err)
	}
	out, err := p.Run(ds.Clone())
	if err != nil {
		t.Fatalf("run %q: %v", snippet, err)
	}
	return out
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"sales.sum()",
		"result = ",
		"result = explode(everything)",
		"result = head(-1)",
		"result = filter(sales)",
		"result = groupby(region)",
	}
	for _, s := range bad {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestSelectAndHead(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = select(region, sales) | head(2)")
	if out.NumCols() != 2 || out.NumRows() != 2 {
		t.Fatalf("shape = %dx%d", out.NumRows(), out.NumCols())
	}
	if out.HasColumn("score") {
		t.Error("score should have been projected away")
	}
}

func TestFilterNumericAndText(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = filter(sales > 100)")
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	out = runPipeline(t, ds, "result = filter(region == 'North')")
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	out = runPipeline(t, ds, "result = filter(region contains 'o')")
	if out.NumRows() != 3 {
		t.Fatalf("contains rows = %d, want 3 (case-insensitive)", out.NumRows())
	}
}

func TestFilterSkipsNulls(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = filter(score < 100)")
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3 nulls excluded", out.NumRows())
	}
}

func TestGroupBySum(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = groupby(region, sum(sales))")
	if out.NumRows() != 3 {
		t.Fatalf("groups = %d, want 3", out.NumRows())
	}
	// Groups come back sorted by key.
	key, _ := out.Column("region")
	val, _ := out.Column("sum_sales")
	if key.Values[0].String() != "North" || val.Values[0].Float() != 400 {
		t.Errorf("first group = %s:%v, want North:400", key.Values[0], val.Values[0])
	}
}

func TestGroupByCount(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = groupby(region, count())")
	cnt, ok := out.Column("count")
	if !ok {
		t.Fatalf("missing count column: %v", out.ColumnNames())
	}
	if cnt.Values[0].Int() != 2 {
		t.Errorf("North count = %v, want 2", cnt.Values[0])
	}
}

func TestSortDirectionsAndNulls(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = sort(sales, desc)")
	col, _ := out.Column("sales")
	if col.Values[0].Int() != 300 {
		t.Errorf("desc sort head = %v", col.Values[0])
	}
	out = runPipeline(t, ds, "result = sort(-sales)")
	col, _ = out.Column("sales")
	if col.Values[0].Int() != 300 {
		t.Errorf("-col sort head = %v", col.Values[0])
	}
	out = runPipeline(t, ds, "result = sort(score)")
	col, _ = out.Column("score")
	if !col.Values[out.NumRows()-1].Null {
		t.Error("nulls must sort last")
	}
}

func TestCountScalar(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = filter(sales >= 100) | count()")
	col, _ := out.Column("result")
	if out.NumRows() != 1 || col.Values[0].Int() != 3 {
		t.Errorf("count = %v", col.Values[0])
	}
}

func TestScalarAggregates(t *testing.T) {
	ds := salesFixture(t)
	cases := []struct {
		snippet string
		want    float64
	}{
		{"result = sum(sales)", 650},
		{"result = mean(sales)", 162.5},
		{"result = min(sales)", 50},
		{"result = max(sales)", 300},
		{"result = mean(score)", (4.5 + 3.0 + 2.5) / 3},
	}
	for _, c := range cases {
		out := runPipeline(t, ds, c.snippet)
		col, _ := out.Column("result")
		if got := col.Values[0].Float(); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.snippet, got, c.want)
		}
	}
}

func TestAggregateRejectsTextColumn(t *testing.T) {
	ds := salesFixture(t)
	p, err := Parse("result = sum(region)")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(ds.Clone()); err == nil {
		t.Fatal("expected error aggregating a categorical column")
	}
}

func TestSummaryTable(t *testing.T) {
	ds := salesFixture(t)
	out := runPipeline(t, ds, "result = summary()")
	names, _ := out.Column("column")
	var got []string
	for _, v := range names.Values {
		got = append(got, v.Text())
	}
	if strings.Join(got, ",") != "sales,score" {
		t.Errorf("summary columns = %v", got)
	}
	for _, stat := range []string{"mean", "median", "min", "max", "std"} {
		if !out.HasColumn(stat) {
			t.Errorf("summary missing %q column", stat)
		}
	}
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	ds := salesFixture(t)
	before := ds.Clone()
	runPipeline(t, ds, "result = filter(sales > 100) | sort(sales, desc) | head(1)")
	for i, col := range ds.Columns() {
		for j, v := range col.Values {
			if !v.Equal(before.Columns()[i].Values[j]) {
				t.Fatalf("pipeline mutated input cell (%d,%d)", i, j)
			}
		}
	}
}
