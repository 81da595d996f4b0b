package schema

import (
	"math"
	"testing"

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

func TestProfileBasics(t *testing.T) {
	ds := mustDataset(t,
		dataset.Column{Name: "n", Kind: dataset.KindInt, Values: []dataset.Value{
			dataset.IntValue(1), dataset.IntValue(2), dataset.NullValue(), dataset.IntValue(2),
		}},
		dataset.Column{Name: "s", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.TextValue("a"), dataset.TextValue("b"), dataset.TextValue("a"), dataset.NullValue(),
		}},
	)
	profiles, sum := Profile(ds)
	if sum.TotalRows != 4 || sum.TotalColumns != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	n := profiles["n"]
	if n.NullCount != 1 {
		t.Errorf("null count = %d, want 1", n.NullCount)
	}
	if n.NullPercentage != 25 {
		t.Errorf("null pct = %v, want 25", n.NullPercentage)
	}
	if n.UniqueCount != 2 {
		t.Errorf("unique = %d, want 2", n.UniqueCount)
	}
	if n.Statistics == nil {
		t.Fatal("numeric column must carry statistics")
	}
	if got := n.Statistics.Mean; math.Abs(got-5.0/3) > 1e-9 {
		t.Errorf("mean = %v", got)
	}
	s := profiles["s"]
	if s.Statistics != nil {
		t.Error("text column must not carry statistics")
	}
	if len(s.SampleValues) != 3 || s.SampleValues[0] != "a" {
		t.Errorf("samples = %v", s.SampleValues)
	}
}

func TestProfileNullPercentageBounds(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "x", Kind: dataset.KindFloat, Values: []dataset.Value{
		dataset.NullValue(), dataset.NullValue(),
	}})
	profiles, _ := Profile(ds)
	p := profiles["x"]
	if p.NullPercentage < 0 || p.NullPercentage > 100 {
		t.Errorf("null pct out of range: %v", p.NullPercentage)
	}
	if p.Statistics != nil {
		t.Error("all-null numeric column must not carry statistics")
	}
}

func TestProfileZeroRows(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "x", Kind: dataset.KindInt})
	profiles, sum := Profile(ds)
	if sum.TotalRows != 0 {
		t.Fatalf("rows = %d", sum.TotalRows)
	}
	if p := profiles["x"]; p.NullPercentage != 0 {
		t.Errorf("null pct on empty dataset = %v", p.NullPercentage)
	}
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 100}
	if got := Quantile(sorted, 0.25); math.Abs(got-2.25) > 1e-9 {
		t.Errorf("q1 = %v, want 2.25", got)
	}
	if got := Quantile(sorted, 0.75); math.Abs(got-4.75) > 1e-9 {
		t.Errorf("q3 = %v, want 4.75", got)
	}
	if got := Quantile(sorted, 0); got != 1 {
		t.Errorf("q0 = %v", got)
	}
	if got := Quantile(sorted, 1); got != 100 {
		t.Errorf("q100 = %v", got)
	}
	if got := Quantile(nil, 0.5); got != 0 {
		t.Errorf("empty quantile = %v", got)
	}
}

func TestProfileStdSample(t *testing.T) {
	ds := mustDataset(t, dataset.Column{Name: "x", Kind: dataset.KindFloat, Values: []dataset.Value{
		dataset.FloatValue(2), dataset.FloatValue(4), dataset.FloatValue(4),
		dataset.FloatValue(4), dataset.FloatValue(5), dataset.FloatValue(5),
		dataset.FloatValue(7), dataset.FloatValue(9),
	}})
	profiles, _ := Profile(ds)
	st := profiles["x"].Statistics
	if st == nil {
		t.Fatal("missing statistics")
	}
	// Sample (n-1) standard deviation.
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(st.Std-want) > 1e-9 {
		t.Errorf("std = %v, want %v", st.Std, want)
	}
}
