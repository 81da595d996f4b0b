package dataset

import (
	"strings"
	"testing"
	"time"
)

func intCol(name string, vals ...int64) Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = IntValue(v)
	}
	return Column{Name: name, Kind: KindInt, Values: vs}
}

func textCol(name string, vals ...string) Column {
	vs := make([]Value, len(vals))
	for i, v := range vals {
		vs[i] = TextValue(v)
	}
	return Column{Name: name, Kind: KindText, Values: vs}
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(intCol("a", 1, 2, 3), intCol("b", 1, 2))
	if err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(intCol("a", 1), intCol("a", 2))
	if err == nil {
		t.Fatal("expected error for duplicate column name")
	}
}

func TestCloneIsDeep(t *testing.T) {
	ds, err := New(intCol("a", 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	cp := ds.Clone()
	if err := cp.SetColumn("a", KindInt, []Value{IntValue(9), IntValue(9), IntValue(9)}); err != nil {
		t.Fatal(err)
	}
	orig, _ := ds.Column("a")
	if orig.Values[0].Int() != 1 {
		t.Errorf("clone mutation leaked into original: got %d", orig.Values[0].Int())
	}
}

func TestRowKeyDistinguishesNullFromEmpty(t *testing.T) {
	ds, err := New(Column{Name: "a", Kind: KindText, Values: []Value{NullValue(), TextValue("")}})
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowKey(0) == ds.RowKey(1) {
		t.Error("null and empty text rows must have distinct keys")
	}
}

func TestRowKeyKeepsSubSecondPrecision(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ds, err := New(Column{Name: "ts", Kind: KindTime, Values: []Value{
		TimeValue(base.Add(500 * time.Millisecond)),
		TimeValue(base.Add(600 * time.Millisecond)),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowKey(0) == ds.RowKey(1) {
		t.Error("timestamps differing only in sub-second digits must have distinct keys")
	}
	// Display stays second-resolution; only the comparison key is lossless.
	if got := TimeValue(base.Add(500 * time.Millisecond)).String(); got != "2024-01-01 10:00:00" {
		t.Errorf("display = %q", got)
	}
}

func TestSelectRowsPreservesOrder(t *testing.T) {
	ds, err := New(intCol("a", 10, 20, 30, 40))
	if err != nil {
		t.Fatal(err)
	}
	out := ds.SelectRows([]int{3, 1})
	col, _ := out.Column("a")
	if col.Values[0].Int() != 40 || col.Values[1].Int() != 20 {
		t.Errorf("unexpected row order: %v, %v", col.Values[0], col.Values[1])
	}
}

func TestSelectColumnsUnknownName(t *testing.T) {
	ds, err := New(intCol("a", 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ds.SelectColumns([]string{"missing"}); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestWriteCSVRendersNullsEmpty(t *testing.T) {
	ds, err := New(
		Column{Name: "a", Kind: KindInt, Values: []Value{IntValue(1), NullValue()}},
		textCol("b", "x", "y"),
	)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := ds.WriteCSV(&b); err != nil {
		t.Fatal(err)
	}
	want := "a,b\n1,x\n,y\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}

func TestValueStringFormats(t *testing.T) {
	midnight := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	noon := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	cases := []struct {
		v    Value
		want string
	}{
		{NullValue(), ""},
		{IntValue(-5), "-5"},
		{FloatValue(2.5), "2.5"},
		{BoolValue(true), "true"},
		{TimeValue(midnight), "2024-03-01"},
		{TimeValue(noon), "2024-03-01 12:30:00"},
		{CategoryValue("North"), "North"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if !NullValue().Equal(NullValue()) {
		t.Error("two nulls must compare equal")
	}
	if NullValue().Equal(IntValue(0)) {
		t.Error("null must not equal zero")
	}
	if IntValue(1).Equal(FloatValue(1)) {
		t.Error("kinds must match for equality")
	}
}
