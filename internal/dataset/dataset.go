// Package dataset defines the in-memory tabular model shared by every
// pipeline pass: an ordered set of named, equal-length columns whose cells
// are tagged-variant values. Heuristics dispatch on the column Kind tag
// rather than probing runtime types.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column is a named, homogeneously-typed sequence of values. Individual
// cells may still be null.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Dataset is an ordered sequence of named columns of equal length.
type Dataset struct {
	cols []Column
}

// New builds a dataset from columns. All columns must share the same length
// and carry unique names.
func New(cols ...Column) (*Dataset, error) {
	d := &Dataset{}
	for _, c := range cols {
		if err := d.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddColumn appends a column, enforcing the shape invariants.
func (d *Dataset) AddColumn(c Column) error {
	if c.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if d.HasColumn(c.Name) {
		return fmt.Errorf("duplicate column name %q", c.Name)
	}
	if len(d.cols) > 0 && len(c.Values) != d.NumRows() {
		return fmt.Errorf("column %q has %d rows, dataset has %d", c.Name, len(c.Values), d.NumRows())
	}
	d.cols = append(d.cols, c)
	return nil
}

// NumRows returns the row count (0 for an empty dataset).
func (d *Dataset) NumRows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0].Values)
}

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the columns in order. The slice header is shared; callers
// that intend to mutate must Clone first.
func (d *Dataset) Columns() []Column { return d.cols }

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether a column with the given name exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// SetColumn replaces the named column's kind and values in place.
func (d *Dataset) SetColumn(name string, kind Kind, values []Value) error {
	for i := range d.cols {
		if d.cols[i].Name == name {
			if len(values) != d.NumRows() {
				return fmt.Errorf("column %q: %d values for %d rows", name, len(values), d.NumRows())
			}
			d.cols[i].Kind = kind
			d.cols[i].Values = values
			return nil
		}
	}
	return fmt.Errorf("no column %q", name)
}

// Clone returns a deep copy. Pipeline passes that mutate operate on clones so
// the caller's dataset is never aliased.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{cols: make([]Column, len(d.cols))}
	for i, c := range d.cols {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// RowKey renders row i as a canonical string across all columns, used for
// exact-duplicate detection.
func (d *Dataset) RowKey(i int) string {
	var b strings.Builder
	for j, c := range d.cols {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.Values[i].Key())
	}
	return b.String()
}

// SelectRows returns a new dataset keeping only the given row indices, in
// the given order.
func (d *Dataset) SelectRows(idx []int) *Dataset {
	out := &Dataset{cols: make([]Column, len(d.cols))}
	for i, c := range d.cols {
		vals := make([]Value, 0, len(idx))
		for _, r := range idx {
			vals = append(vals, c.Values[r])
		}
		out.cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return out
}

// SelectColumns returns a new dataset keeping only the named columns, in the
// requested order.
func (d *Dataset) SelectColumns(names []string) (*Dataset, error) {
	out := &Dataset{}
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, fmt.Errorf("no column %q", n)
		}
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.cols = append(out.cols, Column{Name: c.Name, Kind: c.Kind, Values: vals})
	}
	return out, nil
}

// WriteCSV renders the dataset to w with a header row. Nulls render empty.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(d.cols))
	for r := 0; r < d.NumRows(); r++ {
		for j, c := range d.cols {
			rec[j] = c.Values[r].String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// String renders a compact head preview for terminal output.
func (d *Dataset) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(d.ColumnNames(), " | "))
	b.WriteByte('\n')
	limit := d.NumRows()
	if limit > 10 {
		limit = 10
	}
	for r := 0; r < limit; r++ {
		parts := make([]string, len(d.cols))
		for j, c := range d.cols {
			parts[j] = c.Values[r].String()
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteByte('\n')
	}
	if d.NumRows() > limit {
		fmt.Fprintf(&b, "... (%d rows total)\n", d.NumRows())
	}
	return b.String()
}
