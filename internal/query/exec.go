package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/schema"
)

// The generated snippet is a closed pipeline, not code: a fixed operation
// vocabulary parsed and evaluated structurally. Nothing outside this grammar
// can execute, which is what makes the textual denylist a screen rather than
// the boundary.
//
//	result = op | op | ...
//
// Operations: select(col,...), filter(col <cmp> value), groupby(col, agg(col)),
// sort(col[, desc]), head(n), count(), summary(), and scalar terminals
// sum(col), mean(col), min(col), max(col).

// Pipeline is a parsed query ready to run against a dataset.
type Pipeline struct {
	ops []operation
}

type operation interface {
	apply(ds *dataset.Dataset) (*dataset.Dataset, error)
}

var aggFuncs = map[string]bool{"sum": true, "mean": true, "min": true, "max": true, "count": true}

// Parse parses a generated snippet of the form "result = op | op | ...".
func Parse(snippet string) (*Pipeline, error) {
	s := strings.TrimSpace(snippet)
	rest, ok := strings.CutPrefix(s, "result")
	if !ok {
		return nil, fmt.Errorf("snippet must assign into 'result'")
	}
	rest = strings.TrimSpace(rest)
	rest, ok = strings.CutPrefix(rest, "=")
	if !ok {
		return nil, fmt.Errorf("snippet must assign into 'result'")
	}
	parts := strings.Split(rest, "|")
	p := &Pipeline{}
	for _, part := range parts {
		op, err := parseOp(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		p.ops = append(p.ops, op)
	}
	if len(p.ops) == 0 {
		return nil, fmt.Errorf("empty pipeline")
	}
	return p, nil
}

// Run evaluates the pipeline against ds and returns the result table.
// The caller passes a defensive copy; operations themselves are
// non-mutating regardless.
func (p *Pipeline) Run(ds *dataset.Dataset) (*dataset.Dataset, error) {
	cur := ds
	for _, op := range p.ops {
		next, err := op.apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func parseOp(s string) (operation, error) {
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("malformed operation %q", s)
	}
	name := strings.ToLower(strings.TrimSpace(s[:open]))
	argstr := strings.TrimSpace(s[open+1 : len(s)-1])
	switch name {
	case "select":
		cols := splitArgs(argstr)
		if len(cols) == 0 {
			return nil, fmt.Errorf("select needs at least one column")
		}
		return selectOp{cols: cols}, nil
	case "filter":
		return parseFilter(argstr)
	case "groupby":
		return parseGroupBy(argstr)
	case "sort":
		args := splitArgs(argstr)
		if len(args) == 0 || len(args) > 2 {
			return nil, fmt.Errorf("sort takes a column and optional desc")
		}
		desc := false
		if len(args) == 2 {
			if !strings.EqualFold(args[1], "desc") {
				return nil, fmt.Errorf("sort: unknown modifier %q", args[1])
			}
			desc = true
		}
		col := args[0]
		// Accept sort(-col) as shorthand for descending.
		if strings.HasPrefix(col, "-") {
			col = strings.TrimPrefix(col, "-")
			desc = true
		}
		return sortOp{col: col, desc: desc}, nil
	case "head":
		n, err := strconv.Atoi(argstr)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("head takes a non-negative integer")
		}
		return headOp{n: n}, nil
	case "count":
		if argstr != "" {
			return nil, fmt.Errorf("count takes no arguments")
		}
		return countOp{}, nil
	case "summary":
		if argstr != "" {
			return nil, fmt.Errorf("summary takes no arguments")
		}
		return summaryOp{}, nil
	case "sum", "mean", "min", "max":
		col := unquote(argstr)
		if col == "" {
			return nil, fmt.Errorf("%s takes a column", name)
		}
		return aggOp{fn: name, col: col}, nil
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, unquote(p))
	}
	return out
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// ---- select ----

type selectOp struct{ cols []string }

func (o selectOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	return ds.SelectColumns(o.cols)
}

// ---- filter ----

type filterOp struct {
	col, cmp string
	lit      string
}

var cmpOperators = []string{">=", "<=", "==", "!=", ">", "<"}

func parseFilter(arg string) (operation, error) {
	if i := strings.Index(arg, " contains "); i > 0 {
		return filterOp{col: unquote(arg[:i]), cmp: "contains", lit: unquote(arg[i+len(" contains "):])}, nil
	}
	for _, op := range cmpOperators {
		if i := strings.Index(arg, op); i > 0 {
			return filterOp{col: unquote(arg[:i]), cmp: op, lit: unquote(arg[i+len(op):])}, nil
		}
	}
	return nil, fmt.Errorf("filter: no comparison in %q", arg)
}

func (o filterOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	col, ok := ds.Column(o.col)
	if !ok {
		return nil, fmt.Errorf("no column %q", o.col)
	}
	litNum, litIsNum := parseFloat(o.lit)
	var keep []int
	for i, v := range col.Values {
		if v.Null {
			continue
		}
		match, err := o.match(v, litNum, litIsNum)
		if err != nil {
			return nil, err
		}
		if match {
			keep = append(keep, i)
		}
	}
	return ds.SelectRows(keep), nil
}

func (o filterOp) match(v dataset.Value, litNum float64, litIsNum bool) (bool, error) {
	if x, ok := v.Num(); ok && litIsNum {
		switch o.cmp {
		case "==":
			return x == litNum, nil
		case "!=":
			return x != litNum, nil
		case ">":
			return x > litNum, nil
		case ">=":
			return x >= litNum, nil
		case "<":
			return x < litNum, nil
		case "<=":
			return x <= litNum, nil
		case "contains":
			return strings.Contains(v.String(), o.lit), nil
		}
		return false, fmt.Errorf("filter: unknown comparison %q", o.cmp)
	}
	s := v.String()
	switch o.cmp {
	case "==":
		return s == o.lit, nil
	case "!=":
		return s != o.lit, nil
	case ">":
		return s > o.lit, nil
	case ">=":
		return s >= o.lit, nil
	case "<":
		return s < o.lit, nil
	case "<=":
		return s <= o.lit, nil
	case "contains":
		return strings.Contains(strings.ToLower(s), strings.ToLower(o.lit)), nil
	}
	return false, fmt.Errorf("filter: unknown comparison %q", o.cmp)
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ---- groupby ----

type groupByOp struct {
	key    string
	fn     string
	target string
}

func parseGroupBy(arg string) (operation, error) {
	args := splitTopLevel(arg)
	if len(args) != 2 {
		return nil, fmt.Errorf("groupby takes a key column and an aggregate")
	}
	key := unquote(args[0])
	agg := strings.TrimSpace(args[1])
	open := strings.Index(agg, "(")
	if open < 0 || !strings.HasSuffix(agg, ")") {
		return nil, fmt.Errorf("groupby: malformed aggregate %q", agg)
	}
	fn := strings.ToLower(strings.TrimSpace(agg[:open]))
	if !aggFuncs[fn] {
		return nil, fmt.Errorf("groupby: unknown aggregate %q", fn)
	}
	target := unquote(agg[open+1 : len(agg)-1])
	if fn != "count" && target == "" {
		return nil, fmt.Errorf("groupby: %s needs a column", fn)
	}
	return groupByOp{key: key, fn: fn, target: target}, nil
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func (o groupByOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	key, ok := ds.Column(o.key)
	if !ok {
		return nil, fmt.Errorf("no column %q", o.key)
	}
	var target dataset.Column
	if o.fn != "count" {
		target, ok = ds.Column(o.target)
		if !ok {
			return nil, fmt.Errorf("no column %q", o.target)
		}
		if !target.Kind.Numeric() {
			return nil, fmt.Errorf("%s requires a numeric column, %q is %s", o.fn, o.target, target.Kind)
		}
	}
	type acc struct {
		sum      float64
		min, max float64
		n        int
	}
	groups := make(map[string]*acc)
	var order []string
	for i := range key.Values {
		kv := key.Values[i]
		if kv.Null {
			continue
		}
		k := kv.String()
		a, seen := groups[k]
		if !seen {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		if o.fn == "count" {
			a.n++
			continue
		}
		x, okNum := target.Values[i].Num()
		if !okNum {
			continue
		}
		if a.n == 0 || x < a.min {
			a.min = x
		}
		if a.n == 0 || x > a.max {
			a.max = x
		}
		a.sum += x
		a.n++
	}
	sort.Strings(order)
	keys := make([]dataset.Value, 0, len(order))
	vals := make([]dataset.Value, 0, len(order))
	for _, k := range order {
		a := groups[k]
		keys = append(keys, dataset.TextValue(k))
		switch o.fn {
		case "count":
			vals = append(vals, dataset.IntValue(int64(a.n)))
		case "sum":
			vals = append(vals, dataset.FloatValue(a.sum))
		case "mean":
			if a.n == 0 {
				vals = append(vals, dataset.NullValue())
			} else {
				vals = append(vals, dataset.FloatValue(a.sum/float64(a.n)))
			}
		case "min":
			if a.n == 0 {
				vals = append(vals, dataset.NullValue())
			} else {
				vals = append(vals, dataset.FloatValue(a.min))
			}
		case "max":
			if a.n == 0 {
				vals = append(vals, dataset.NullValue())
			} else {
				vals = append(vals, dataset.FloatValue(a.max))
			}
		}
	}
	outName := o.fn
	outKind := dataset.KindFloat
	if o.fn == "count" {
		outKind = dataset.KindInt
	} else {
		outName = o.fn + "_" + o.target
	}
	return dataset.New(
		dataset.Column{Name: o.key, Kind: dataset.KindText, Values: keys},
		dataset.Column{Name: outName, Kind: outKind, Values: vals},
	)
}

// ---- sort ----

type sortOp struct {
	col  string
	desc bool
}

func (o sortOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	col, ok := ds.Column(o.col)
	if !ok {
		return nil, fmt.Errorf("no column %q", o.col)
	}
	idx := make([]int, ds.NumRows())
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b int) bool {
		va, vb := col.Values[a], col.Values[b]
		// Nulls sort last regardless of direction.
		if va.Null || vb.Null {
			return !va.Null
		}
		if xa, ok := va.Num(); ok {
			if xb, ok := vb.Num(); ok {
				if o.desc {
					return xa > xb
				}
				return xa < xb
			}
		}
		if o.desc {
			return va.String() > vb.String()
		}
		return va.String() < vb.String()
	}
	sort.SliceStable(idx, less)
	return ds.SelectRows(idx), nil
}

// ---- head ----

type headOp struct{ n int }

func (o headOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	n := o.n
	if n > ds.NumRows() {
		n = ds.NumRows()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return ds.SelectRows(idx), nil
}

// ---- count ----

type countOp struct{}

func (countOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	return scalarTable(dataset.IntValue(int64(ds.NumRows())), dataset.KindInt)
}

// ---- summary ----

type summaryOp struct{}

func (summaryOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	profiles, _ := schema.Profile(ds)
	var names, means, medians, mins, maxs, stds []dataset.Value
	for _, colName := range ds.ColumnNames() {
		p := profiles[colName]
		if p.Statistics == nil {
			continue
		}
		st := p.Statistics
		names = append(names, dataset.TextValue(colName))
		means = append(means, dataset.FloatValue(st.Mean))
		medians = append(medians, dataset.FloatValue(st.Median))
		mins = append(mins, dataset.FloatValue(st.Min))
		maxs = append(maxs, dataset.FloatValue(st.Max))
		stds = append(stds, dataset.FloatValue(st.Std))
	}
	return dataset.New(
		dataset.Column{Name: "column", Kind: dataset.KindText, Values: names},
		dataset.Column{Name: "mean", Kind: dataset.KindFloat, Values: means},
		dataset.Column{Name: "median", Kind: dataset.KindFloat, Values: medians},
		dataset.Column{Name: "min", Kind: dataset.KindFloat, Values: mins},
		dataset.Column{Name: "max", Kind: dataset.KindFloat, Values: maxs},
		dataset.Column{Name: "std", Kind: dataset.KindFloat, Values: stds},
	)
}

// ---- scalar aggregates ----

type aggOp struct {
	fn  string
	col string
}

func (o aggOp) apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	col, ok := ds.Column(o.col)
	if !ok {
		return nil, fmt.Errorf("no column %q", o.col)
	}
	if !col.Kind.Numeric() {
		return nil, fmt.Errorf("%s requires a numeric column, %q is %s", o.fn, o.col, col.Kind)
	}
	var sum, minV, maxV float64
	n := 0
	for _, v := range col.Values {
		x, okNum := v.Num()
		if !okNum {
			continue
		}
		if n == 0 || x < minV {
			minV = x
		}
		if n == 0 || x > maxV {
			maxV = x
		}
		sum += x
		n++
	}
	if n == 0 {
		return scalarTable(dataset.NullValue(), dataset.KindFloat)
	}
	switch o.fn {
	case "sum":
		return scalarTable(dataset.FloatValue(sum), dataset.KindFloat)
	case "mean":
		return scalarTable(dataset.FloatValue(sum/float64(n)), dataset.KindFloat)
	case "min":
		return scalarTable(dataset.FloatValue(minV), dataset.KindFloat)
	case "max":
		return scalarTable(dataset.FloatValue(maxV), dataset.KindFloat)
	}
	return nil, fmt.Errorf("unknown aggregate %q", o.fn)
}

// scalarTable boxes a scalar into a one-row one-column table.
func scalarTable(v dataset.Value, kind dataset.Kind) (*dataset.Dataset, error) {
	return dataset.New(dataset.Column{Name: "result", Kind: kind, Values: []dataset.Value{v}})
}
