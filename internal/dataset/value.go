package dataset

import (
	"strconv"
	"time"
)

// Kind tags the physical storage type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
	KindBool
	KindTime
	KindCategorical
)

// String returns the kind name used in profiles, reports, and prompts.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindTime:
		return "timestamp"
	case KindCategorical:
		return "categorical"
	}
	return "unknown"
}

// Numeric reports whether the kind carries numeric values.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Value is a tagged-variant cell. The zero Value is a null.
type Value struct {
	Null bool
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

// Null value constructor.
func NullValue() Value { return Value{Null: true} }

func IntValue(v int64) Value       { return Value{kind: KindInt, i: v} }
func FloatValue(v float64) Value   { return Value{kind: KindFloat, f: v} }
func TextValue(v string) Value     { return Value{kind: KindText, s: v} }
func BoolValue(v bool) Value       { return Value{kind: KindBool, b: v} }
func TimeValue(v time.Time) Value  { return Value{kind: KindTime, t: v} }
func CategoryValue(v string) Value { return Value{kind: KindCategorical, s: v} }

// Kind returns the value's tag. Meaningless for nulls.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload.
func (v Value) Float() float64 { return v.f }

// Text returns the text or categorical payload.
func (v Value) Text() string { return v.s }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Time returns the timestamp payload.
func (v Value) Time() time.Time { return v.t }

// Num returns the value as a float64 for numeric cells.
func (v Value) Num() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// String renders the value for display and CSV export. Null renders empty.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return v.s
	}
}

// Key renders the value for exact-equality comparison. Unlike String it
// distinguishes null from empty text and keeps full timestamp precision;
// the display format would collapse timestamps differing only in
// sub-second digits.
func (v Value) Key() string {
	if v.Null {
		return "\x00"
	}
	if v.kind == KindTime {
		return strconv.FormatInt(v.t.UnixNano(), 10)
	}
	return v.String()
}

// Equal reports exact value equality, treating two nulls as equal.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return v.s == o.s
	}
}
