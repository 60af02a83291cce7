package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindDate
	KindTime
	// KindOpaque holds something a source could not map to a scalar.
	KindOpaque
)

var kindNames = map[Kind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindDate:   "date",
	KindTime:   "time",
	KindOpaque: "opaque",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

const DateLayout = "2006-01-02"

// Value is one field value of a job record. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
	raw  any
}

func Null() Value            { return Value{kind: KindNull} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func Opaque(raw any) Value   { return Value{kind: KindOpaque, raw: raw} }

// Date keeps only the calendar day of t.
func Date(t time.Time) Value {
	return Value{kind: KindDate, t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and RFC 3339 instants.
func ParseDate(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date(t), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Time(t), true
	}
	return Value{}, false
}

func (v Value) Kind() Kind         { return v.kind }
func (v Value) Present() bool      { return v.kind != KindAbsent }
func (v Value) IsNull() bool       { return v.kind == KindNull || v.kind == KindAbsent }
func (v Value) Str() string        { return v.str }
func (v Value) Num() float64       { return v.num }
func (v Value) Truth() bool        { return v.b }
func (v Value) Instant() time.Time { return v.t }
func (v Value) Raw() any           { return v.raw }

// IsNaNLike reports a NaN number, or a string that is blank or spells "nan".
func (v Value) IsNaNLike() bool {
	switch v.kind {
	case KindNumber:
		return math.IsNaN(v.num)
	case KindString:
		return strings.TrimSpace(v.str) == "" || strings.EqualFold(v.str, "nan")
	}
	return false
}

// Normalize rewrites NaN-like values to an explicit null.
func Normalize(v Value) Value {
	if v.IsNaNLike() {
		return Null()
	}
	return v
}

// Text is the canonical textual form used by both export formats.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format(DateLayout)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindOpaque:
		return fmt.Sprint(v.raw)
	}
	return ""
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	return v.Text() == o.Text()
}

func (v Value) String() string {
	if v.IsNull() {
		return v.kind.String()
	}
	return v.Text()
}

// UnsupportedValueError means a value reached the document writer that it
// refuses to encode. It signals a gap in cleaning, not bad input.
type UnsupportedValueError struct {
	Field  string
	Kind   Kind
	Detail string
}

func (e *UnsupportedValueError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unsupported %s value: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("unsupported %s value in field %q: %s", e.Kind, e.Field, e.Detail)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent, KindNull:
		return []byte("null"), nil
	case KindString:
		return quote(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, &UnsupportedValueError{Kind: v.kind, Detail: "non-finite number " + v.Text()}
		}
		return []byte(v.Text()), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindDate, KindTime:
		return quote(v.Text())
	case KindOpaque:
		return nil, &UnsupportedValueError{Kind: v.kind, Detail: fmt.Sprintf("type %T", v.raw)}
	}
	return nil, &UnsupportedValueError{Kind: v.kind, Detail: "unknown kind"}
}

func quote(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FromAny maps a decoded JSON value onto a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case bool:
		return Bool(t)
	case time.Time:
		return Time(t)
	case []any:
		return fromList(t)
	}
	return Opaque(x)
}

func fromList(xs []any) Value {
	if len(xs) == 0 {
		return Null()
	}
	parts := make([]string, 0, len(xs))
	for _, x := range xs {
		v := FromAny(x)
		switch v.kind {
		case KindString, KindNumber, KindBool:
			parts = append(parts, v.Text())
		case KindNull:
		default:
			return Opaque(xs)
		}
	}
	if len(parts) == 0 {
		return Null()
	}
	return String(strings.Join(parts, ", "))
}
