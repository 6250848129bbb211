package orm

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Field describes one column of a Quickbase table.
type Field struct {
	ID    int       `json:"id"`
	Type  FieldType `json:"fieldType"`
	Label string    `json:"label,omitempty"`
}

// NewField creates a field descriptor.
func NewField(id int, typ FieldType) Field {
	return Field{ID: id, Type: typ}
}

// WithLabel returns a copy of the field with its display name set.
func (f Field) WithLabel(label string) Field {
	f.Label = label
	return f
}

// Key returns the field id as used in wire payloads.
func (f Field) Key() string {
	return strconv.Itoa(f.ID)
}

func (f Field) String() string {
	if f.Label != "" {
		return fmt.Sprintf("%d: %s (%s)", f.ID, f.Label, f.Type)
	}
	return fmt.Sprintf("%d: %s", f.ID, f.Type)
}

const literalDateLayout = "01-02-2006"

// Literal formats v as a where-string literal. Dates become 'MM-DD-YYYY',
// numbers and booleans are bare and everything else is single quoted.
// A nil value, or a nil pointer, is the empty literal ''.
func (f Field) Literal(v any) string {
	if v == nil {
		return "''"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "''"
		}
		v = rv.Elem().Interface()
	}

	switch x := v.(type) {
	case time.Time:
		return "'" + x.Format(literalDateLayout) + "'"
	case time.Duration:
		return strconv.FormatInt(x.Milliseconds(), 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case string:
		return "'" + x + "'"
	case fmt.Stringer:
		return "'" + x.String() + "'"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return "'" + fmt.Sprint(v) + "'"
}

// normalize checks that v fits the field's value kind and returns the form
// stored in records: int64 or float64 for numbers, UTC midnight for dates,
// and millisecond precision for date/times and durations, as on the wire.
func (f Field) normalize(v any) (any, bool) {
	switch f.Type.Kind() {
	case KindText:
		switch x := v.(type) {
		case string:
			return x, true
		case fmt.Stringer:
			return x.String(), true
		}
		return nil, false
	case KindNumeric:
		return normalizeNumber(v)
	case KindDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, false
		}
		return civilDate(t), true
	case KindDateTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, false
		}
		return t.UTC().Truncate(time.Millisecond), true
	case KindDuration:
		d, ok := v.(time.Duration)
		return d.Truncate(time.Millisecond), ok
	case KindBoolean:
		b, ok := v.(bool)
		return b, ok
	case KindList:
		switch x := v.(type) {
		case []string:
			out := make([]any, len(x))
			for i, s := range x {
				out[i] = s
			}
			return out, true
		case []any:
			return x, true
		}
		return nil, false
	default:
		return v, true
	}
}

func normalizeNumber(v any) (any, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return nil, false
	}
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
