package orm

import (
	"reflect"
	"sort"
	"time"
)

// Values maps attribute names to the values a record is built from.
type Values map[string]any

// Record is a table-bound set of attribute values. An attribute that was
// never set, or was set to nil, is absent and is never serialized.
type Record struct {
	table  *Table
	values map[string]any
}

// NewRecord validates values against the table schema and returns a record
// holding them. Nothing is stored unless every value is valid.
func (t *Table) NewRecord(values Values) (*Record, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !t.schema.Has(name) {
			return nil, &UnknownFieldError{Table: t.id, Attribute: name}
		}
	}

	staged := make(map[string]any, len(values))
	for _, name := range names {
		v, present, err := t.check(name, values[name])
		if err != nil {
			return nil, err
		}
		if present {
			staged[name] = v
		}
	}

	return &Record{table: t, values: staged}, nil
}

// MustRecord is like NewRecord but panics on error.
func (t *Table) MustRecord(values Values) *Record {
	r, err := t.NewRecord(values)
	if err != nil {
		panic(err)
	}
	return r
}

// check resolves name and normalizes v for its field. A nil v is reported
// as not present.
func (t *Table) check(name string, v any) (any, bool, error) {
	f, err := t.Field(name)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false, nil
		}
		v = rv.Elem().Interface()
	}

	n, ok := f.normalize(v)
	if !ok {
		return nil, false, &InvalidValueError{Attribute: name, Type: f.Type, Value: v}
	}
	return n, true, nil
}

// Table returns the table the record belongs to.
func (r *Record) Table() *Table {
	return r.table
}

// Set validates v and stores it under name. A nil v unsets the attribute.
func (r *Record) Set(name string, v any) error {
	n, present, err := r.table.check(name, v)
	if err != nil {
		return err
	}
	if !present {
		delete(r.values, name)
		return nil
	}
	r.values[name] = n
	return nil
}

// Unset makes the attribute absent.
func (r *Record) Unset(name string) error {
	if _, err := r.table.Field(name); err != nil {
		return err
	}
	delete(r.values, name)
	return nil
}

// Lookup returns the value stored under name and whether it is present.
func (r *Record) Lookup(name string) (any, bool, error) {
	if _, err := r.table.Field(name); err != nil {
		return nil, false, err
	}
	v, ok := r.values[name]
	return v, ok, nil
}

// Get returns the value stored under name, or nil when absent or unknown.
func (r *Record) Get(name string) any {
	return r.values[name]
}

// IsSet reports whether name holds a value.
func (r *Record) IsSet(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Attributes returns the set attribute names in schema order.
func (r *Record) Attributes() []string {
	out := make([]string, 0, len(r.values))
	for _, name := range r.table.schema.Attributes() {
		if _, ok := r.values[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Values returns a copy of the set attributes.
func (r *Record) Values() Values {
	out := make(Values, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Equal reports whether both records belong to the same table and hold the
// same attributes with equal values.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.table != other.table || len(r.values) != len(other.values) {
		return false
	}
	for name, v := range r.values {
		ov, ok := other.values[name]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
		return false
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
