package orm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	wireDateLayout     = "2006-01-02"
	wireDateTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// WireValue is the {"value": v} envelope Quickbase uses for every cell.
type WireValue struct {
	Value any `json:"value"`
}

// WireRecord is one record as exchanged with the API, keyed by field id.
type WireRecord map[string]WireValue

// UpsertRequest is the body of POST /records.
type UpsertRequest struct {
	To             string       `json:"to"`
	Data           []WireRecord `json:"data"`
	MergeFieldID   int          `json:"mergeFieldId,omitempty"`
	FieldsToReturn []int        `json:"fieldsToReturn,omitempty"`
}

// UpsertOption configures an UpsertRequest.
type UpsertOption func(*UpsertRequest)

// WithMergeField makes the upsert match existing records on field id.
func WithMergeField(id int) UpsertOption {
	return func(u *UpsertRequest) {
		u.MergeFieldID = id
	}
}

// WithFieldsToReturn asks the API to echo the given fields of written records.
func WithFieldsToReturn(ids ...int) UpsertOption {
	return func(u *UpsertRequest) {
		u.FieldsToReturn = append(u.FieldsToReturn, ids...)
	}
}

// EncodeRecord converts the set attributes of r to their wire form.
func EncodeRecord(r *Record) (WireRecord, error) {
	out := make(WireRecord, len(r.values))
	for name, v := range r.values {
		f, err := r.table.Field(name)
		if err != nil {
			return nil, err
		}
		out[f.Key()] = WireValue{Value: f.Encode(v)}
	}
	return out, nil
}

// Encode returns the JSON form of a value stored for this field: dates as
// YYYY-MM-DD, date/times as RFC 3339 UTC with milliseconds and durations as
// milliseconds.
func (f Field) Encode(v any) any {
	switch f.Type.Kind() {
	case KindDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(wireDateLayout)
		}
	case KindDateTime:
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(wireDateTimeLayout)
		}
	case KindDuration:
		if d, ok := v.(time.Duration); ok {
			return d.Milliseconds()
		}
	}
	return v
}

// NewUpsert builds the upsert body for records of table t.
func NewUpsert(t *Table, records []*Record, opts ...UpsertOption) (*UpsertRequest, error) {
	req := &UpsertRequest{
		To:   t.id,
		Data: make([]WireRecord, 0, len(records)),
	}
	for _, r := range records {
		if r.table != t {
			return nil, fmt.Errorf("%w: record of %s cannot be written to %s", ErrTableMismatch, r.table.id, t.id)
		}
		w, err := EncodeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		req.Data = append(req.Data, w)
	}
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// ParseRows decodes a JSON array of wire records, keeping numbers as
// json.Number.
func ParseRows(data []byte) ([]WireRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []WireRecord
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

// DecodeRecord builds a record of table t from a wire row. Keys that are not
// field ids of t are ignored; null values are left absent.
func DecodeRecord(t *Table, row WireRecord) (*Record, error) {
	r := &Record{table: t, values: make(map[string]any, len(row))}
	for key, cell := range row {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		name, err := t.schema.Attr(id)
		if err != nil {
			continue
		}
		if cell.Value == nil {
			continue
		}
		f := t.schema.attrs[t.schema.byID[id]].Field
		v, ok := decodeValue(f, cell.Value)
		if !ok {
			return nil, &InvalidValueError{Attribute: name, Type: f.Type, Value: cell.Value}
		}
		r.values[name] = v
	}
	return r, nil
}

// DecodeRecords decodes every row with DecodeRecord.
func DecodeRecords(t *Table, rows []WireRecord) ([]*Record, error) {
	out := make([]*Record, 0, len(rows))
	for i, row := range rows {
		r, err := DecodeRecord(t, row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeValue(f Field, v any) (any, bool) {
	switch f.Type.Kind() {
	case KindText:
		s, ok := v.(string)
		return s, ok
	case KindNumeric:
		return normalizeNumber(v)
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		t, err := parseDate(s)
		if err != nil {
			return nil, false
		}
		return t, true
	case KindDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, false
		}
		return t.UTC().Truncate(time.Millisecond), true
	case KindDuration:
		n, ok := normalizeNumber(v)
		if !ok {
			return nil, false
		}
		switch ms := n.(type) {
		case int64:
			return time.Duration(ms) * time.Millisecond, true
		case float64:
			return time.Duration(ms * float64(time.Millisecond)).Truncate(time.Millisecond), true
		}
		return nil, false
	case KindBoolean:
		b, ok := v.(bool)
		return b, ok
	case KindList:
		l, ok := v.([]any)
		return l, ok
	default:
		return v, true
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(wireDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return civilDate(t), nil
}
