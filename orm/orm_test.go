package orm

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testApp = App{ID: "abcdefg", Name: "Test App", RealmHostname: "example.quickbase.com"}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	schema, err := NewSchema(
		Define("name", NewField(6, TypeText)),
		Define("count", NewField(7, TypeNumeric)),
		Define("due", NewField(8, TypeDate)),
		Define("updated", NewField(9, TypeDateTime)),
		Define("elapsed", NewField(10, TypeDuration)),
		Define("done", NewField(11, TypeCheckbox)),
		Define("tags", NewField(12, TypeMultiSelectText)),
	)
	require.NoError(t, err)

	table, err := NewTable("aaaaaa", testApp, schema,
		WithTableName("Tasks"),
		WithReports(Report{ID: 1, Name: "Report A"}),
	)
	require.NoError(t, err)
	return table
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		input   string
		want    FieldType
		kind    ValueKind
		wantErr bool
	}{
		{"text", TypeText, KindText, false},
		{"Numeric", TypeNumeric, KindNumeric, false},
		{" date ", TypeDate, KindDate, false},
		{"timestamp", TypeDateTime, KindDateTime, false},
		{"checkbox", TypeCheckbox, KindBoolean, false},
		{"multitext", TypeMultiSelectText, KindList, false},
		{"user", TypeUser, KindOpaque, false},
		{"formula-magic", "", KindOpaque, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFieldType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}

func TestFieldLiteral(t *testing.T) {
	date := NewField(19, TypeDate)
	num := NewField(18, TypeNumeric)
	feb7 := time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		field Field
		value any
		want  string
	}{
		{"int", num, 19, "19"},
		{"int64", num, int64(-4), "-4"},
		{"float", num, 2.5, "2.5"},
		{"json number", num, json.Number("12.75"), "12.75"},
		{"string", num, "oops", "'oops'"},
		{"bool", NewField(3, TypeCheckbox), true, "true"},
		{"date", date, time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC), "'02-07-2020'"},
		{"datetime truncated", date, time.Date(2020, 2, 7, 13, 45, 12, 0, time.UTC), "'02-07-2020'"},
		{"duration", NewField(4, TypeDuration), 2 * time.Second, "2000"},
		{"nil", date, nil, "''"},
		{"nil date pointer", date, (*time.Time)(nil), "''"},
		{"date pointer", date, &feb7, "'02-07-2020'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Literal(tt.value))
		})
	}
}

func TestNewSchemaErrors(t *testing.T) {
	_, err := NewSchema(
		Define("a", NewField(6, TypeText)),
		Define("a", NewField(7, TypeText)),
	)
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Attribute)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = NewSchema(
		Define("a", NewField(6, TypeText)),
		Define("b", NewField(6, TypeText)),
	)
	var dupID *DuplicateFieldIDError
	require.ErrorAs(t, err, &dupID)
	assert.Equal(t, 6, dupID.FieldID)
	assert.Equal(t, [2]string{"a", "b"}, dupID.Attributes)

	_, err = NewSchema(Define("", NewField(6, TypeText)))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = NewSchema(Define("zero", NewField(0, TypeText)))
	var invalid *InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "zero", invalid.Attribute)
}

func TestSchemaLookup(t *testing.T) {
	table := newTestTable(t)
	schema := table.Schema()

	assert.Equal(t, 7, schema.Len())
	assert.Equal(t, []string{"name", "count", "due", "updated", "elapsed", "done", "tags"}, schema.Attributes())
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11, 12}, schema.FieldIDs())

	f, err := table.Field("count")
	require.NoError(t, err)
	assert.Equal(t, NewField(7, TypeNumeric), f)

	name, err := table.Attr(6)
	require.NoError(t, err)
	assert.Equal(t, "name", name)

	_, err = table.Field("missing")
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Attribute)
	assert.Equal(t, "aaaaaa", unknown.Table)

	_, err = table.Attr(99)
	assert.ErrorIs(t, err, ErrUnknownFieldID)
}

func TestTableReports(t *testing.T) {
	table := newTestTable(t)

	r, err := table.Report("Report A")
	require.NoError(t, err)
	assert.Equal(t, 1, r.ID)

	_, err = table.Report("Report B")
	assert.ErrorIs(t, err, ErrUnknownReport)

	assert.Equal(t, "abcdefg", table.AppID())
	assert.Equal(t, "example.quickbase.com", table.RealmHostname())
	assert.Equal(t, "Tasks", table.Name())

	_, err = NewTable("", testApp, table.Schema())
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestNewRecord(t *testing.T) {
	table := newTestTable(t)

	r, err := table.NewRecord(Values{"name": "hi", "count": 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count"}, r.Attributes())
	assert.Same(t, table, r.Table())

	v, ok, err := r.Lookup("count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok, err = r.Lookup("due")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, r.IsSet("due"))
}

func TestNewRecordUnknownAttribute(t *testing.T) {
	table := newTestTable(t)

	_, err := table.NewRecord(Values{"name": "hi", "zeta": 1, "alpha": 2})
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "alpha", unknown.Attribute)
}

func TestNewRecordInvalidValue(t *testing.T) {
	table := newTestTable(t)

	_, err := table.NewRecord(Values{"name": "ok", "count": "three"})
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "count", invalid.Attribute)
	assert.Equal(t, TypeNumeric, invalid.Type)
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestRecordSetAndUnset(t *testing.T) {
	table := newTestTable(t)
	r := table.MustRecord(Values{"name": "hi"})

	require.NoError(t, r.Set("count", 2.5))
	assert.Equal(t, 2.5, r.Get("count"))

	err := r.Set("count", "bad")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, 2.5, r.Get("count"), "failed set must not change the record")

	require.NoError(t, r.Set("count", nil))
	assert.False(t, r.IsSet("count"))

	require.NoError(t, r.Unset("name"))
	assert.Empty(t, r.Attributes())

	assert.ErrorIs(t, r.Unset("nope"), ErrUnknownField)
	assert.ErrorIs(t, r.Set("nope", 1), ErrUnknownField)
}

func TestRecordNormalizesDates(t *testing.T) {
	table := newTestTable(t)
	local := time.FixedZone("UTC+8", 8*3600)

	r := table.MustRecord(Values{
		"due":     time.Date(2020, 2, 7, 23, 30, 0, 0, local),
		"updated": time.Date(2020, 2, 7, 23, 30, 0, 0, local),
	})

	assert.Equal(t, time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC), r.Get("due"))
	assert.Equal(t, time.Date(2020, 2, 7, 15, 30, 0, 0, time.UTC), r.Get("updated"))
}

func TestRecordEqual(t *testing.T) {
	table := newTestTable(t)
	day := time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC)

	a := table.MustRecord(Values{"name": "x", "count": 2, "due": day})
	b := table.MustRecord(Values{"name": "x", "count": 2.0, "due": day.Add(5 * time.Hour)})
	c := table.MustRecord(Values{"name": "x", "count": 3, "due": day})
	d := table.MustRecord(Values{"name": "x", "count": 2})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	other := MustTable("bbbbbb", testApp, table.Schema())
	e := other.MustRecord(Values{"name": "x", "count": 2, "due": day})
	assert.False(t, a.Equal(e))
}

func TestEncodeRecord(t *testing.T) {
	table := newTestTable(t)

	r := table.MustRecord(Values{
		"name":    "hi",
		"count":   uint8(7),
		"due":     time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC),
		"updated": time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		"elapsed": 90 * time.Second,
		"done":    true,
		"tags":    []string{"a", "b"},
	})

	wire, err := EncodeRecord(r)
	require.NoError(t, err)

	body, err := json.Marshal(wire)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"6": {"value": "hi"},
		"7": {"value": 7},
		"8": {"value": "2020-02-07"},
		"9": {"value": "2021-03-04T05:06:07.000Z"},
		"10": {"value": 90000},
		"11": {"value": true},
		"12": {"value": ["a", "b"]}
	}`, string(body))
}

func TestNewUpsert(t *testing.T) {
	table := newTestTable(t)

	r := table.MustRecord(Values{"name": "hi"})
	req, err := NewUpsert(table, []*Record{r})
	require.NoError(t, err)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Equal(t, `{"to":"aaaaaa","data":[{"6":{"value":"hi"}}]}`, string(body))

	req, err = NewUpsert(table, []*Record{r}, WithMergeField(6), WithFieldsToReturn(6, 7))
	require.NoError(t, err)
	assert.Equal(t, 6, req.MergeFieldID)
	assert.Equal(t, []int{6, 7}, req.FieldsToReturn)

	other := MustTable("bbbbbb", testApp, table.Schema())
	_, err = NewUpsert(other, []*Record{r})
	assert.ErrorIs(t, err, ErrTableMismatch)
}

func TestDecodeRecords(t *testing.T) {
	table := newTestTable(t)

	rows, err := ParseRows([]byte(`[
		{"3": {"value": 1}, "6": {"value": "hi"}, "7": {"value": 12}, "8": {"value": "2020-02-07"}},
		{"6": {"value": null}, "7": {"value": 1.5}, "9": {"value": "2021-03-04T05:06:07Z"}, "10": {"value": 1500}, "11": {"value": false}, "12": {"value": ["x"]}},
		{"bogus": {"value": 1}}
	]`))
	require.NoError(t, err)

	records, err := DecodeRecords(table, rows)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"name", "count", "due"}, records[0].Attributes())
	assert.Equal(t, "hi", records[0].Get("name"))
	assert.Equal(t, int64(12), records[0].Get("count"))
	assert.Equal(t, time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC), records[0].Get("due"))

	assert.False(t, records[1].IsSet("name"))
	assert.Equal(t, 1.5, records[1].Get("count"))
	assert.Equal(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC), records[1].Get("updated"))
	assert.Equal(t, 1500*time.Millisecond, records[1].Get("elapsed"))
	assert.Equal(t, false, records[1].Get("done"))
	assert.Equal(t, []any{"x"}, records[1].Get("tags"))

	assert.Empty(t, records[2].Attributes())
}

func TestDecodeRecordInvalidValue(t *testing.T) {
	table := newTestTable(t)

	_, err := DecodeRecord(table, WireRecord{"8": {Value: "not a date"}})
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "due", invalid.Attribute)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	table := newTestTable(t)

	orig := table.MustRecord(Values{
		"name":    "hi",
		"count":   42,
		"due":     time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC),
		"updated": time.Date(2021, 3, 4, 13, 45, 12, 250*int(time.Millisecond), time.UTC),
		"elapsed": 1500 * time.Microsecond,
		"done":    true,
		"tags":    []string{"a", "b"},
	})

	wire, err := EncodeRecord(orig)
	require.NoError(t, err)
	body, err := json.Marshal([]WireRecord{wire})
	require.NoError(t, err)

	rows, err := ParseRows(body)
	require.NoError(t, err)
	got, err := DecodeRecord(table, rows[0])
	require.NoError(t, err)

	assert.True(t, orig.Equal(got))
}

func TestSubSecondPrecision(t *testing.T) {
	table := newTestTable(t)

	r := table.MustRecord(Values{
		"updated": time.Date(2021, 3, 4, 13, 45, 12, 250_400_000, time.FixedZone("X", 3600)),
		"elapsed": 1500*time.Microsecond + 7*time.Nanosecond,
	})
	assert.Equal(t, time.Date(2021, 3, 4, 12, 45, 12, 250_000_000, time.UTC), r.Get("updated"))
	assert.Equal(t, time.Millisecond, r.Get("elapsed"))

	wire, err := EncodeRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-04T12:45:12.250Z", wire["9"].Value)
	assert.Equal(t, int64(1), wire["10"].Value)

	got, err := DecodeRecord(table, WireRecord{
		"9":  {Value: "2021-03-04T12:45:12.250987Z"},
		"10": {Value: json.Number("1.5")},
	})
	require.NoError(t, err)
	assert.True(t, r.Equal(got))
}

func TestRecordRejectsOverflowingUnsigned(t *testing.T) {
	table := newTestTable(t)

	_, err := table.NewRecord(Values{"count": uint64(math.MaxUint64)})
	assert.ErrorIs(t, err, ErrInvalidValue)

	r, err := table.NewRecord(Values{"count": uint64(math.MaxInt64)})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), r.Get("count"))
}
