package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// fieldIDKey carries the Quickbase field id on Arrow fields. pqarrow writes
// it as the Parquet field id.
const fieldIDKey = "PARQUET:field_id"

func fieldTypeToArrow(f orm.Field) arrow.DataType {
	switch f.Type.Kind() {
	case orm.KindText:
		return arrow.BinaryTypes.String
	case orm.KindNumeric:
		if isIntegral(f.Type) {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Float64
	case orm.KindDate:
		return arrow.FixedWidthTypes.Date32
	case orm.KindDateTime:
		return &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	case orm.KindDuration:
		// milliseconds, as on the wire
		return arrow.PrimitiveTypes.Int64
	case orm.KindBoolean:
		return arrow.FixedWidthTypes.Boolean
	case orm.KindList:
		return arrow.ListOf(arrow.BinaryTypes.String)
	default:
		return arrow.BinaryTypes.String
	}
}

func isIntegral(t orm.FieldType) bool {
	return t == orm.TypeRecordID || t == orm.TypeRating
}

// ArrowSchema returns the Arrow schema of a table. Every column is nullable
// since any attribute may be absent.
func ArrowSchema(t *orm.Table) *arrow.Schema {
	schema := t.Schema()
	fields := make([]arrow.Field, 0, schema.Len())
	for i, name := range schema.Attributes() {
		f := schema.Fields()[i]
		fields = append(fields, arrow.Field{
			Name:     name,
			Type:     fieldTypeToArrow(f),
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{fieldIDKey}, []string{strconv.Itoa(f.ID)}),
		})
	}
	return arrow.NewSchema(fields, nil)
}

// ToArrow converts records of table t into one Arrow record. The caller must
// Release the result.
func ToArrow(t *orm.Table, records []*orm.Record, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	schema := ArrowSchema(t)
	fields := t.Schema().Fields()

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for row, r := range records {
		if r.Table() != t {
			return nil, fmt.Errorf("%w: row %d", orm.ErrTableMismatch, row)
		}
		for i, name := range t.Schema().Attributes() {
			v, ok, err := r.Lookup(name)
			if err != nil {
				return nil, err
			}
			if !ok {
				b.Field(i).AppendNull()
				continue
			}
			if err := appendValue(b.Field(i), fields[i], v); err != nil {
				return nil, fmt.Errorf("failed to convert %s of row %d: %w", name, row, err)
			}
		}
	}

	return b.NewRecord(), nil
}

func appendValue(b array.Builder, f orm.Field, v any) error {
	switch bb := b.(type) {
	case *array.StringBuilder:
		s, err := stringValue(v)
		if err != nil {
			return err
		}
		bb.Append(s)
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			bb.Append(n)
		case float64:
			bb.Append(int64(n))
		case time.Duration:
			bb.Append(n.Milliseconds())
		default:
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
	case *array.Float64Builder:
		switch n := v.(type) {
		case int64:
			bb.Append(float64(n))
		case float64:
			bb.Append(n)
		default:
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
	case *array.Date32Builder:
		d, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
		bb.Append(arrow.Date32FromTime(d))
	case *array.TimestampBuilder:
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
		bb.Append(arrow.Timestamp(ts.UnixMilli()))
	case *array.BooleanBuilder:
		flag, ok := v.(bool)
		if !ok {
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
		bb.Append(flag)
	case *array.ListBuilder:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("unexpected %T for %s field", v, f.Type)
		}
		vb := bb.ValueBuilder().(*array.StringBuilder)
		bb.Append(true)
		for _, item := range items {
			s, err := stringValue(item)
			if err != nil {
				return err
			}
			vb.Append(s)
		}
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

// stringValue renders text as-is and anything else as JSON.
func stringValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
