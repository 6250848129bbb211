package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

var unixEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

type avroColumn struct {
	attr     string
	name     string
	field    orm.Field
	typeName string
}

func avroTypeName(f orm.Field) string {
	switch f.Type.Kind() {
	case orm.KindNumeric:
		if isIntegral(f.Type) {
			return "long"
		}
		return "double"
	case orm.KindDate:
		return "int"
	case orm.KindDateTime, orm.KindDuration:
		return "long"
	case orm.KindBoolean:
		return "boolean"
	case orm.KindList:
		return "array"
	default:
		return "string"
	}
}

func avroName(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func avroColumns(t *orm.Table) []avroColumn {
	schema := t.Schema()
	cols := make([]avroColumn, 0, schema.Len())
	used := make(map[string]bool, schema.Len())
	for i, attr := range schema.Attributes() {
		f := schema.Fields()[i]
		name := avroName(attr)
		if used[name] {
			name += "_" + strconv.Itoa(f.ID)
		}
		for base, n := name, 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		cols = append(cols, avroColumn{attr: attr, name: name, field: f, typeName: avroTypeName(f)})
	}
	return cols
}

// AvroSchema returns the Avro record schema of a table. Every field is a
// union with null so absent attributes round-trip.
func AvroSchema(t *orm.Table) (string, error) {
	fields := make([]map[string]any, 0, t.Schema().Len())
	for _, c := range avroColumns(t) {
		var typ any = c.typeName
		if c.typeName == "array" {
			typ = map[string]any{"type": "array", "items": "string"}
		}
		fields = append(fields, map[string]any{
			"name":    c.name,
			"type":    []any{"null", typ},
			"default": nil,
			"doc":     c.field.String(),
		})
	}

	schema := map[string]any{
		"type":      "record",
		"name":      avroName("qb_" + t.ID()),
		"namespace": "quickbase",
		"fields":    fields,
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func avroValue(c avroColumn, v any) (any, error) {
	switch c.field.Type.Kind() {
	case orm.KindNumeric:
		switch n := v.(type) {
		case int64:
			if c.typeName == "long" {
				return n, nil
			}
			return float64(n), nil
		case float64:
			if c.typeName == "long" {
				return int64(n), nil
			}
			return n, nil
		}
	case orm.KindDate:
		if d, ok := v.(time.Time); ok {
			return int32(d.Sub(unixEpoch) / (24 * time.Hour)), nil
		}
	case orm.KindDateTime:
		if ts, ok := v.(time.Time); ok {
			return ts.UnixMilli(), nil
		}
	case orm.KindDuration:
		if d, ok := v.(time.Duration); ok {
			return d.Milliseconds(), nil
		}
	case orm.KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case orm.KindList:
		if items, ok := v.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				s, err := stringValue(item)
				if err != nil {
					return nil, err
				}
				out[i] = s
			}
			return out, nil
		}
	default:
		return stringValue(v)
	}
	return nil, fmt.Errorf("unexpected %T for %s field", v, c.field.Type)
}

// writeAvro writes records to w as a deflate-compressed Avro OCF file.
func writeAvro(w io.Writer, t *orm.Table, records []*orm.Record) error {
	schema, err := AvroSchema(t)
	if err != nil {
		return fmt.Errorf("failed to build avro schema: %w", err)
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return fmt.Errorf("failed to create avro codec: %w", err)
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: "deflate",
		MetaData: map[string][]byte{
			"quickbase.table": []byte(t.ID()),
			"quickbase.app":   []byte(t.AppID()),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create OCF writer: %w", err)
	}

	cols := avroColumns(t)
	batch := make([]any, 0, len(records))
	for row, r := range records {
		datum := make(map[string]any, len(cols))
		for _, c := range cols {
			v, ok, err := r.Lookup(c.attr)
			if err != nil {
				return err
			}
			if !ok {
				datum[c.name] = nil
				continue
			}
			av, err := avroValue(c, v)
			if err != nil {
				return fmt.Errorf("failed to convert %s of row %d: %w", c.attr, row, err)
			}
			datum[c.name] = goavro.Union(c.typeName, av)
		}
		batch = append(batch, datum)
	}

	if len(batch) > 0 {
		if err := ocf.Append(batch); err != nil {
			return fmt.Errorf("failed to append avro records: %w", err)
		}
	}
	return nil
}
