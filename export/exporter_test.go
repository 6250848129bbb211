package export

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qbio "github.com/BrobridgeOrg/go-quickbase/io"
	"github.com/BrobridgeOrg/go-quickbase/orm"
)

func exportTable(t *testing.T) (*orm.Table, []*orm.Record) {
	t.Helper()
	schema := orm.MustSchema(
		orm.Define("record_id", orm.NewField(3, orm.TypeRecordID)),
		orm.Define("name", orm.NewField(6, orm.TypeText)),
		orm.Define("amount", orm.NewField(7, orm.TypeCurrency)),
		orm.Define("due", orm.NewField(8, orm.TypeDate)),
		orm.Define("updated", orm.NewField(9, orm.TypeDateTime)),
		orm.Define("elapsed", orm.NewField(10, orm.TypeDuration)),
		orm.Define("done", orm.NewField(11, orm.TypeCheckbox)),
		orm.Define("tags", orm.NewField(12, orm.TypeMultiSelectText)),
		orm.Define("owner", orm.NewField(13, orm.TypeUser)),
	)
	table := orm.MustTable("aaaaaa", orm.App{ID: "abcdefg"}, schema)

	records := []*orm.Record{
		table.MustRecord(orm.Values{
			"record_id": 1,
			"name":      "first",
			"amount":    12.5,
			"due":       time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC),
			"updated":   time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
			"elapsed":   90 * time.Second,
			"done":      true,
			"tags":      []string{"a", "b"},
			"owner":     map[string]any{"email": "x@example.com"},
		}),
		table.MustRecord(orm.Values{
			"record_id": 2,
			"name":      "second",
			"amount":    3,
		}),
	}
	return table, records
}

func TestArrowSchema(t *testing.T) {
	table, _ := exportTable(t)
	schema := ArrowSchema(table)

	require.Equal(t, 9, schema.NumFields())
	assert.Equal(t, arrow.INT64, schema.Field(0).Type.ID())
	assert.Equal(t, arrow.STRING, schema.Field(1).Type.ID())
	assert.Equal(t, arrow.FLOAT64, schema.Field(2).Type.ID())
	assert.Equal(t, arrow.DATE32, schema.Field(3).Type.ID())
	assert.Equal(t, arrow.TIMESTAMP, schema.Field(4).Type.ID())
	assert.Equal(t, arrow.INT64, schema.Field(5).Type.ID())
	assert.Equal(t, arrow.BOOL, schema.Field(6).Type.ID())
	assert.Equal(t, arrow.LIST, schema.Field(7).Type.ID())
	assert.Equal(t, arrow.STRING, schema.Field(8).Type.ID())

	id, ok := schema.Field(1).Metadata.GetValue(fieldIDKey)
	require.True(t, ok)
	assert.Equal(t, "6", id)
}

func TestToArrow(t *testing.T) {
	table, records := exportTable(t)
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := ToArrow(table, records, mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())

	ids := rec.Column(0).(*array.Int64)
	assert.Equal(t, int64(1), ids.Value(0))

	amounts := rec.Column(2).(*array.Float64)
	assert.Equal(t, 12.5, amounts.Value(0))
	assert.Equal(t, 3.0, amounts.Value(1))

	due := rec.Column(3).(*array.Date32)
	assert.Equal(t, arrow.Date32FromTime(time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC)), due.Value(0))
	assert.True(t, due.IsNull(1))

	elapsed := rec.Column(5).(*array.Int64)
	assert.Equal(t, int64(90000), elapsed.Value(0))

	tags := rec.Column(7).(*array.List)
	assert.False(t, tags.IsNull(0))
	assert.True(t, tags.IsNull(1))

	owner := rec.Column(8).(*array.String)
	assert.JSONEq(t, `{"email":"x@example.com"}`, owner.Value(0))
}

func TestToArrowRejectsForeignRecords(t *testing.T) {
	table, records := exportTable(t)
	other := orm.MustTable("bbbbbb", table.App(), table.Schema())

	_, err := ToArrow(other, records, nil)
	assert.ErrorIs(t, err, orm.ErrTableMismatch)
}

func TestExportNDJSON(t *testing.T) {
	ctx := context.Background()
	table, records := exportTable(t)
	dir := t.TempDir()

	exporter := NewExporter(qbio.NewLocalFileIO(nil))
	res, err := exporter.Export(ctx, table, records, FormatNDJSON, filepath.Join(dir, "out.ndjson"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Positive(t, res.Bytes)

	f, err := os.Open(res.Location)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj))
		lines = append(lines, obj)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)

	assert.Equal(t, "first", lines[0]["name"])
	assert.Equal(t, "2020-02-07", lines[0]["due"])
	assert.Equal(t, "2021-03-04T05:06:07.000Z", lines[0]["updated"])
	assert.Equal(t, 90000.0, lines[0]["elapsed"])
	assert.Equal(t, []any{"a", "b"}, lines[0]["tags"])

	assert.Equal(t, "second", lines[1]["name"])
	assert.NotContains(t, lines[1], "due")
}

func TestExportAvro(t *testing.T) {
	ctx := context.Background()
	table, records := exportTable(t)
	dir := t.TempDir()

	exporter := NewExporter(qbio.NewLocalFileIO(nil))
	res, err := exporter.Export(ctx, table, records, FormatAvro, dir+"/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(res.Location), "aaaaaa-"))
	assert.Equal(t, ".avro", filepath.Ext(res.Location))

	f, err := os.Open(res.Location)
	require.NoError(t, err)
	defer f.Close()

	ocf, err := goavro.NewOCFReader(f)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", string(ocf.MetaData()["quickbase.table"]))

	var rows []map[string]any
	for ocf.Scan() {
		datum, err := ocf.Read()
		require.NoError(t, err)
		rows = append(rows, datum.(map[string]any))
	}
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]any{"string": "first"}, rows[0]["name"])
	assert.Equal(t, map[string]any{"long": int64(1)}, rows[0]["record_id"])
	assert.Equal(t, map[string]any{"double": 12.5}, rows[0]["amount"])
	assert.Equal(t, map[string]any{"int": int32(18299)}, rows[0]["due"])
	assert.Equal(t, map[string]any{"boolean": true}, rows[0]["done"])
	assert.Equal(t, map[string]any{"array": []any{"a", "b"}}, rows[0]["tags"])
	assert.Nil(t, rows[1]["due"])
}

func TestAvroColumnNamesStayUnique(t *testing.T) {
	table := orm.MustTable("aaaaaa", orm.App{ID: "abcdefg"}, orm.MustSchema(
		orm.Define("a_b", orm.NewField(4, orm.TypeText)),
		orm.Define("a_b_5", orm.NewField(6, orm.TypeText)),
		orm.Define("a-b", orm.NewField(5, orm.TypeText)),
		orm.Define("a b", orm.NewField(7, orm.TypeText)),
	))

	var names []string
	for _, c := range avroColumns(table) {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"a_b", "a_b_5", "a_b_5_2", "a_b_7"}, names)

	schema, err := AvroSchema(table)
	require.NoError(t, err)
	_, err = goavro.NewCodec(schema)
	assert.NoError(t, err)
}

func TestExportParquet(t *testing.T) {
	ctx := context.Background()
	table, records := exportTable(t)
	dir := t.TempDir()

	exporter := NewExporter(qbio.NewLocalFileIO(&qbio.LocalConfig{BaseDir: dir}))
	res, err := exporter.Export(ctx, table, records, FormatParquet, "exports/")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, res.Format)

	reader, err := file.OpenParquetFile(filepath.Join(dir, res.Location), false)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, int64(2), reader.NumRows())
	assert.Equal(t, 9, reader.MetaData().Schema.NumColumns())
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	table, records := exportTable(t)
	exporter := NewExporter(qbio.NewLocalFileIO(nil))

	_, err := exporter.Export(context.Background(), table, records, Format("csv"), t.TempDir()+"/")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Parquet")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)

	f, err = ParseFormat("jsonl")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
