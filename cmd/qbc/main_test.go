package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

func cliTable(t *testing.T) *orm.Table {
	t.Helper()
	schema := orm.MustSchema(
		orm.Define("name", orm.NewField(6, orm.TypeText).WithLabel("Name")),
		orm.Define("due", orm.NewField(8, orm.TypeDate)),
	)
	return orm.MustTable("aaaaaa", orm.App{ID: "abcdefg"}, schema,
		orm.WithTableName("Debugs"),
		orm.WithReports(orm.Report{ID: 1, Name: "List All"}),
	)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, cliTable(t)))

	out := buf.String()
	assert.Contains(t, out, "ATTRIBUTE")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "List All")
}

func TestPrintRecords(t *testing.T) {
	table := cliTable(t)
	records := []*orm.Record{
		table.MustRecord(orm.Values{"name": "a", "due": time.Date(2020, 2, 7, 0, 0, 0, 0, time.UTC)}),
		table.MustRecord(orm.Values{"name": "b"}),
	}

	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"name":"a","due":"2020-02-07"}`, lines[0])
	assert.JSONEq(t, `{"name":"b"}`, lines[1])
}

func TestQueryFlags(t *testing.T) {
	qf := queryFlags{where: "{'6'.EX.'a'}", fields: []int{6, 8}}
	q := qf.query()

	assert.Equal(t, "{'6'.EX.'a'}", q.Where())
	assert.Equal(t, []int{6, 8}, q.Fields())
}

func TestDescribeRequiresIDs(t *testing.T) {
	flags = globalFlags{}
	_, err := describe(t.Context(), nil)
	assert.Error(t, err)
}
