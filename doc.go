// Package quickbase provides a typed Go client for the Quickbase REST API.
//
// Tables are described once by an immutable schema that maps attribute names
// to field ids and types. Records are validated against that schema before
// anything is sent, queries are built from an expression tree that renders
// to Quickbase's where-string grammar, and results are decoded back into
// typed records:
//
//   - Schema, table and record definitions (package orm)
//   - Query expressions and request building (package query)
//   - Table operations with paging (package client)
//   - The HTTP transport (package api)
//   - Export of results to Parquet, Avro or NDJSON on local disk or S3
//     (packages export and io)
//
// # Quick Start
//
// Define a table:
//
//	schema := orm.MustSchema(
//	    orm.Define("name", orm.NewField(6, orm.TypeText)),
//	    orm.Define("done", orm.NewField(7, orm.TypeCheckbox)),
//	    orm.Define("due", orm.NewField(8, orm.TypeDate)),
//	)
//	tasks := orm.MustTable("bqxyz123", orm.App{ID: "bqabc", RealmHostname: "example.quickbase.com"}, schema)
//
// Create a client and add a record:
//
//	client, err := quickbase.NewClient(ctx,
//	    quickbase.WithRealmHostname("example.quickbase.com"),
//	    quickbase.WithUserToken(os.Getenv("QB_USER_TOKEN")),
//	)
//	tc := client.Table(tasks)
//	rec, err := tasks.NewRecord(orm.Values{"name": "write docs", "done": false})
//	_, err = tc.AddRecord(ctx, rec)
//
// Query it back:
//
//	name, _ := tasks.Field("name")
//	done, _ := tasks.Field("done")
//	q := query.And(query.Contains(name, "docs"), query.Eq(done, false)).Query()
//	records, err := tc.Query(ctx, q)
//
// Fetch every page and write a Parquet file:
//
//	res, err := client.Export(ctx, tc, q, export.FormatParquet, "exports/")
//
// # Configuration
//
// LoadConfig reads QB_* environment variables and an optional .env file:
//
//	cfg, err := quickbase.LoadConfig("QB")
//	client, err := quickbase.NewClient(ctx, cfg.Options()...)
package quickbase
