package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/BrobridgeOrg/go-quickbase/client"
	"github.com/BrobridgeOrg/go-quickbase/export"
	"github.com/BrobridgeOrg/go-quickbase/orm"
	"github.com/BrobridgeOrg/go-quickbase/query"
)

type queryFlags struct {
	where    string
	fields   []int
	top      int
	pageSize int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", "raw where-string, e.g. {'6'.CT.'abc'}")
	cmd.Flags().IntSliceVar(&f.fields, "select", nil, "field ids to return (default: every described field)")
	cmd.Flags().IntVar(&f.top, "top", 0, "return at most n records from a single request")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "records per page when fetching all pages")
}

func (f *queryFlags) query() query.Query {
	q := query.Raw(f.where)
	if len(f.fields) > 0 {
		q = q.Select(f.fields...)
	}
	return q
}

func newQueryCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a where-string and print matching records as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			t, err := describe(ctx, c)
			if err != nil {
				return err
			}
			tc := c.Table(t)

			var records []*orm.Record
			if qf.top > 0 {
				records, err = tc.Query(ctx, qf.query().Top(qf.top))
			} else {
				records, err = tc.QueryPages(ctx, qf.query(), client.NewResponsePager(client.WithPageSize(qf.pageSize)))
			}
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
	qf.register(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		qf     queryFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch every page of a query and write it to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			ctx := cmd.Context()
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			t, err := describe(ctx, c)
			if err != nil {
				return err
			}

			res, err := c.Export(ctx, c.Table(t), qf.query(), f, out, client.WithPageSize(qf.pageSize))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records (%d bytes) to %s\n", res.Rows, res.Bytes, res.Location)
			return nil
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(export.FormatParquet), "parquet, avro or ndjson")
	cmd.Flags().StringVar(&out, "out", "", "file location, or a directory ending in / (s3:// when QB_STORAGE=s3)")
	return cmd
}

func printRecords(out io.Writer, records []*orm.Record) error {
	enc := json.NewEncoder(out)
	for _, r := range records {
		row := make(map[string]any)
		for _, name := range r.Attributes() {
			f, err := r.Table().Field(name)
			if err != nil {
				return err
			}
			row[name] = f.Encode(r.Get(name))
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
