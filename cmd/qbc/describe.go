package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the schema generated from a table's fields",
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
			return printTable(cmd.OutOrStdout(), t)
		},
	}
}

func printTable(out io.Writer, t *orm.Table) error {
	fmt.Fprintf(out, "%s\n\n", t)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ATTRIBUTE\tID\tTYPE\tLABEL")
	schema := t.Schema()
	for i, name := range schema.Attributes() {
		f := schema.Fields()[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, f.ID, f.Type, f.Label)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if reports := t.Reports(); len(reports) > 0 {
		fmt.Fprintln(out, "\nREPORTS")
		for _, r := range reports {
			fmt.Fprintf(out, "  %d\t%s\n", r.ID, r.Name)
		}
	}
	return nil
}
