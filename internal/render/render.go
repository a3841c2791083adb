// Package render prints result tables for the REPL and CLI. It only ever
// receives fully materialized tables.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/frameql/frameql/internal/table"
)

// PrintTable writes a table with a typed header row and aligned columns.
func PrintTable(w io.Writer, t *table.Table) error {
	names := t.Names()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header with column types
	for i, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s (%s)", name, c.Type())
		if i < len(names)-1 {
			fmt.Fprintf(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	// Separator
	for i := range names {
		fmt.Fprintf(tw, "---")
		if i < len(names)-1 {
			fmt.Fprintf(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	for row := 0; row < t.NumRows(); row++ {
		for i, name := range names {
			v, err := t.Value(name, row)
			if err != nil {
				return err
			}
			if v == nil {
				fmt.Fprint(tw, "NA")
			} else {
				fmt.Fprintf(tw, "%v", v)
			}
			if i < len(names)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "(%d rows)\n", t.NumRows())
	return tw.Flush()
}
