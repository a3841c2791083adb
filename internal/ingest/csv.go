// Package ingest is the delimited-file ingestion collaborator. It reads CSV
// into a fully-materialized table of named, equal-length, type-homogeneous
// columns; the query engine itself never sniffs schemas.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/frameql/frameql/internal/table"
)

// ReadCSV parses CSV data into a table. The first record names the columns.
// Column types are sniffed per column: integer if every non-empty cell
// parses as one, then float, then bool, otherwise text. Empty cells and the
// literal NA become missing values.
func ReadCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	cells := make([][]string, len(headers))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) != len(headers) {
			return nil, fmt.Errorf("record has %d fields, header has %d", len(record), len(headers))
		}
		for i, cell := range record {
			cells[i] = append(cells[i], cell)
		}
	}

	cols := make([]table.NamedColumn, len(headers))
	for i, name := range headers {
		col, err := buildColumn(cells[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		cols[i] = table.Col(name, col)
	}

	return table.New(cols...)
}

func isMissing(cell string) bool {
	return cell == "" || cell == "NA"
}

// buildColumn sniffs the narrowest type that fits every non-missing cell.
func buildColumn(cells []string) (table.Column, error) {
	vals := make([]any, len(cells))

	if tryParse(cells, vals, func(c string) (any, bool) {
		v, err := strconv.ParseInt(c, 10, 64)
		return v, err == nil
	}) {
		return table.FromValues(table.ColumnTypeInt, vals)
	}

	if tryParse(cells, vals, func(c string) (any, bool) {
		v, err := strconv.ParseFloat(c, 64)
		return v, err == nil
	}) {
		return table.FromValues(table.ColumnTypeFloat, vals)
	}

	if tryParse(cells, vals, func(c string) (any, bool) {
		switch c {
		case "true", "TRUE", "True":
			return true, true
		case "false", "FALSE", "False":
			return false, true
		}
		return false, false
	}) {
		return table.FromValues(table.ColumnTypeBool, vals)
	}

	for i, c := range cells {
		if isMissing(c) {
			vals[i] = nil
		} else {
			vals[i] = c
		}
	}
	return table.FromValues(table.ColumnTypeString, vals)
}

// tryParse fills vals when every non-missing cell parses; missing cells
// become nil.
func tryParse(cells []string, vals []any, parse func(string) (any, bool)) bool {
	for i, c := range cells {
		if isMissing(c) {
			vals[i] = nil
			continue
		}
		v, ok := parse(c)
		if !ok {
			return false
		}
		vals[i] = v
	}
	return true
}
