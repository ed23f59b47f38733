package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable renders string rows under headers in the shared rounded style.
// Columns are left-aligned; rightCols lists 1-based numbers of numeric
// columns that align right instead.
func renderTable(headers []string, rows [][]string, rightCols ...int) string {
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	if len(rightCols) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightCols))
		for _, col := range rightCols {
			configs = append(configs, table.ColumnConfig{
				Number:      col,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
