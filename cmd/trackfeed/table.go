package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one cell of a CLI view. Numeric columns render
// right-aligned so counts line up.
type column struct {
	title   string
	numeric bool
}

// The three views the CLI renders. The csv and tsv writers reuse the same
// titles via columnTitles so every output format agrees on field order.
var (
	releaseColumns = []column{
		{title: "ARTIST"},
		{title: "TRACK"},
		{title: "ALBUM"},
		{title: "TYPE"},
		{title: "RELEASED"},
		{title: "POP", numeric: true},
	}
	artistColumns = []column{
		{title: "NAME"},
		{title: "ID"},
		{title: "ADDED"},
	}
	historyColumns = []column{
		{title: "RUN AT"},
		{title: "ARTISTS", numeric: true},
		{title: "RELEASES", numeric: true},
		{title: "MISSING", numeric: true},
		{title: "DAYS", numeric: true},
		{title: "CALLS", numeric: true},
		{title: "TOOK", numeric: true},
	}
)

func columnTitles(cols []column) []string {
	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.title
	}
	return titles
}

// renderTable renders rows under the given column set in the rounded style
// used everywhere in the CLI. Short rows are padded with empty cells.
func renderTable(cols []column, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, col := range cols {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(cols))
		for i := range cols {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}
