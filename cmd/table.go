package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"showcase_ingest/internal/diagnostics"
)

func renderSummary(report diagnostics.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("run " + report.RunID)
	tw.AppendHeader(table.Row{"Reason", "Submissions"})

	for _, c := range diagnostics.Counts(report.Entries) {
		tw.AppendRow(table.Row{c.Reason, strconv.Itoa(c.Total)})
	}
	tw.AppendFooter(table.Row{"degraded / total", strconv.Itoa(len(report.Entries)) + " / " + strconv.Itoa(report.Submissions)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
