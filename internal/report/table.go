package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

func renderTables(w io.Writer, format Format, results *domain.Results) error {
	parts := []string{render(format, summaryTable(format, results))}
	if results.Period != domain.PeriodNone {
		for _, c := range results.Categories {
			if len(c.Metrics) == 0 {
				continue
			}
			parts = append(parts, render(format, seriesTable(format, results.Period, c)))
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "\n\n"))
	return err
}

func render(format Format, tbl table.Writer) string {
	switch format {
	case FormatMarkdown:
		return tbl.RenderMarkdown()
	case FormatCSV:
		return tbl.RenderCSV()
	default:
		return tbl.Render()
	}
}

// cell renders a value for a table cell. CSV output stays machine readable.
func cell(format Format, v domain.Value) string {
	if format == FormatCSV {
		return v.String()
	}
	return formatValue(v)
}

func newTable(format Format, title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	if format == FormatTable {
		tbl.SetTitle(title)
	}
	return tbl
}

func summaryTable(format Format, results *domain.Results) table.Writer {
	title := fmt.Sprintf("%s (%s)", results.Repository, describeRange(results.Range))
	tbl := newTable(format, title)
	tbl.AppendHeader(table.Row{"Category", "Metric", "Value", "Unit"})
	for _, c := range results.Categories {
		for _, m := range c.Metrics {
			tbl.AppendRow(table.Row{c.Category, m.Metric.Name, cell(format, m.Value), m.Metric.Unit})
		}
	}
	return tbl
}

func seriesTable(format Format, period domain.Period, c domain.CategoryResults) table.Writer {
	tbl := newTable(format, fmt.Sprintf("%s by %s", c.Category, period))

	header := table.Row{"Period"}
	for _, m := range c.Metrics {
		header = append(header, m.Metric.Name)
	}
	tbl.AppendHeader(header)

	grid := newSeriesGrid(c.Metrics)
	for _, label := range grid.labels {
		row := table.Row{label}
		for i := range c.Metrics {
			value := ""
			if v, ok := grid.lookup(i, label); ok {
				value = cell(format, v)
			}
			row = append(row, value)
		}
		tbl.AppendRow(row)
	}
	return tbl
}
