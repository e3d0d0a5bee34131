package report

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

const chartHeight = "450px"

// gap marks a missing point; echarts leaves it out of the line.
const gap = "-"

func renderHTML(w io.Writer, results *domain.Results) error {
	page := components.NewPage()
	page.PageTitle = "Evolution metrics: " + results.Repository

	for _, c := range results.Categories {
		if len(c.Metrics) == 0 {
			continue
		}
		if results.Period != domain.PeriodNone {
			page.AddCharts(seriesChart(results, c))
		} else {
			page.AddCharts(summaryChart(results, c))
		}
	}
	return page.Render(w)
}

func chartValue(v domain.Value) any {
	if !v.Valid {
		return gap
	}
	return v.Number
}

func summaryChart(results *domain.Results, c domain.CategoryResults) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: string(c.Category), Subtitle: describeRange(results.Range)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, len(c.Metrics))
	data := make([]opts.BarData, len(c.Metrics))
	for i, m := range c.Metrics {
		labels[i] = m.Metric.Title
		data[i] = opts.BarData{Name: m.Metric.Name, Value: chartValue(m.Value)}
	}
	bar.SetXAxis(labels).AddSeries(string(c.Category), data)
	return bar
}

func seriesChart(results *domain.Results, c domain.CategoryResults) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: string(c.Category) + " by " + string(results.Period), Subtitle: describeRange(results.Range)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	grid := newSeriesGrid(c.Metrics)
	line.SetXAxis(grid.labels)
	for i, m := range c.Metrics {
		data := make([]opts.LineData, len(grid.labels))
		for j, label := range grid.labels {
			v, ok := grid.lookup(i, label)
			if !ok {
				data[j] = opts.LineData{Value: gap}
				continue
			}
			data[j] = opts.LineData{Value: chartValue(v)}
		}
		line.AddSeries(m.Metric.Title, data)
	}
	return line
}
