// Package report renders metric results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatTable, FormatMarkdown, FormatCSV, FormatHTML}

// ParseFormat validates a format name; empty means table.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatTable, nil
	}
	if s == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", apperrors.NewInvalidConfigError("format", fmt.Sprintf("unknown format %q (known: %s)", s, strings.Join(names, ", ")))
}

// Render writes results to w in the given format.
func Render(w io.Writer, format Format, results *domain.Results) error {
	var err error
	switch format {
	case FormatJSON:
		err = renderJSON(w, results)
	case FormatTable, FormatMarkdown, FormatCSV:
		err = renderTables(w, format, results)
	case FormatHTML:
		err = renderHTML(w, results)
	default:
		return apperrors.NewInvalidConfigError("format", fmt.Sprintf("unknown format %q", format))
	}
	if err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("render %s report", format), err)
	}
	return nil
}

func renderJSON(w io.Writer, results *domain.Results) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatValue renders a value with thousands separators, or n/a for no data.
func formatValue(v domain.Value) string {
	if !v.Valid {
		return v.String()
	}
	return humanize.Commaf(v.Number)
}

// describeRange renders a date range for titles.
func describeRange(r domain.DateRange) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.Format("2006-01-02")
	}
	return bound(r.Since) + " .. " + bound(r.Until)
}

// seriesGrid aligns the series of several metrics on one ordered set of labels.
type seriesGrid struct {
	labels []string
	// values[i][label] is the value of metric i in that period.
	values []map[string]domain.Value
}

func newSeriesGrid(metrics []domain.MetricResult) seriesGrid {
	starts := make(map[string]time.Time)
	grid := seriesGrid{values: make([]map[string]domain.Value, len(metrics))}
	for i, m := range metrics {
		grid.values[i] = make(map[string]domain.Value, len(m.Series))
		for _, p := range m.Series {
			starts[p.Label] = p.Start
			grid.values[i][p.Label] = p.Value
		}
	}
	for label := range starts {
		grid.labels = append(grid.labels, label)
	}
	sort.Slice(grid.labels, func(a, b int) bool {
		return starts[grid.labels[a]].Before(starts[grid.labels[b]])
	})
	return grid
}

// lookup returns the value of metric i in the period, if that metric covers it.
func (g seriesGrid) lookup(i int, label string) (domain.Value, bool) {
	v, ok := g.values[i][label]
	return v, ok
}
