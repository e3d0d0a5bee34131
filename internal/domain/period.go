package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Period is the calendar bucket size of a time series.
type Period string

const (
	PeriodNone    Period = ""
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

var periodAliases = map[string]Period{
	"":        PeriodNone,
	"none":    PeriodNone,
	"d":       PeriodDay,
	"day":     PeriodDay,
	"w":       PeriodWeek,
	"week":    PeriodWeek,
	"m":       PeriodMonth,
	"ms":      PeriodMonth,
	"month":   PeriodMonth,
	"q":       PeriodQuarter,
	"qs":      PeriodQuarter,
	"quarter": PeriodQuarter,
	"y":       PeriodYear,
	"a":       PeriodYear,
	"year":    PeriodYear,
}

// ParsePeriod accepts a period name or a calendar code such as "M" or "W".
func ParsePeriod(s string) (Period, error) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", apperrors.NewInvalidConfigError("period", fmt.Sprintf("unknown period %q (use day, week, month, quarter or year)", s))
	}
	return p, nil
}

// Truncate returns the start of the period containing t, in UTC.
// Weeks start on Monday.
func (p Period) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-weekday+1, 0, 0, 0, 0, time.UTC)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodQuarter:
		month := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the period following the one starting at t.
func (p Period) Next(t time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return t.AddDate(0, 0, 7)
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	case PeriodQuarter:
		return t.AddDate(0, 3, 0)
	case PeriodYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Label formats the period starting at t.
func (p Period) Label(t time.Time) string {
	switch p {
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case PeriodYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// Bucket is one period of a time series.
type Bucket struct {
	Label string
	Start time.Time
}

// Buckets returns the consecutive periods covering [start, end].
// It returns nil when end precedes start.
func (p Period) Buckets(start, end time.Time) []Bucket {
	if end.Before(start) {
		return nil
	}
	var buckets []Bucket
	last := p.Truncate(end)
	for current := p.Truncate(start); !current.After(last); current = p.Next(current) {
		buckets = append(buckets, Bucket{Label: p.Label(current), Start: current})
	}
	return buckets
}
