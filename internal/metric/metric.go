// Package metric implements the project health metrics. Each metric wraps a
// record list and a date range, and computes either a scalar or a time series
// over the eligible records.
package metric

import (
	"time"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Metric is the contract shared by every metric.
type Metric interface {
	Descriptor() domain.Descriptor
	// Compute aggregates all eligible records into a single value.
	Compute() (domain.Value, error)
	// TimeSeries aggregates eligible records per calendar period. Every period
	// between the range bounds appears, including empty ones.
	TimeSeries(period domain.Period) ([]domain.Point, error)
}

// window is a record list restricted to a date range and an optional
// inclusion predicate. It never modifies the records it holds.
type window[T any] struct {
	items    []T
	rng      domain.DateRange
	stamp    func(T) time.Time
	validate func(T) error
	include  func(T) bool
}

// eligible validates every record and returns those that pass the inclusion
// predicate and lie within the range.
func (w window[T]) eligible() ([]T, error) {
	included := make([]T, 0, len(w.items))
	for _, item := range w.items {
		if err := w.validate(item); err != nil {
			return nil, err
		}
		if w.include != nil && !w.include(item) {
			continue
		}
		included = append(included, item)
	}
	return domain.Filter(included, w.rng, w.stamp), nil
}

// compute applies aggregate to the eligible records.
func (w window[T]) compute(aggregate func([]T) domain.Value) (domain.Value, error) {
	items, err := w.eligible()
	if err != nil {
		return domain.NoData, err
	}
	return aggregate(items), nil
}

// series groups the eligible records into periods and applies aggregate to each.
func (w window[T]) series(period domain.Period, aggregate func([]T) domain.Value) ([]domain.Point, error) {
	if period == domain.PeriodNone {
		return nil, apperrors.NewInvalidConfigError("period", "a period is required for a time series")
	}
	items, err := w.eligible()
	if err != nil {
		return nil, err
	}

	start, end, ok := w.span(items)
	if !ok {
		return []domain.Point{}, nil
	}

	groups := make(map[int64][]T)
	for _, item := range items {
		key := period.Truncate(w.stamp(item)).Unix()
		groups[key] = append(groups[key], item)
	}

	buckets := period.Buckets(start, end)
	points := make([]domain.Point, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, domain.Point{
			Label: b.Label,
			Start: b.Start,
			Value: aggregate(groups[b.Start.Unix()]),
		})
	}
	return points, nil
}

// span returns the time interval a series covers: the range bounds where set,
// otherwise the earliest or latest eligible record.
func (w window[T]) span(items []T) (start, end time.Time, ok bool) {
	if w.rng.Inverted() {
		return start, end, false
	}
	for i, item := range items {
		ts := w.stamp(item)
		if i == 0 || ts.Before(start) {
			start = ts
		}
		if i == 0 || ts.After(end) {
			end = ts
		}
	}
	if w.rng.Since != nil {
		start = *w.rng.Since
	}
	if w.rng.Until != nil {
		end = *w.rng.Until
	}
	if start.IsZero() || end.IsZero() {
		return start, end, false
	}
	return start, end, true
}

func count[T any](items []T) domain.Value {
	return domain.Count(len(items))
}

// countWhere returns an aggregate counting the items that satisfy pred.
func countWhere[T any](pred func(T) bool) func([]T) domain.Value {
	return func(items []T) domain.Value {
		n := 0
		for _, item := range items {
			if pred(item) {
				n++
			}
		}
		return domain.Count(n)
	}
}
