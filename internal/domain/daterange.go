package domain

import (
	"time"
)

// DateRange bounds records by timestamp. A nil bound is unbounded on that side.
// Both bounds are inclusive.
type DateRange struct {
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// NewDateRange builds a range from optional bounds; zero times mean unbounded.
func NewDateRange(since, until time.Time) DateRange {
	var r DateRange
	if !since.IsZero() {
		r.Since = &since
	}
	if !until.IsZero() {
		r.Until = &until
	}
	return r
}

// Unbounded reports whether neither side is set.
func (r DateRange) Unbounded() bool {
	return r.Since == nil && r.Until == nil
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.Since != nil && t.Before(*r.Since) {
		return false
	}
	if r.Until != nil && t.After(*r.Until) {
		return false
	}
	return true
}

// Inverted reports a misordered range, which matches nothing.
func (r DateRange) Inverted() bool {
	return r.Since != nil && r.Until != nil && r.Since.After(*r.Until)
}

// Filter returns the items whose timestamp lies in r. The input slice is not modified.
func Filter[T any](items []T, r DateRange, stamp func(T) time.Time) []T {
	if r.Unbounded() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if r.Contains(stamp(item)) {
			out = append(out, item)
		}
	}
	return out
}
