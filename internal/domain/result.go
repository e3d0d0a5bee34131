package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Value is a computed metric value. A Value that is not Valid is the
// "no data" sentinel, e.g. a mean over zero items.
type Value struct {
	Number float64
	Valid  bool
}

// NoData is the sentinel for metrics with nothing to aggregate.
var NoData = Value{}

// Count wraps an integer count.
func Count(n int) Value {
	return Value{Number: float64(n), Valid: true}
}

// Number wraps a float value.
func Number(f float64) Value {
	return Value{Number: f, Valid: true}
}

// String renders the value for humans.
func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.Number, 'f', -1, 64)
}

// MarshalJSON encodes no-data as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON decodes null as no-data.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = NoData
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}

// Descriptor identifies a metric in results.
type Descriptor struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Unit  string `json:"unit"`
}

// Point is one period of a time series.
type Point struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Value Value     `json:"value"`
}

// MetricResult pairs a metric with its computed scalar and optional series.
type MetricResult struct {
	Metric Descriptor `json:"metric"`
	Value  Value      `json:"value"`
	Series []Point    `json:"series,omitempty"`
}

// CategoryResults is the ordered sequence of results of one category.
type CategoryResults struct {
	Category Category       `json:"category"`
	Metrics  []MetricResult `json:"metrics"`
}

// Results is the output of one run.
type Results struct {
	RunID      string            `json:"run_id"`
	Repository string            `json:"repository,omitempty"`
	Range      DateRange         `json:"range"`
	Period     Period            `json:"period,omitempty"`
	Categories []CategoryResults `json:"categories"`
}

// Get returns the results of a category.
func (r *Results) Get(category Category) ([]MetricResult, bool) {
	for _, c := range r.Categories {
		if c.Category == category {
			return c.Metrics, true
		}
	}
	return nil, false
}
