package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

func TestParsePeriod(t *testing.T) {
	testCases := []struct {
		input    string
		expected Period
	}{
		{"", PeriodNone},
		{"day", PeriodDay},
		{"D", PeriodDay},
		{"W", PeriodWeek},
		{"Month", PeriodMonth},
		{"MS", PeriodMonth},
		{"q", PeriodQuarter},
		{"year", PeriodYear},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			p, err := ParsePeriod(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
		})
	}

	_, err := ParsePeriod("fortnight")
	assert.True(t, apperrors.IsInvalidConfig(err))
}

func TestPeriod_Truncate(t *testing.T) {
	// Wednesday.
	ts := time.Date(2024, time.May, 15, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), PeriodDay.Truncate(ts))
	assert.Equal(t, time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC), PeriodWeek.Truncate(ts))
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), PeriodMonth.Truncate(ts))
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), PeriodQuarter.Truncate(ts))
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), PeriodYear.Truncate(ts))

	sunday := time.Date(2024, time.May, 19, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC), PeriodWeek.Truncate(sunday))
}

func TestPeriod_Buckets(t *testing.T) {
	start := time.Date(2023, time.November, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)

	buckets := PeriodMonth.Buckets(start, end)
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, labels)

	quarters := PeriodQuarter.Buckets(start, end)
	require.Len(t, quarters, 2)
	assert.Equal(t, "2023-Q4", quarters[0].Label)
	assert.Equal(t, "2024-Q1", quarters[1].Label)

	assert.Nil(t, PeriodDay.Buckets(end, start))
	assert.Len(t, PeriodDay.Buckets(start, start), 1)
}
