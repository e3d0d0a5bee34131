package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

func TestWindow_Eligible(t *testing.T) {
	commits := readmeCommits()
	w := commitWindow(commits, domain.DateRange{}, nil)

	t.Run("unbounded range keeps every record", func(t *testing.T) {
		got, err := w.eligible()
		require.NoError(t, err)
		assert.Equal(t, commits, got)
	})

	t.Run("misordered range keeps nothing", func(t *testing.T) {
		w.rng = domain.NewDateRange(at(time.March, 1), at(time.January, 1))
		got, err := w.eligible()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		w.rng = domain.NewDateRange(at(time.January, 3), at(time.January, 4))
		got, err := w.eligible()
		require.NoError(t, err)
		assert.Equal(t, commits[:2], got)
	})

	t.Run("input is not modified", func(t *testing.T) {
		w.rng = domain.NewDateRange(at(time.February, 1), time.Time{})
		_, err := w.eligible()
		require.NoError(t, err)
		assert.Equal(t, readmeCommits(), commits)
	})
}

func TestMetrics_RangeProperties(t *testing.T) {
	commits := readmeCommits()
	prs := fivePullRequests()
	issues := []domain.Issue{{Number: 1, CreatedAt: days(1), ClosedAt: ptr(days(2))}, {Number: 2, CreatedAt: days(3)}}
	inverted := domain.NewDateRange(at(time.December, 31), at(time.January, 1))

	testCases := []struct {
		name      string
		build     func(rng domain.DateRange) Metric
		unbounded domain.Value
		empty     domain.Value
	}{
		{
			name:      "CodeChangesGit",
			build:     func(rng domain.DateRange) Metric { return NewCodeChangesGit(commits, rng, nil) },
			unbounded: domain.Count(len(commits)),
			empty:     domain.Count(0),
		},
		{
			name:      "CodeChangesLinesGit",
			build:     func(rng domain.DateRange) Metric { return NewCodeChangesLinesGit(commits, rng, nil, nil, LinesNet) },
			unbounded: domain.Count(18),
			empty:     domain.Count(0),
		},
		{
			name:      "ReviewsGitHub",
			build:     func(rng domain.DateRange) Metric { return NewReviewsGitHub(prs, rng) },
			unbounded: domain.Count(4),
			empty:     domain.Count(0),
		},
		{
			name:      "ReviewsDurationGitHub",
			build:     func(rng domain.DateRange) Metric { return NewReviewsDurationGitHub(prs, rng, AggregationMean) },
			unbounded: domain.Number(3.5),
			empty:     domain.NoData,
		},
		{
			name:      "IssuesNewGitHub",
			build:     func(rng domain.DateRange) Metric { return NewIssuesNewGitHub(issues, rng) },
			unbounded: domain.Count(2),
			empty:     domain.Count(0),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := tc.build(domain.DateRange{}).Compute()
			require.NoError(t, err)
			assert.Equal(t, tc.unbounded, v)

			v, err = tc.build(inverted).Compute()
			require.NoError(t, err)
			assert.Equal(t, tc.empty, v)
		})
	}
}
