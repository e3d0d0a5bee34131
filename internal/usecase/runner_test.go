package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Source() string {
	return "octo/demo"
}

func (m *mockFetcher) FetchCommits(ctx context.Context, rng domain.DateRange) ([]domain.Commit, error) {
	args := m.Called(ctx, rng)
	// The returned slice is nil when an error occurs.
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockFetcher) FetchPullRequests(ctx context.Context, rng domain.DateRange) ([]domain.PullRequest, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func (m *mockFetcher) FetchIssues(ctx context.Context, rng domain.DateRange) ([]domain.Issue, error) {
	args := m.Called(ctx, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

var (
	testCommits = []domain.Commit{
		{SHA: "a1", AuthorDate: day(5), Parents: 1, Files: []domain.FileChange{{Path: "main.go", Added: 10, Removed: 2}}},
	}
	testPullRequests = []domain.PullRequest{
		{
			Number: 1, CreatedAt: day(2), MergedAt: ptr(day(4)), ClosedAt: ptr(day(4)), Merged: true,
			Reviews: []domain.Review{{State: domain.ReviewApproved, SubmittedAt: day(3)}},
		},
		{Number: 2, CreatedAt: day(10), ClosedAt: ptr(day(11))},
	}
	testIssues = []domain.Issue{
		{Number: 3, CreatedAt: day(1), ClosedAt: ptr(day(2))},
		{Number: 4, CreatedAt: day(8)},
	}
)

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func metricNames(results []domain.MetricResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Metric.Name
	}
	return names
}

func values(results []domain.MetricResult) []domain.Value {
	vals := make([]domain.Value, len(results))
	for i, r := range results {
		vals[i] = r.Value
	}
	return vals
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()
	fetcher := new(mockFetcher)
	fetcher.On("FetchCommits", mock.Anything, domain.DateRange{}).Return(testCommits, nil)
	fetcher.On("FetchPullRequests", mock.Anything, domain.DateRange{}).Return(testPullRequests, nil)
	fetcher.On("FetchIssues", mock.Anything, domain.DateRange{}).Return(testIssues, nil)

	runner := NewRunner(fetcher, discardLogger())
	results, err := runner.Run(ctx, Request{
		Categories: []domain.Category{domain.CategoryPullRequest, domain.CategoryCommit, domain.CategoryIssue},
	})
	require.NoError(t, err)

	assert.Equal(t, "octo/demo", results.Repository)
	assert.NotEmpty(t, results.RunID)
	require.Len(t, results.Categories, 3)
	assert.Equal(t, domain.CategoryPullRequest, results.Categories[0].Category)
	assert.Equal(t, domain.CategoryCommit, results.Categories[1].Category)
	assert.Equal(t, domain.CategoryIssue, results.Categories[2].Category)

	prs, ok := results.Get(domain.CategoryPullRequest)
	require.True(t, ok)
	assert.Equal(t, []string{"ReviewsGitHub", "ReviewsAcceptedGitHub", "ReviewsDeclinedGitHub", "ReviewsDurationGitHub"}, metricNames(prs))
	assert.Equal(t, []domain.Value{domain.Count(1), domain.Count(1), domain.Count(1), domain.Number(1.5)}, values(prs))

	commits, ok := results.Get(domain.CategoryCommit)
	require.True(t, ok)
	assert.Equal(t, []string{"CodeChangesGit", "CodeChangesLinesGit"}, metricNames(commits))
	assert.Equal(t, []domain.Value{domain.Count(1), domain.Count(8)}, values(commits))

	issues, ok := results.Get(domain.CategoryIssue)
	require.True(t, ok)
	assert.Equal(t, []string{"IssuesNewGitHub", "IssuesClosedGitHub"}, metricNames(issues))
	assert.Equal(t, []domain.Value{domain.Count(2), domain.Count(1)}, values(issues))

	for _, c := range results.Categories {
		for _, m := range c.Metrics {
			assert.Nil(t, m.Series, m.Metric.Name)
		}
	}
	fetcher.AssertExpectations(t)
}

func TestRunner_Run_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		req        Request
		setup      func(f *mockFetcher)
		assertErr  func(err error) bool
		expectCall bool
	}{
		{
			name:      "unknown metric is rejected before fetching",
			req:       Request{Categories: []domain.Category{domain.CategoryCommit}, Metrics: []string{"NoSuchMetric"}},
			assertErr: apperrors.IsInvalidConfig,
		},
		{
			name:      "no categories",
			req:       Request{},
			assertErr: apperrors.IsInvalidConfig,
		},
		{
			name:      "unknown category",
			req:       Request{Categories: []domain.Category{"wiki"}},
			assertErr: apperrors.IsInvalidConfig,
		},
		{
			name: "fetch failure",
			req:  Request{Categories: []domain.Category{domain.CategoryCommit}},
			setup: func(f *mockFetcher) {
				f.On("FetchCommits", mock.Anything, domain.DateRange{}).Return(nil, errors.New("github api error"))
			},
			assertErr:  apperrors.IsFetchFailed,
			expectCall: true,
		},
		{
			name: "malformed record aborts the run",
			req:  Request{Categories: []domain.Category{domain.CategoryCommit}},
			setup: func(f *mockFetcher) {
				f.On("FetchCommits", mock.Anything, domain.DateRange{}).Return([]domain.Commit{{SHA: "bad"}}, nil)
			},
			assertErr:  apperrors.IsMalformedRecord,
			expectCall: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.setup != nil {
				tc.setup(fetcher)
			}
			runner := NewRunner(fetcher, discardLogger())

			results, err := runner.Run(context.Background(), tc.req)
			assert.Error(t, err)
			assert.True(t, tc.assertErr(err), err.Error())
			assert.Nil(t, results)

			if tc.expectCall {
				fetcher.AssertExpectations(t)
			} else {
				fetcher.AssertNotCalled(t, "FetchCommits", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRunner_Compute(t *testing.T) {
	runner := NewRunner(new(mockFetcher), discardLogger())
	records := domain.Records{Commits: testCommits, PullRequests: testPullRequests}

	t.Run("metric filter keeps category blocks", func(t *testing.T) {
		results, err := runner.Compute(Request{
			Categories: []domain.Category{domain.CategoryCommit, domain.CategoryPullRequest},
			Metrics:    []string{"ReviewsDeclinedGitHub"},
		}, records)
		require.NoError(t, err)

		commits, ok := results.Get(domain.CategoryCommit)
		require.True(t, ok)
		assert.Empty(t, commits)

		prs, _ := results.Get(domain.CategoryPullRequest)
		assert.Equal(t, []string{"ReviewsDeclinedGitHub"}, metricNames(prs))
	})

	t.Run("period adds a series to every metric", func(t *testing.T) {
		rng := domain.NewDateRange(day(1), time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))
		results, err := runner.Compute(Request{
			Categories: []domain.Category{domain.CategoryPullRequest},
			Range:      rng,
			Period:     domain.PeriodMonth,
		}, records)
		require.NoError(t, err)
		assert.Equal(t, domain.PeriodMonth, results.Period)

		prs, _ := results.Get(domain.CategoryPullRequest)
		for _, m := range prs {
			require.Len(t, m.Series, 2, m.Metric.Name)
			assert.Equal(t, "2024-01", m.Series[0].Label)
			assert.Equal(t, "2024-02", m.Series[1].Label)
		}
		// February has no pull requests.
		assert.Equal(t, domain.Count(0), prs[0].Series[1].Value)
		assert.Equal(t, domain.NoData, prs[3].Series[1].Value)
	})

	t.Run("repeated category yields one block", func(t *testing.T) {
		results, err := runner.Compute(Request{
			Categories: []domain.Category{domain.CategoryCommit, domain.CategoryPullRequest, domain.CategoryCommit},
		}, records)
		require.NoError(t, err)
		require.Len(t, results.Categories, 2)
		assert.Equal(t, domain.CategoryCommit, results.Categories[0].Category)
		assert.Equal(t, domain.CategoryPullRequest, results.Categories[1].Category)
	})

	t.Run("empty input yields zero counts", func(t *testing.T) {
		results, err := runner.Compute(Request{
			Categories: []domain.Category{domain.CategoryCommit, domain.CategoryPullRequest},
		}, domain.Records{})
		require.NoError(t, err)

		commits, _ := results.Get(domain.CategoryCommit)
		assert.Equal(t, []domain.Value{domain.Count(0), domain.Count(0)}, values(commits))
		prs, _ := results.Get(domain.CategoryPullRequest)
		assert.Equal(t, []domain.Value{domain.Count(0), domain.Count(0), domain.Count(0), domain.NoData}, values(prs))
	})
}

func TestValidateMetricNames(t *testing.T) {
	assert.NoError(t, ValidateMetricNames(nil))
	assert.NoError(t, ValidateMetricNames(MetricNames()))

	err := ValidateMetricNames([]string{"CodeChangesGit", "Bogus"})
	assert.True(t, apperrors.IsInvalidConfig(err))
	assert.Contains(t, err.Error(), `"Bogus"`)
}
