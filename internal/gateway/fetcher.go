// Package gateway provides the record sources the metrics are computed from:
// the GitHub API and record files written by a previous fetch.
package gateway

import (
	"context"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// Fetcher defines the behavior of a record source for a single repository.
// The date range is a hint for narrowing the fetch; sources may return
// records outside of it.
type Fetcher interface {
	// Source identifies the repository or file the records come from.
	Source() string
	FetchCommits(ctx context.Context, rng domain.DateRange) ([]domain.Commit, error)
	FetchPullRequests(ctx context.Context, rng domain.DateRange) ([]domain.PullRequest, error)
	FetchIssues(ctx context.Context, rng domain.DateRange) ([]domain.Issue, error)
}
