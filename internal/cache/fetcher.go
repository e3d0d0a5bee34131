package cache

import (
	"context"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	"github.com/naka-gawa/evolution-metrics/internal/gateway"
)

// Fetcher wraps another gateway.Fetcher and serves its results from a Store
// when a fresh entry exists.
type Fetcher struct {
	next  gateway.Fetcher
	store *Store
}

// NewFetcher decorates next with store.
func NewFetcher(next gateway.Fetcher, store *Store) *Fetcher {
	return &Fetcher{next: next, store: store}
}

// keyer is implemented by fetchers whose results depend on more than the
// source name, such as the API endpoint or the selected branches.
type keyer interface {
	CacheKey() string
}

func (f *Fetcher) Source() string {
	return f.next.Source()
}

// key is the cache key of the wrapped fetcher.
func (f *Fetcher) key() string {
	if k, ok := f.next.(keyer); ok {
		return k.CacheKey()
	}
	return f.next.Source()
}

func (f *Fetcher) FetchCommits(ctx context.Context, rng domain.DateRange) ([]domain.Commit, error) {
	return cached(ctx, f, domain.CategoryCommit, rng, f.next.FetchCommits)
}

func (f *Fetcher) FetchPullRequests(ctx context.Context, rng domain.DateRange) ([]domain.PullRequest, error) {
	return cached(ctx, f, domain.CategoryPullRequest, rng, f.next.FetchPullRequests)
}

func (f *Fetcher) FetchIssues(ctx context.Context, rng domain.DateRange) ([]domain.Issue, error) {
	return cached(ctx, f, domain.CategoryIssue, rng, f.next.FetchIssues)
}

func cached[T any](
	ctx context.Context,
	f *Fetcher,
	category domain.Category,
	rng domain.DateRange,
	fetch func(context.Context, domain.DateRange) ([]T, error),
) ([]T, error) {
	logger := f.store.logger.WithField("category", category)

	var items []T
	hit, err := f.store.Get(f.key(), category, rng, &items)
	if err != nil {
		logger.WithError(err).Warn("Ignoring unreadable cache entry.")
	}
	if hit {
		logger.WithField("count", len(items)).Info("Using cached records.")
		return items, nil
	}

	items, err = fetch(ctx, rng)
	if err != nil {
		return nil, err
	}
	if err := f.store.Put(f.key(), category, rng, items); err != nil {
		logger.WithError(err).Warn("Failed to cache records.")
	}
	return items, nil
}
