// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/evolution-metrics/internal/condition"
	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
	"github.com/naka-gawa/evolution-metrics/internal/gateway"
	"github.com/naka-gawa/evolution-metrics/internal/metric"
)

// Request describes one metrics run.
type Request struct {
	Categories []domain.Category
	// Metrics restricts the run to the named metrics. Empty means all.
	Metrics          []string
	Range            domain.DateRange
	Period           domain.Period
	CommitConditions condition.CommitConditions
	CodeConditions   condition.CodeConditions
	LineMode         metric.LineMode
	Aggregation      metric.Aggregation
}

// Validate rejects requests naming unknown categories or metrics.
func (req Request) Validate() error {
	if len(req.Categories) == 0 {
		return apperrors.NewInvalidConfigError("categories", "at least one category is required")
	}
	for _, c := range req.Categories {
		if _, err := domain.ParseCategory(string(c)); err != nil {
			return err
		}
	}
	return ValidateMetricNames(req.Metrics)
}

func (req Request) wants(name string) bool {
	if len(req.Metrics) == 0 {
		return true
	}
	for _, m := range req.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// Runner is the use case for computing metrics.
// It orchestrates the fetching of records and the computation of every requested metric.
type Runner struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
}

// NewRunner creates a new Runner instance.
func NewRunner(fetcher gateway.Fetcher, logger logrus.FieldLogger) *Runner {
	return &Runner{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run validates the request, fetches the records of the requested categories
// and computes the metrics.
func (r *Runner) Run(ctx context.Context, req Request) (*domain.Results, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	records, err := r.Fetch(ctx, req.Categories, req.Range)
	if err != nil {
		return nil, err
	}
	results, err := r.Compute(req, records)
	if err != nil {
		return nil, err
	}
	results.Repository = r.fetcher.Source()
	return results, nil
}

// Fetch retrieves the records of every category concurrently.
func (r *Runner) Fetch(ctx context.Context, categories []domain.Category, rng domain.DateRange) (domain.Records, error) {
	r.logger.WithField("source", r.fetcher.Source()).Info("Usecase: Starting record fetch...")

	var records domain.Records

	// Each goroutine writes a distinct field of records.
	eg, egCtx := errgroup.WithContext(ctx)
	seen := make(map[domain.Category]bool, len(categories))
	for _, category := range categories {
		category := category
		if seen[category] {
			continue
		}
		seen[category] = true
		switch category {
		case domain.CategoryCommit:
			eg.Go(func() error {
				var err error
				records.Commits, err = r.fetcher.FetchCommits(egCtx, rng)
				return wrapFetch(category, err)
			})
		case domain.CategoryPullRequest:
			eg.Go(func() error {
				var err error
				records.PullRequests, err = r.fetcher.FetchPullRequests(egCtx, rng)
				return wrapFetch(category, err)
			})
		case domain.CategoryIssue:
			eg.Go(func() error {
				var err error
				records.Issues, err = r.fetcher.FetchIssues(egCtx, rng)
				return wrapFetch(category, err)
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return domain.Records{}, err
	}
	r.logger.WithFields(logrus.Fields{
		"commits":       len(records.Commits),
		"pull_requests": len(records.PullRequests),
		"issues":        len(records.Issues),
	}).Info("Usecase: All records fetched successfully.")
	return records, nil
}

func wrapFetch(category domain.Category, err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewFetchError(fmt.Sprintf("fetch %s records", category), err)
}

// Compute runs every requested metric over the records, category by category,
// in registration order. A repeated category yields one block. The first
// failing metric aborts the run.
func (r *Runner) Compute(req Request, records domain.Records) (*domain.Results, error) {
	results := &domain.Results{
		RunID:      uuid.NewString(),
		Range:      req.Range,
		Period:     req.Period,
		Categories: make([]domain.CategoryResults, 0, len(req.Categories)),
	}

	seen := make(map[domain.Category]bool, len(req.Categories))
	for _, category := range req.Categories {
		if seen[category] {
			continue
		}
		seen[category] = true
		block := domain.CategoryResults{Category: category, Metrics: []domain.MetricResult{}}
		for _, def := range Definitions(category) {
			if !req.wants(def.Name) {
				continue
			}
			m := def.New(records, req)

			value, err := m.Compute()
			if err != nil {
				return nil, fmt.Errorf("compute %s: %w", def.Name, err)
			}
			result := domain.MetricResult{Metric: m.Descriptor(), Value: value}

			if req.Period != domain.PeriodNone {
				result.Series, err = m.TimeSeries(req.Period)
				if err != nil {
					return nil, fmt.Errorf("compute %s time series: %w", def.Name, err)
				}
			}

			r.logger.WithFields(logrus.Fields{
				"category": category,
				"metric":   def.Name,
				"value":    value.String(),
			}).Debug("Usecase: Metric computed.")
			block.Metrics = append(block.Metrics, result)
		}
		results.Categories = append(results.Categories, block)
	}

	r.logger.Info("Usecase: Computation complete.")
	return results, nil
}
