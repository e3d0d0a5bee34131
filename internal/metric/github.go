package metric

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Aggregation selects how durations are summarised.
type Aggregation string

const (
	AggregationMean   Aggregation = "mean"
	AggregationMedian Aggregation = "median"
)

// ParseAggregation validates an aggregation name; empty means mean.
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(s) {
	case "", AggregationMean:
		return AggregationMean, nil
	case AggregationMedian:
		return AggregationMedian, nil
	}
	return "", apperrors.NewInvalidConfigError("duration-aggregation", "must be 'mean' or 'median'")
}

const hoursPerDay = 24

func prCreated(p domain.PullRequest) time.Time { return p.CreatedAt }

func pullRequestWindow(prs []domain.PullRequest, rng domain.DateRange) window[domain.PullRequest] {
	return window[domain.PullRequest]{
		items:    prs,
		rng:      rng,
		stamp:    prCreated,
		validate: domain.PullRequest.Validate,
	}
}

// ReviewsGitHub counts eligible pull requests that received at least one review.
type ReviewsGitHub struct {
	window window[domain.PullRequest]
}

// NewReviewsGitHub creates the reviewed pull request count metric.
func NewReviewsGitHub(prs []domain.PullRequest, rng domain.DateRange) *ReviewsGitHub {
	return &ReviewsGitHub{window: pullRequestWindow(prs, rng)}
}

func (m *ReviewsGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "ReviewsGitHub", Title: "Reviews", Unit: "pull requests"}
}

var countReviewed = countWhere(func(p domain.PullRequest) bool { return len(p.Reviews) > 0 })

func (m *ReviewsGitHub) Compute() (domain.Value, error) {
	return m.window.compute(countReviewed)
}

func (m *ReviewsGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, countReviewed)
}

// ReviewsAcceptedGitHub counts eligible pull requests that were merged while
// their latest decisive review was an approval.
type ReviewsAcceptedGitHub struct {
	window window[domain.PullRequest]
}

// NewReviewsAcceptedGitHub creates the accepted review count metric.
func NewReviewsAcceptedGitHub(prs []domain.PullRequest, rng domain.DateRange) *ReviewsAcceptedGitHub {
	return &ReviewsAcceptedGitHub{window: pullRequestWindow(prs, rng)}
}

func (m *ReviewsAcceptedGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "ReviewsAcceptedGitHub", Title: "Reviews Accepted", Unit: "pull requests"}
}

var countAccepted = countWhere(Accepted)

func (m *ReviewsAcceptedGitHub) Compute() (domain.Value, error) {
	return m.window.compute(countAccepted)
}

func (m *ReviewsAcceptedGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, countAccepted)
}

// Accepted reports whether a pull request was merged with an approving
// terminal review. Only APPROVED and CHANGES_REQUESTED reviews submitted up to
// the merge are decisive; comments and dismissed reviews are ignored. On equal
// timestamps the later review in the list wins.
func Accepted(p domain.PullRequest) bool {
	mergedAt, ok := p.ResolvedAt()
	if !p.IsMerged() || !ok {
		return false
	}
	var (
		terminal domain.ReviewState
		latest   time.Time
	)
	for _, r := range p.Reviews {
		if r.State != domain.ReviewApproved && r.State != domain.ReviewChangesRequested {
			continue
		}
		if r.SubmittedAt.After(mergedAt) {
			continue
		}
		if terminal == "" || !r.SubmittedAt.Before(latest) {
			terminal = r.State
			latest = r.SubmittedAt
		}
	}
	return terminal == domain.ReviewApproved
}

// ReviewsDeclinedGitHub counts eligible pull requests closed without being merged.
type ReviewsDeclinedGitHub struct {
	window window[domain.PullRequest]
}

// NewReviewsDeclinedGitHub creates the declined review count metric.
func NewReviewsDeclinedGitHub(prs []domain.PullRequest, rng domain.DateRange) *ReviewsDeclinedGitHub {
	return &ReviewsDeclinedGitHub{window: pullRequestWindow(prs, rng)}
}

func (m *ReviewsDeclinedGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "ReviewsDeclinedGitHub", Title: "Reviews Declined", Unit: "pull requests"}
}

var countDeclined = countWhere(func(p domain.PullRequest) bool { return p.ClosedAt != nil && !p.IsMerged() })

func (m *ReviewsDeclinedGitHub) Compute() (domain.Value, error) {
	return m.window.compute(countDeclined)
}

func (m *ReviewsDeclinedGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, countDeclined)
}

// ReviewsDurationGitHub summarises, in days, how long eligible closed pull
// requests stayed open.
type ReviewsDurationGitHub struct {
	window      window[domain.PullRequest]
	aggregation Aggregation
}

// NewReviewsDurationGitHub creates the review duration metric.
func NewReviewsDurationGitHub(prs []domain.PullRequest, rng domain.DateRange, aggregation Aggregation) *ReviewsDurationGitHub {
	if aggregation == "" {
		aggregation = AggregationMean
	}
	return &ReviewsDurationGitHub{window: pullRequestWindow(prs, rng), aggregation: aggregation}
}

func (m *ReviewsDurationGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "ReviewsDurationGitHub", Title: "Reviews Duration (" + string(m.aggregation) + ")", Unit: "days"}
}

func (m *ReviewsDurationGitHub) Compute() (domain.Value, error) {
	return m.window.compute(m.summarise)
}

func (m *ReviewsDurationGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, m.summarise)
}

func (m *ReviewsDurationGitHub) summarise(prs []domain.PullRequest) domain.Value {
	var days stats.Float64Data
	for _, p := range prs {
		resolved, ok := p.ResolvedAt()
		if !ok {
			continue
		}
		days = append(days, resolved.Sub(p.CreatedAt).Hours()/hoursPerDay)
	}
	if len(days) == 0 {
		return domain.NoData
	}

	var (
		v   float64
		err error
	)
	switch m.aggregation {
	case AggregationMedian:
		v, err = days.Median()
	default:
		v, err = days.Mean()
	}
	if err != nil {
		return domain.NoData
	}
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return domain.Number(v)
	}
	return domain.Number(rounded)
}
