package usecase

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
	"github.com/naka-gawa/evolution-metrics/internal/metric"
)

// Definition registers a metric under a category.
type Definition struct {
	Name     string
	Category domain.Category
	New      func(records domain.Records, req Request) metric.Metric
}

// definitions is ordered; results follow this order within a category.
var definitions = []Definition{
	{
		Name:     "CodeChangesGit",
		Category: domain.CategoryCommit,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewCodeChangesGit(r.Commits, req.Range, req.CommitConditions)
		},
	},
	{
		Name:     "CodeChangesLinesGit",
		Category: domain.CategoryCommit,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewCodeChangesLinesGit(r.Commits, req.Range, req.CommitConditions, req.CodeConditions, req.LineMode)
		},
	},
	{
		Name:     "IssuesNewGitHub",
		Category: domain.CategoryIssue,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewIssuesNewGitHub(r.Issues, req.Range)
		},
	},
	{
		Name:     "IssuesClosedGitHub",
		Category: domain.CategoryIssue,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewIssuesClosedGitHub(r.Issues, req.Range)
		},
	},
	{
		Name:     "ReviewsGitHub",
		Category: domain.CategoryPullRequest,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewReviewsGitHub(r.PullRequests, req.Range)
		},
	},
	{
		Name:     "ReviewsAcceptedGitHub",
		Category: domain.CategoryPullRequest,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewReviewsAcceptedGitHub(r.PullRequests, req.Range)
		},
	},
	{
		Name:     "ReviewsDeclinedGitHub",
		Category: domain.CategoryPullRequest,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewReviewsDeclinedGitHub(r.PullRequests, req.Range)
		},
	},
	{
		Name:     "ReviewsDurationGitHub",
		Category: domain.CategoryPullRequest,
		New: func(r domain.Records, req Request) metric.Metric {
			return metric.NewReviewsDurationGitHub(r.PullRequests, req.Range, req.Aggregation)
		},
	},
}

// Definitions returns the registered metrics of a category in declaration order.
func Definitions(category domain.Category) []Definition {
	var defs []Definition
	for _, d := range definitions {
		if d.Category == category {
			defs = append(defs, d)
		}
	}
	return defs
}

// MetricNames lists every registered metric name in declaration order.
func MetricNames() []string {
	names := make([]string, len(definitions))
	for i, d := range definitions {
		names[i] = d.Name
	}
	return names
}

// ValidateMetricNames rejects names that are not registered.
func ValidateMetricNames(names []string) error {
	for _, name := range names {
		if _, ok := lookup(name); !ok {
			return apperrors.NewInvalidConfigError("metrics", fmt.Sprintf("unknown metric %q (known: %s)", name, strings.Join(MetricNames(), ", ")))
		}
	}
	return nil
}

func lookup(name string) (Definition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
