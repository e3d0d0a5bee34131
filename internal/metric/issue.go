package metric

import (
	"time"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// IssuesNewGitHub counts issues opened within the range.
type IssuesNewGitHub struct {
	window window[domain.Issue]
}

// NewIssuesNewGitHub creates the new issue count metric.
func NewIssuesNewGitHub(issues []domain.Issue, rng domain.DateRange) *IssuesNewGitHub {
	return &IssuesNewGitHub{window: window[domain.Issue]{
		items:    issues,
		rng:      rng,
		stamp:    func(i domain.Issue) time.Time { return i.CreatedAt },
		validate: domain.Issue.Validate,
	}}
}

func (m *IssuesNewGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "IssuesNewGitHub", Title: "Issues New", Unit: "issues"}
}

func (m *IssuesNewGitHub) Compute() (domain.Value, error) {
	return m.window.compute(count[domain.Issue])
}

func (m *IssuesNewGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, count[domain.Issue])
}

// IssuesClosedGitHub counts issues closed within the range, whenever they were opened.
type IssuesClosedGitHub struct {
	window window[domain.Issue]
}

// NewIssuesClosedGitHub creates the closed issue count metric.
func NewIssuesClosedGitHub(issues []domain.Issue, rng domain.DateRange) *IssuesClosedGitHub {
	return &IssuesClosedGitHub{window: window[domain.Issue]{
		items:    issues,
		rng:      rng,
		stamp:    func(i domain.Issue) time.Time { return *i.ClosedAt },
		validate: domain.Issue.Validate,
		include:  func(i domain.Issue) bool { return i.ClosedAt != nil },
	}}
}

func (m *IssuesClosedGitHub) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "IssuesClosedGitHub", Title: "Issues Closed", Unit: "issues"}
}

func (m *IssuesClosedGitHub) Compute() (domain.Value, error) {
	return m.window.compute(count[domain.Issue])
}

func (m *IssuesClosedGitHub) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, count[domain.Issue])
}
