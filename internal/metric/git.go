package metric

import (
	"time"

	"github.com/naka-gawa/evolution-metrics/internal/condition"
	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

func commitDate(c domain.Commit) time.Time { return c.AuthorDate }

func commitWindow(commits []domain.Commit, rng domain.DateRange, conds condition.CommitConditions) window[domain.Commit] {
	return window[domain.Commit]{
		items:    commits,
		rng:      rng,
		stamp:    commitDate,
		validate: domain.Commit.Validate,
		include:  conds.Accepts,
	}
}

// CodeChangesGit counts the eligible commits.
type CodeChangesGit struct {
	window window[domain.Commit]
}

// NewCodeChangesGit creates the commit count metric.
func NewCodeChangesGit(commits []domain.Commit, rng domain.DateRange, conds condition.CommitConditions) *CodeChangesGit {
	return &CodeChangesGit{window: commitWindow(commits, rng, conds)}
}

func (m *CodeChangesGit) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "CodeChangesGit", Title: "Code Changes", Unit: "commits"}
}

func (m *CodeChangesGit) Compute() (domain.Value, error) {
	return m.window.compute(countDistinct)
}

func (m *CodeChangesGit) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, countDistinct)
}

// countDistinct counts commits by SHA; records without a SHA are counted individually.
func countDistinct(commits []domain.Commit) domain.Value {
	seen := make(map[string]struct{}, len(commits))
	n := 0
	for _, c := range commits {
		if c.SHA != "" {
			if _, dup := seen[c.SHA]; dup {
				continue
			}
			seen[c.SHA] = struct{}{}
		}
		n++
	}
	return domain.Count(n)
}

// LineMode selects how added and removed lines combine.
type LineMode string

const (
	// LinesNet sums signed line deltas: added lines count up, removed lines count down.
	LinesNet LineMode = "net"
	// LinesTotal sums added and removed lines as absolute churn.
	LinesTotal LineMode = "total"
)

// ParseLineMode validates a line mode name; empty means net.
func ParseLineMode(s string) (LineMode, error) {
	switch LineMode(s) {
	case "", LinesNet:
		return LinesNet, nil
	case LinesTotal:
		return LinesTotal, nil
	}
	return "", apperrors.NewInvalidConfigError("line-mode", "must be 'net' or 'total'")
}

// CodeChangesLinesGit sums the line changes of source files over the eligible commits.
type CodeChangesLinesGit struct {
	window window[domain.Commit]
	code   condition.CodeConditions
	mode   LineMode
}

// NewCodeChangesLinesGit creates the line churn metric. Only files accepted by
// code are counted.
func NewCodeChangesLinesGit(commits []domain.Commit, rng domain.DateRange, conds condition.CommitConditions, code condition.CodeConditions, mode LineMode) *CodeChangesLinesGit {
	if mode == "" {
		mode = LinesNet
	}
	return &CodeChangesLinesGit{window: commitWindow(commits, rng, conds), code: code, mode: mode}
}

func (m *CodeChangesLinesGit) Descriptor() domain.Descriptor {
	return domain.Descriptor{Name: "CodeChangesLinesGit", Title: "Code Changes Lines", Unit: "lines"}
}

func (m *CodeChangesLinesGit) Compute() (domain.Value, error) {
	return m.window.compute(m.sumLines)
}

func (m *CodeChangesLinesGit) TimeSeries(period domain.Period) ([]domain.Point, error) {
	return m.window.series(period, m.sumLines)
}

func (m *CodeChangesLinesGit) sumLines(commits []domain.Commit) domain.Value {
	total := 0
	for _, c := range commits {
		for _, f := range c.Files {
			if !m.code.Accepts(f) {
				continue
			}
			if m.mode == LinesTotal {
				total += f.Added + f.Removed
			} else {
				total += f.Added - f.Removed
			}
		}
	}
	return domain.Count(total)
}
