// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"

	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
)

// Category names one family of fetched records.
type Category string

const (
	CategoryCommit      Category = "commit"
	CategoryIssue       Category = "issue"
	CategoryPullRequest Category = "pull_request"
)

// Categories lists every known category in report order.
var Categories = []Category{CategoryCommit, CategoryIssue, CategoryPullRequest}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", apperrors.NewInvalidConfigError("categories", fmt.Sprintf("unknown category %q", s))
}

// FileChange is one changed file of a commit.
type FileChange struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// Commit is a single version-control commit.
type Commit struct {
	SHA        string       `json:"sha"`
	Author     string       `json:"author,omitempty"`
	AuthorDate time.Time    `json:"author_date"`
	Parents    int          `json:"parents"`
	Branches   []string     `json:"branches,omitempty"`
	Files      []FileChange `json:"files"`
}

// Validate reports a malformed record error when a field used by the metrics is missing.
func (c Commit) Validate() error {
	if c.AuthorDate.IsZero() {
		return apperrors.NewMalformedRecordError("commit", c.SHA, "author date")
	}
	for _, f := range c.Files {
		if f.Path == "" {
			return apperrors.NewMalformedRecordError("commit", c.SHA, "file path")
		}
		if f.Added < 0 || f.Removed < 0 {
			return apperrors.NewMalformedRecordError("commit", c.SHA, "line counts for "+f.Path)
		}
	}
	return nil
}

// ReviewState is the state a pull request review was submitted with.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Review is one review sub-event of a pull request.
type Review struct {
	State       ReviewState `json:"state"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// PullRequest holds the timestamps and reviews of a single pull request.
type PullRequest struct {
	Number    int        `json:"number"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Merged    bool       `json:"merged"`
	Reviews   []Review   `json:"reviews,omitempty"`
}

// Validate reports a malformed record error when a field used by the metrics is missing.
func (p PullRequest) Validate() error {
	id := fmt.Sprintf("#%d", p.Number)
	if p.CreatedAt.IsZero() {
		return apperrors.NewMalformedRecordError("pull request", id, "creation date")
	}
	if p.Merged && p.MergedAt == nil {
		return apperrors.NewMalformedRecordError("pull request", id, "merge date")
	}
	if resolved, ok := p.ResolvedAt(); ok && resolved.Before(p.CreatedAt) {
		return apperrors.NewMalformedRecordError("pull request", id, "a close date after its creation date")
	}
	return nil
}

// IsMerged reports whether the pull request was merged.
func (p PullRequest) IsMerged() bool {
	return p.Merged || p.MergedAt != nil
}

// IsClosed reports whether the pull request is no longer open, merged or not.
func (p PullRequest) IsClosed() bool {
	return p.ClosedAt != nil || p.IsMerged()
}

// ResolvedAt returns when the pull request was closed or merged, whichever is known.
// The second return value is false for open pull requests.
func (p PullRequest) ResolvedAt() (time.Time, bool) {
	switch {
	case p.MergedAt != nil:
		return *p.MergedAt, true
	case p.ClosedAt != nil:
		return *p.ClosedAt, true
	}
	return time.Time{}, false
}

// Issue is a plain issue; pull requests are filtered out by the fetchers.
type Issue struct {
	Number    int        `json:"number"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Validate reports a malformed record error when a field used by the metrics is missing.
func (i Issue) Validate() error {
	if i.CreatedAt.IsZero() {
		return apperrors.NewMalformedRecordError("issue", fmt.Sprintf("#%d", i.Number), "creation date")
	}
	return nil
}

// Records bundles the fetched records of every category for one repository.
type Records struct {
	Commits      []Commit      `json:"commits,omitempty"`
	PullRequests []PullRequest `json:"pull_requests,omitempty"`
	Issues       []Issue       `json:"issues,omitempty"`
}
