// Package condition provides the predicates that decide which commits are
// counted and which changed files count as source code.
package condition

import (
	"strings"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// CommitCondition decides whether a commit is included in commit metrics.
type CommitCondition interface {
	Name() string
	Accepts(commit domain.Commit) bool
}

// CommitConditions is an AND-composition of commit conditions.
type CommitConditions []CommitCondition

// Accepts reports whether every condition accepts the commit. An empty set accepts everything.
func (cs CommitConditions) Accepts(commit domain.Commit) bool {
	for _, c := range cs {
		if !c.Accepts(commit) {
			return false
		}
	}
	return true
}

// Names returns the configured condition names in order.
func (cs CommitConditions) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return names
}

// MergeExclude rejects merge commits.
type MergeExclude struct{}

func (MergeExclude) Name() string { return NameMergeExclude }

func (MergeExclude) Accepts(commit domain.Commit) bool {
	return commit.Parents <= 1
}

// EmptyExclude rejects commits that change no files.
type EmptyExclude struct{}

func (EmptyExclude) Name() string { return NameEmptyExclude }

func (EmptyExclude) Accepts(commit domain.Commit) bool {
	return len(commit.Files) > 0
}

// MasterInclude accepts only commits reachable from the primary branch.
type MasterInclude struct {
	Branch string
}

func (MasterInclude) Name() string { return NameMasterInclude }

func (m MasterInclude) Accepts(commit domain.Commit) bool {
	for _, ref := range commit.Branches {
		if branchName(ref) == m.Branch {
			return true
		}
	}
	return false
}

// branchName strips ref decorations such as "HEAD -> ", "refs/heads/" and
// "refs/remotes/<remote>/" so that refs compare by plain branch name.
func branchName(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "HEAD -> ")
	switch {
	case strings.HasPrefix(ref, "refs/heads/"):
		return strings.TrimPrefix(ref, "refs/heads/")
	case strings.HasPrefix(ref, "refs/remotes/"):
		rest := strings.TrimPrefix(ref, "refs/remotes/")
		if i := strings.Index(rest, "/"); i >= 0 {
			return rest[i+1:]
		}
		return rest
	}
	return ref
}
