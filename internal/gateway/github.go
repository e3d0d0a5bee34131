package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// GitHubOptions configures the GitHub gateway.
type GitHubOptions struct {
	Token string
	// BaseURL points at a GitHub Enterprise server; empty means github.com.
	BaseURL string
	Owner   string
	Repo    string
	// Branches whose commits are fetched; empty means the default branch.
	Branches []string
}

// GitHubGateway is the GitHub implementation of the Fetcher interface.
// Commits and issues come from the REST API, pull requests with their reviews
// from the GraphQL API.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	branches      []string
	logger        logrus.FieldLogger
}

// pullRequestsQuery pages through the pull requests of a repository, newest first.
type pullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Number    int
				CreatedAt githubv4.DateTime
				ClosedAt  *githubv4.DateTime
				MergedAt  *githubv4.DateTime
				Merged    bool
				Reviews   struct {
					Nodes []struct {
						State       githubv4.PullRequestReviewState
						SubmittedAt *githubv4.DateTime
					}
				} `graphql:"reviews(first: 100)"`
			}
		} `graphql:"pullRequests(first: 50, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts GitHubOptions, logger logrus.FieldLogger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.BaseURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(strings.TrimSuffix(opts.BaseURL, "/")+"/api/graphql", httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		owner:         opts.Owner,
		repo:          opts.Repo,
		branches:      opts.Branches,
		logger:        logger,
	}, nil
}

// Source returns the repository as owner/name.
func (g *GitHubGateway) Source() string {
	return g.owner + "/" + g.repo
}

// CacheKey identifies the fetched data: the API endpoint, the repository and
// the branches whose commits are listed.
func (g *GitHubGateway) CacheKey() string {
	key := g.restClient.BaseURL.String() + g.Source()
	if len(g.branches) > 0 {
		key += "@" + strings.Join(g.branches, ",")
	}
	return key
}

// DefaultBranch asks GitHub for the repository's default branch.
func (g *GitHubGateway) DefaultBranch(ctx context.Context) (string, error) {
	repository, _, err := g.restClient.Repositories.Get(ctx, g.owner, g.repo)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s: %w", g.Source(), err)
	}
	return repository.GetDefaultBranch(), nil
}

// FetchCommits lists the commits of every configured branch and fetches the
// file changes of each. A commit reachable from several branches is returned
// once, carrying all of their names.
func (g *GitHubGateway) FetchCommits(ctx context.Context, rng domain.DateRange) ([]domain.Commit, error) {
	g.logger.Info("Fetching commit data using REST API...")

	branches := g.branches
	if len(branches) == 0 {
		branch, err := g.DefaultBranch(ctx)
		if err != nil {
			return nil, err
		}
		branches = []string{branch}
	}

	bySHA := make(map[string]int)
	var commits []domain.Commit
	for _, branch := range branches {
		opts := &github.CommitsListOptions{SHA: branch, ListOptions: github.ListOptions{PerPage: 100}}
		if rng.Since != nil {
			opts.Since = *rng.Since
		}
		if rng.Until != nil {
			opts.Until = *rng.Until
		}

		for {
			page, resp, err := g.restClient.Repositories.ListCommits(ctx, g.owner, g.repo, opts)
			if err != nil {
				// An empty repository has no commits to list.
				if resp != nil && resp.StatusCode == http.StatusConflict {
					break
				}
				return nil, fmt.Errorf("failed to list commits on %s: %w", branch, err)
			}
			for _, listed := range page {
				sha := listed.GetSHA()
				if i, ok := bySHA[sha]; ok {
					commits[i].Branches = append(commits[i].Branches, branch)
					continue
				}
				detail, _, err := g.restClient.Repositories.GetCommit(ctx, g.owner, g.repo, sha, &github.ListOptions{PerPage: 100})
				if err != nil {
					return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
				}
				commit := toCommit(detail)
				commit.Branches = []string{branch}
				bySHA[sha] = len(commits)
				commits = append(commits, commit)
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
			g.logger.WithField("branch", branch).Debug("  Fetching next page of commits...")
		}
	}
	g.logger.WithField("count", len(commits)).Info("Completed fetching commit data.")
	return commits, nil
}

func toCommit(rc *github.RepositoryCommit) domain.Commit {
	author := rc.GetAuthor().GetLogin()
	if author == "" {
		author = rc.GetCommit().GetAuthor().GetName()
	}
	files := make([]domain.FileChange, 0, len(rc.Files))
	for _, f := range rc.Files {
		files = append(files, domain.FileChange{
			Path:    f.GetFilename(),
			Added:   f.GetAdditions(),
			Removed: f.GetDeletions(),
		})
	}
	return domain.Commit{
		SHA:        rc.GetSHA(),
		Author:     author,
		AuthorDate: rc.GetCommit().GetAuthor().GetDate().Time,
		Parents:    len(rc.Parents),
		Files:      files,
	}
}

// FetchIssues lists the issues of the repository. Pull requests, which the
// issues endpoint also returns, are skipped.
func (g *GitHubGateway) FetchIssues(ctx context.Context, rng domain.DateRange) ([]domain.Issue, error) {
	g.logger.Info("Fetching issue data using REST API...")
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	// Since filters on the update time, which is never before the close time.
	if rng.Since != nil {
		opts.Since = *rng.Since
	}

	var issues []domain.Issue
	for {
		page, resp, err := g.restClient.Issues.ListByRepo(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues with REST API: %w", err)
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			issues = append(issues, domain.Issue{
				Number:    issue.GetNumber(),
				CreatedAt: issue.GetCreatedAt().Time,
				ClosedAt:  timestampPtr(issue.ClosedAt),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("  Fetching next page of issues...")
	}
	g.logger.WithField("count", len(issues)).Info("Completed fetching issue data.")
	return issues, nil
}

func timestampPtr(ts *github.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

// FetchPullRequests pages through the pull requests with their reviews, newest
// first, and stops once pull requests predate the range.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, rng domain.DateRange) ([]domain.PullRequest, error) {
	g.logger.Info("Fetching pull request data using GraphQL API...")

	variables := map[string]interface{}{
		"owner":  githubv4.String(g.owner),
		"name":   githubv4.String(g.repo),
		"cursor": (*githubv4.String)(nil),
	}

	var prs []domain.PullRequest
	for {
		var q pullRequestsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}

		reachedStart := false
		for _, node := range q.Repository.PullRequests.Nodes {
			if rng.Since != nil && node.CreatedAt.Before(*rng.Since) {
				reachedStart = true
				break
			}
			pr := domain.PullRequest{
				Number:    node.Number,
				CreatedAt: node.CreatedAt.Time,
				ClosedAt:  dateTimePtr(node.ClosedAt),
				MergedAt:  dateTimePtr(node.MergedAt),
				Merged:    node.Merged,
			}
			for _, review := range node.Reviews.Nodes {
				// Pending reviews have not been submitted yet.
				if review.SubmittedAt == nil {
					continue
				}
				pr.Reviews = append(pr.Reviews, domain.Review{
					State:       domain.ReviewState(review.State),
					SubmittedAt: review.SubmittedAt.Time,
				})
			}
			prs = append(prs, pr)
		}

		if reachedStart || !q.Repository.PullRequests.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
		g.logger.Debug("  Fetching next page of pull requests...")
	}
	g.logger.WithField("count", len(prs)).Info("Completed fetching pull request data.")
	return prs, nil
}

func dateTimePtr(dt *githubv4.DateTime) *time.Time {
	if dt == nil {
		return nil
	}
	t := dt.Time
	return &t
}
