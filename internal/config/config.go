// Package config loads the command configuration from flags, environment,
// an optional config file and .env, and turns it into a validated run request.
package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/naka-gawa/evolution-metrics/internal/condition"
	"github.com/naka-gawa/evolution-metrics/internal/domain"
	apperrors "github.com/naka-gawa/evolution-metrics/internal/errors"
	"github.com/naka-gawa/evolution-metrics/internal/gateway"
	"github.com/naka-gawa/evolution-metrics/internal/metric"
	"github.com/naka-gawa/evolution-metrics/internal/report"
	"github.com/naka-gawa/evolution-metrics/internal/usecase"
)

// Config holds every setting of a run. Keys match the command line flags.
type Config struct {
	// Source
	Repository  string   `mapstructure:"repository"`
	GitHubToken string   `mapstructure:"github-token"`
	GitHubURL   string   `mapstructure:"github-url"`
	Branches    []string `mapstructure:"branches"`
	Input       string   `mapstructure:"input"`

	// Selection
	Since      string   `mapstructure:"since"`
	Until      string   `mapstructure:"until"`
	Categories []string `mapstructure:"categories"`
	Metrics    []string `mapstructure:"metrics"`
	Period     string   `mapstructure:"period"`

	// Conditions
	CommitConditions []string `mapstructure:"commit-conditions"`
	CodeConditions   []string `mapstructure:"code-conditions"`
	ExcludePostfixes []string `mapstructure:"exclude-postfixes"`
	ExcludeDirs      []string `mapstructure:"exclude-dirs"`
	MainBranch       string   `mapstructure:"main-branch"`

	// Computation
	LineMode            string `mapstructure:"line-mode"`
	DurationAggregation string `mapstructure:"duration-aggregation"`

	// Output
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`

	// Cache
	Cache     bool          `mapstructure:"cache"`
	CachePath string        `mapstructure:"cache-path"`
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`

	Verbose bool `mapstructure:"verbose"`
}

// Accepted date layouts. Date-only values of until cover the whole day.
var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006/01/02"}

// Validate rejects any setting a run would fail on, before anything is fetched.
func (c *Config) Validate() error {
	if _, err := c.Request(); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.CacheTTL < 0 {
		return apperrors.NewInvalidConfigError("cache-ttl", "must not be negative")
	}
	if c.Input != "" {
		return nil
	}
	if _, err := c.GitHubOptions(); err != nil {
		return err
	}
	return nil
}

// ValidateSource checks only the settings needed to fetch records.
func (c *Config) ValidateSource() error {
	if _, err := c.DateRange(); err != nil {
		return err
	}
	if _, err := c.CategoryList(); err != nil {
		return err
	}
	if c.Input != "" {
		return nil
	}
	_, err := c.GitHubOptions()
	return err
}

// GitHubOptions returns the gateway settings for the configured repository.
func (c *Config) GitHubOptions() (gateway.GitHubOptions, error) {
	owner, repo, err := ParseRepository(c.Repository)
	if err != nil {
		return gateway.GitHubOptions{}, err
	}
	if c.GitHubToken == "" {
		return gateway.GitHubOptions{}, apperrors.NewInvalidConfigError("github-token", "a GitHub token is required (set GITHUB_TOKEN)")
	}
	return gateway.GitHubOptions{
		Token:    c.GitHubToken,
		BaseURL:  c.GitHubURL,
		Owner:    owner,
		Repo:     repo,
		Branches: c.Branches,
	}, nil
}

// BranchResolver looks up the default branch of the configured repository.
type BranchResolver interface {
	DefaultBranch(ctx context.Context) (string, error)
}

// ResolveMainBranch sets MainBranch to the repository's default branch when
// master_include is selected and no branch was configured.
func (c *Config) ResolveMainBranch(ctx context.Context, resolver BranchResolver) error {
	if c.MainBranch != "" || !slices.Contains(c.CommitConditions, condition.NameMasterInclude) {
		return nil
	}
	branch, err := resolver.DefaultBranch(ctx)
	if err != nil {
		return apperrors.NewFetchError("failed to resolve the main branch", err)
	}
	c.MainBranch = branch
	return nil
}

// Request builds the metric run request.
func (c *Config) Request() (usecase.Request, error) {
	rng, err := c.DateRange()
	if err != nil {
		return usecase.Request{}, err
	}
	categories, err := c.CategoryList()
	if err != nil {
		return usecase.Request{}, err
	}
	period, err := domain.ParsePeriod(c.Period)
	if err != nil {
		return usecase.Request{}, err
	}

	opts := condition.Options{
		Branch:           c.MainBranch,
		ExcludePostfixes: c.ExcludePostfixes,
		ExcludeDirs:      c.ExcludeDirs,
	}
	commitConds, err := condition.NewCommitConditions(c.CommitConditions, opts)
	if err != nil {
		return usecase.Request{}, err
	}
	codeConds, err := condition.NewCodeConditions(c.CodeConditions, opts)
	if err != nil {
		return usecase.Request{}, err
	}

	lineMode, err := metric.ParseLineMode(c.LineMode)
	if err != nil {
		return usecase.Request{}, err
	}
	aggregation, err := metric.ParseAggregation(c.DurationAggregation)
	if err != nil {
		return usecase.Request{}, err
	}

	req := usecase.Request{
		Categories:       categories,
		Metrics:          c.Metrics,
		Range:            rng,
		Period:           period,
		CommitConditions: commitConds,
		CodeConditions:   codeConds,
		LineMode:         lineMode,
		Aggregation:      aggregation,
	}
	if err := req.Validate(); err != nil {
		return usecase.Request{}, err
	}
	return req, nil
}

// CategoryList parses the configured categories, dropping repeats; empty
// means all of them.
func (c *Config) CategoryList() ([]domain.Category, error) {
	if len(c.Categories) == 0 {
		return domain.Categories, nil
	}
	categories := make([]domain.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		category, err := domain.ParseCategory(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(categories, category) {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// DateRange parses since and until.
func (c *Config) DateRange() (domain.DateRange, error) {
	since, err := parseDate("since", c.Since, false)
	if err != nil {
		return domain.DateRange{}, err
	}
	until, err := parseDate("until", c.Until, true)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(since, until), nil
}

// parseDate parses s with the accepted layouts. An empty string is the zero
// time. With endOfDay, a date-only value moves to the last instant of that day.
func parseDate(field, s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for i, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if endOfDay && i > 0 {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.NewInvalidConfigError(field, fmt.Sprintf("cannot parse date %q (use YYYY-MM-DD, YYYY/MM/DD or RFC3339)", s))
}

// ParseRepository splits "owner/name". GitHub URLs are accepted too.
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://", "http://", "github.com/", "www.github.com/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if i := strings.Index(s, "/"); i >= 0 && strings.Contains(s[:i], ".") {
		// Drop the host of an enterprise URL.
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.NewInvalidConfigError("repository", "expected owner/name")
	}
	return parts[0], parts[1], nil
}
