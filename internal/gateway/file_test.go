package gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

func TestFileFetcher(t *testing.T) {
	created := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	records := domain.Records{
		Commits: []domain.Commit{{
			SHA: "a1", AuthorDate: created, Parents: 1, Branches: []string{"main"},
			Files: []domain.FileChange{{Path: "main.go", Added: 3, Removed: 1}},
		}},
		PullRequests: []domain.PullRequest{{
			Number: 1, CreatedAt: created,
			Reviews: []domain.Review{{State: domain.ReviewCommented, SubmittedAt: created.Add(time.Hour)}},
		}},
		Issues: []domain.Issue{{Number: 2, CreatedAt: created}},
	}

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, WriteRecords(path, records))

	fetcher := NewFileFetcher(path, discardLogger())
	assert.Equal(t, path, fetcher.Source())

	ctx := context.Background()
	commits, err := fetcher.FetchCommits(ctx, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, records.Commits, commits)

	prs, err := fetcher.FetchPullRequests(ctx, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, records.PullRequests, prs)

	issues, err := fetcher.FetchIssues(ctx, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, records.Issues, issues)
}

func TestFileFetcher_Errors(t *testing.T) {
	missing := NewFileFetcher(filepath.Join(t.TempDir(), "missing.json"), discardLogger())
	_, err := missing.FetchCommits(context.Background(), domain.DateRange{})
	assert.ErrorContains(t, err, "failed to read records file")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	broken := NewFileFetcher(path, discardLogger())
	_, err = broken.FetchIssues(context.Background(), domain.DateRange{})
	assert.ErrorContains(t, err, "failed to decode records file")
}
