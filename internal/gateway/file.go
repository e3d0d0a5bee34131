package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

// FileFetcher serves records from a JSON file written by WriteRecords.
// The file is read once, on first use.
type FileFetcher struct {
	path   string
	logger logrus.FieldLogger

	once    sync.Once
	records domain.Records
	err     error
}

// NewFileFetcher creates a Fetcher reading the records file at path.
func NewFileFetcher(path string, logger logrus.FieldLogger) *FileFetcher {
	return &FileFetcher{path: path, logger: logger}
}

// Source returns the file path.
func (f *FileFetcher) Source() string {
	return f.path
}

func (f *FileFetcher) load() (domain.Records, error) {
	f.once.Do(func() {
		f.logger.WithField("path", f.path).Info("Loading records file...")
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.err = fmt.Errorf("failed to read records file: %w", err)
			return
		}
		if err := json.Unmarshal(data, &f.records); err != nil {
			f.err = fmt.Errorf("failed to decode records file %s: %w", f.path, err)
		}
	})
	return f.records, f.err
}

func (f *FileFetcher) FetchCommits(ctx context.Context, _ domain.DateRange) ([]domain.Commit, error) {
	records, err := f.load()
	return records.Commits, err
}

func (f *FileFetcher) FetchPullRequests(ctx context.Context, _ domain.DateRange) ([]domain.PullRequest, error) {
	records, err := f.load()
	return records.PullRequests, err
}

func (f *FileFetcher) FetchIssues(ctx context.Context, _ domain.DateRange) ([]domain.Issue, error) {
	records, err := f.load()
	return records.Issues, err
}

// WriteRecords stores records as indented JSON, readable by FileFetcher.
func WriteRecords(path string, records domain.Records) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	return nil
}
