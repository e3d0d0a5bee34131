// Package cache keeps fetched records in a local SQLite database so that
// repeated runs over the same repository and range skip the remote API.
package cache

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store is a SQLite backed record cache keyed by source, category and range.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	logger logrus.FieldLogger
}

// NewStore opens (creating if needed) the cache database at path.
// Entries older than ttl are treated as missing; a zero ttl never expires.
func NewStore(path string, ttl time.Duration, logger logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, ttl: ttl, now: time.Now, logger: logger}
	if err := s.initDatabase(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initDatabase() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read cache schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to apply cache schema: %w", err)
	}
	s.logger.Debug("Cache database initialized.")
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get decodes the cached payload for the key into out. It reports false when
// nothing fresh is cached.
func (s *Store) Get(source string, category domain.Category, rng domain.DateRange, out any) (bool, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM fetches WHERE source = ? AND category = ? AND range_key = ?`,
		source, string(category), rangeKey(rng),
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query cache: %w", err)
	}
	if s.expired(fetchedAt) {
		s.logger.WithField("category", category).Debug("Cache entry expired.")
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to decode cached %s records: %w", category, err)
	}
	return true, nil
}

// Put stores v under the key, replacing any previous entry.
func (s *Store) Put(source string, category domain.Category, rng domain.DateRange, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s records: %w", category, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO fetches (source, category, range_key, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		source, string(category), rangeKey(rng), payload, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Purge removes expired entries, or every entry when all is set, and
// returns how many rows were deleted.
func (s *Store) Purge(all bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	switch {
	case all:
		res, err = s.db.Exec(`DELETE FROM fetches`)
	case s.ttl > 0:
		res, err = s.db.Exec(`DELETE FROM fetches WHERE fetched_at < ?`, s.now().Add(-s.ttl).Unix())
	default:
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expired(fetchedAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(fetchedAt, 0)) > s.ttl
}

func rangeKey(rng domain.DateRange) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return bound(rng.Since) + ".." + bound(rng.Until)
}
