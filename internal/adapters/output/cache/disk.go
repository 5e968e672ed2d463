package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appliancebot/internal/domain"

	_ "modernc.org/sqlite"
)

const diskSchema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	key        TEXT PRIMARY KEY,
	result     TEXT NOT NULL,
	stored_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	last_used  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lookup_cache_last_used ON lookup_cache (last_used);
`

// diskStore persists cache entries in a sqlite database so lookups
// survive process restarts. Recency is tracked in the last_used column
// and eviction trims everything past the capacity newest rows.
type diskStore struct {
	db       *sql.DB
	capacity int
}

func newDiskStore(path string, capacity int) (*diskStore, error) {
	if path == "" {
		return nil, errors.New("disk cache requires a path")
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer, funnel everything through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(diskSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &diskStore{db: db, capacity: capacity}, nil
}

func (s *diskStore) Get(key string) (*domain.CacheEntry, error) {
	var (
		payload   string
		storedAt  int64
		expiresAt int64
	)
	err := s.db.QueryRow(
		`SELECT result, stored_at, expires_at FROM lookup_cache WHERE key = ?`, key,
	).Scan(&payload, &storedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result domain.LookupResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}

	if _, err := s.db.Exec(
		`UPDATE lookup_cache SET last_used = ? WHERE key = ?`, time.Now().UnixNano(), key,
	); err != nil {
		return nil, err
	}

	return &domain.CacheEntry{
		Key:       key,
		Result:    result,
		StoredAt:  time.Unix(0, storedAt),
		ExpiresAt: time.Unix(0, expiresAt),
	}, nil
}

func (s *diskStore) Put(entry domain.CacheEntry) error {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO lookup_cache (key, result, stored_at, expires_at, last_used)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
			result = excluded.result,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at,
			last_used = excluded.last_used`,
		entry.Key, string(payload), entry.StoredAt.UnixNano(), entry.ExpiresAt.UnixNano(), time.Now().UnixNano(),
	); err != nil {
		return err
	}

	_, err = s.db.Exec(
		`DELETE FROM lookup_cache WHERE key NOT IN (
			SELECT key FROM lookup_cache ORDER BY last_used DESC LIMIT ?
		)`, s.capacity,
	)
	return err
}

func (s *diskStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM lookup_cache WHERE key = ?`, key)
	return err
}

func (s *diskStore) Close() error {
	return s.db.Close()
}
