package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/resonate/internal/shared"
)

// LocalStorage is a string key/value store persisted in the local_storage table.
//
// It plays the role a browser's localStorage plays for a web client: small records that must survive restarts.
type LocalStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewLocalStorage creates a new [LocalStorage] with the given database connection
func NewLocalStorage(db *sql.DB) *LocalStorage {
	return &LocalStorage{db: db, now: time.Now}
}

// Get returns the value stored under key. A missing key yields [shared.ErrStorageKeyNotFound].
func (s *LocalStorage) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrStorageKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read storage key %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *LocalStorage) Set(key, value string) error {
	now := s.now()
	query := `
		INSERT INTO local_storage (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to write storage key %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *LocalStorage) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove storage key %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (s *LocalStorage) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan storage key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage keys: %w", err)
	}
	return keys, nil
}

// UpdatedAt returns when key was last written.
func (s *LocalStorage) UpdatedAt(key string) (time.Time, error) {
	var updated time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM local_storage WHERE key = ?`, key).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s", shared.ErrStorageKeyNotFound, key)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read storage key %s: %w", key, err)
	}
	return updated, nil
}
