package tokenstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/vidgen/internal/shared"
)

// SQLiteStore keeps the token in the credentials table under key.
//
// The table's primary key guarantees a single row per key; writes are additionally
// serialized so a concurrent Set and Delete cannot interleave.
type SQLiteStore struct {
	db  *sql.DB
	key string
	mu  sync.Mutex
}

// NewSQLiteStore returns a [SQLiteStore] for key, defaulting to [DefaultKey].
func NewSQLiteStore(db *sql.DB, key string) *SQLiteStore {
	if key == "" {
		key = DefaultKey
	}
	return &SQLiteStore{db: db, key: key}
}

func (s *SQLiteStore) Get() (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if value == "" {
		return "", shared.ErrNoToken
	}
	return value, nil
}

func (s *SQLiteStore) Set(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, s.key, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", s.key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
