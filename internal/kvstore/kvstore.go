// Package kvstore is a small JSON document store over SQLite. The game keeps
// exactly two documents: the progress snapshot under "progress" and the
// achievement record under "achievements".
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get and Delete when the key has no document.
var ErrNotFound = errors.New("not found")

// Fixed keys used by the game engine.
const (
	KeyProgress     = "progress"
	KeyAchievements = "achievements"
)

// Store reads and writes JSON documents in the kv_documents table. The
// schema is owned by the migrations package.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put marshals doc and upserts it under key.
func (s *Store) Put(ctx context.Context, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv_documents (key, data, updated_at) VALUES (?, jsonb(?), ?)`,
		key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get unmarshals the document under key into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM kv_documents WHERE key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Delete removes the document under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_documents WHERE key = ?`, key,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
