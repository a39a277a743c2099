package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createSQLiteApplicationsTable = `
	CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

type sqliteDocumentStore struct {
	db *sql.DB
}

// OpenSQLiteDocumentStore opens (or creates) the database at path and makes
// sure the applications table exists. ":memory:" works for throwaway runs.
func OpenSQLiteDocumentStore(ctx context.Context, path string) (DocumentStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createSQLiteApplicationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create applications table: %w", err)
	}
	return &sqliteDocumentStore{db: db}, nil
}

func (s *sqliteDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM applications WHERE id = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *sqliteDocumentStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	return err
}

func (s *sqliteDocumentStore) Push(ctx context.Context, value []byte) (string, error) {
	key := NewKey()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (id, data) VALUES (?, ?)`, key, string(value),
	); err != nil {
		return "", err
	}
	return key, nil
}

func (s *sqliteDocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteDocumentStore) Close() {
	_ = s.db.Close()
}
