package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"
)

const createApplicationsTable = `
	CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type postgresDocumentStore struct {
	db DB
}

// NewPostgresDocumentStore keeps documents as JSONB rows in the
// applications table. Close closes db when it is a pool.
func NewPostgresDocumentStore(db DB) DocumentStore {
	return &postgresDocumentStore{db: db}
}

// EnsurePostgresSchema creates the applications table when missing.
func EnsurePostgresSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, createApplicationsTable)
	return err
}

/* ---------- Reads ---------- */

func (s *postgresDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(ctx, `SELECT data::text FROM applications WHERE id=$1`, key).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

/* ---------- Writes ---------- */

func (s *postgresDocumentStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO applications (id, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = NOW()
	`, key, string(value))
	return err
}

func (s *postgresDocumentStore) Push(ctx context.Context, value []byte) (string, error) {
	key := NewKey()
	_, err := s.db.Exec(ctx, `
		INSERT INTO applications (id, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
	`, key, string(value))
	if err != nil {
		return "", err
	}
	return key, nil
}

/* ---------- Lifecycle ---------- */

func (s *postgresDocumentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *postgresDocumentStore) Close() {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
}
