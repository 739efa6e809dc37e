package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a two-column kv table.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

// EnsureSchema creates the kv table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const query = `
		CREATE TABLE IF NOT EXISTS engine_kv (
			key   text PRIMARY KEY,
			value text NOT NULL
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

func (s *pgStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM engine_kv WHERE key = $1`
	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *pgStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO engine_kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := s.pool.Exec(ctx, query, key, value)
	return err
}

func (s *pgStore) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM engine_kv WHERE key = $1`
	_, err := s.pool.Exec(ctx, query, key)
	return err
}

func (s *pgStore) Keys(ctx context.Context) ([]string, error) {
	const query = `SELECT key FROM engine_kv ORDER BY key`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
