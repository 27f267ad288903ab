package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (r *postgresStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	const q = `
SELECT value
FROM session_values
WHERE session_id = $1 AND key = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, sessionID, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *postgresStore) Set(ctx context.Context, sessionID, key, value string) error {
	const q = `
INSERT INTO session_values (session_id, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, sessionID, key, value)
	return err
}

func (r *postgresStore) Delete(ctx context.Context, sessionID, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_values WHERE session_id = $1 AND key = $2`, sessionID, key)
	return err
}

// Prune removes values not written since before. Redis expires keys on its
// own; postgres needs this run periodically.
func (r *postgresStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM session_values WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
