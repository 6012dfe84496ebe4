package user

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetDoc(ctx context.Context, uid string) (map[string]any, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT doc FROM user_docs WHERE uid = $1`, uid,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PostgresRepository) SaveDoc(ctx context.Context, uid string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_docs (uid, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (uid)
		DO UPDATE SET doc = excluded.doc, updated_at = now()
	`, uid, raw)
	return err
}
