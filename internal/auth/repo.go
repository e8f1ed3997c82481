package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to stored API tokens.
type Repository interface {
	ListActive(ctx context.Context) ([]APIToken, error)
	Create(ctx context.Context, name, tokenHash string) (APIToken, error)
	TouchLastUsed(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListActive(ctx context.Context) ([]APIToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, token_hash, is_active, created_at, last_used_at
		 FROM api_tokens WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []APIToken
	for rows.Next() {
		var tok APIToken
		if err := rows.Scan(&tok.ID, &tok.Name, &tok.TokenHash, &tok.IsActive, &tok.CreatedAt, &tok.LastUsedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}

func (r *repository) Create(ctx context.Context, name, tokenHash string) (APIToken, error) {
	tok := APIToken{Name: name, TokenHash: tokenHash, IsActive: true}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO api_tokens (name, token_hash, is_active, created_at)
		 VALUES ($1, $2, TRUE, $3)
		 RETURNING id, created_at`,
		name, tokenHash, time.Now().UTC(),
	).Scan(&tok.ID, &tok.CreatedAt)
	if err != nil {
		return APIToken{}, err
	}
	return tok, nil
}

func (r *repository) TouchLastUsed(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_tokens SET last_used_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
	return err
}
