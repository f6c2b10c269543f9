package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ResetStore persists hashed password reset tokens.
type ResetStore interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// Consume marks a live token as used and reports whether one was found.
	Consume(ctx context.Context, userID, tokenHash string, now time.Time) (bool, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresResetStore struct {
	pool execer
}

func NewPostgresResetStore(pool execer) *PostgresResetStore {
	return &PostgresResetStore{pool: pool}
}

func (s *PostgresResetStore) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

func (s *PostgresResetStore) Consume(ctx context.Context, userID, tokenHash string, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = $3
		WHERE user_id = $1 AND token_hash = $2 AND used_at IS NULL AND expires_at > $3
	`, userID, tokenHash, now)
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
