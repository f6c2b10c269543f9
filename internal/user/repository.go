package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id::text, name, email, password_hash, COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(avatar_url, ''), role, failed_login_count, lockout_end, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, phone, address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Address, u.Role, u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ByID(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// ByEmail matches case-insensitively.
func (r *PostgresRepository) ByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) one(ctx context.Context, sql string, arg any) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, avatar_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, in.Name, in.Phone, in.Address, in.AvatarURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return r.exec(ctx, `UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, avatarURL)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

// RecordLoginFailure counts a failed sign-in. Reaching maxAttempts locks the
// account until lockoutEnd and restarts the count. It reports whether the
// account is now locked.
func (r *PostgresRepository) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockoutEnd time.Time) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET failed_login_count = CASE WHEN failed_login_count + 1 >= $2 THEN 0 ELSE failed_login_count + 1 END,
			lockout_end = CASE WHEN failed_login_count + 1 >= $2 THEN $3 ELSE lockout_end END
		WHERE id = $1
		RETURNING lockout_end IS NOT NULL AND lockout_end = $3
	`, id, maxAttempts, lockoutEnd).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return locked, err
}

func (r *PostgresRepository) ResetLoginFailures(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET failed_login_count = 0, lockout_end = NULL WHERE id = $1`, id)
}

func (r *PostgresRepository) Stats(ctx context.Context, id string) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM orders WHERE user_id = $1),
			(SELECT count(*) FROM wishlist_items WHERE user_id = $1),
			(SELECT count(*) FROM cart_items WHERE user_id = $1),
			(SELECT count(*) FROM reviews WHERE user_id = $1),
			(SELECT COALESCE(sum(total), 0) FROM orders WHERE user_id = $1 AND status <> 'Cancelled')
	`, id).Scan(&s.TotalOrders, &s.TotalWishlistItems, &s.TotalCartItems, &s.TotalReviews, &s.TotalSpent)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Address,
		&u.AvatarURL, &u.Role, &u.FailedLoginCount, &u.LockoutEnd, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
