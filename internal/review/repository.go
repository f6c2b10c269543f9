package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrDuplicate       = errors.New("review already exists")
	ErrProductNotFound = errors.New("product not found")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	ProductExists(ctx context.Context, productID int64) error
	ListByProduct(ctx context.Context, productID int64) ([]Review, error)
	Exists(ctx context.Context, userID string, productID int64) (bool, error)
	Create(ctx context.Context, userID string, productID int64, in Input) (int64, error)
	Get(ctx context.Context, id int64) (Review, error)
	Update(ctx context.Context, id int64, in Input) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f AdminFilter) ([]Review, int, error)
	Stats(ctx context.Context, monthStart, yearStart time.Time) (Stats, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reviewQuery = `
	SELECT r.id, r.product_id, p.name, r.user_id::text, u.name, u.email, COALESCE(u.avatar_url, ''),
		r.rating, r.comment, r.created_at, r.updated_at
	FROM reviews r
	JOIN products p ON p.id = r.product_id
	JOIN users u ON u.id = r.user_id`

func (r *PostgresRepository) ProductExists(ctx context.Context, productID int64) error {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	return err
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := r.pool.Query(ctx, reviewQuery+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Exists(ctx context.Context, userID string, productID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)
	`, userID, productID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, productID int64, in Input) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, productID, in.Rating, in.Comment).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, reviewQuery+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return rv, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, in Input) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = now() WHERE id = $1
	`, id, in.Rating, in.Comment)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f AdminFilter) ([]Review, int, error) {
	p := paging.Normalize(f.PageNumber, f.PageSize)

	var (
		where []string
		args  []any
	)
	if f.ProductID > 0 {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("r.product_id = $%d", len(args)))
	}
	if f.Rating > 0 {
		args = append(args, f.Rating)
		where = append(where, fmt.Sprintf("r.rating = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d OR r.comment ILIKE $%d)", n, n, n))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews r JOIN users u ON u.id = r.user_id`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	pageArgs := append(append([]any{}, args...), p.Size, p.Offset())
	rows, err := r.pool.Query(ctx, reviewQuery+clause+fmt.Sprintf(`
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := collect(rows)
	return reviews, total, err
}

func (r *PostgresRepository) Stats(ctx context.Context, monthStart, yearStart time.Time) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
			COALESCE(avg(rating), 0)::float8,
			count(*) FILTER (WHERE rating = 1),
			count(*) FILTER (WHERE rating = 2),
			count(*) FILTER (WHERE rating = 3),
			count(*) FILTER (WHERE rating = 4),
			count(*) FILTER (WHERE rating = 5),
			count(*) FILTER (WHERE created_at >= $1),
			count(*) FILTER (WHERE created_at >= $2),
			count(DISTINCT product_id)
		FROM reviews
	`, monthStart, yearStart).Scan(&s.TotalReviews, &s.AverageRating,
		&s.Rating1Count, &s.Rating2Count, &s.Rating3Count, &s.Rating4Count, &s.Rating5Count,
		&s.ReviewsThisMonth, &s.ReviewsThisYear, &s.ProductsWithReviews)
	if err != nil {
		return Stats{}, fmt.Errorf("review stats: %w", err)
	}
	s.AverageRating = Round2(s.AverageRating)
	return s, nil
}

func collect(rows pgx.Rows) ([]Review, error) {
	defer rows.Close()
	reviews := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.ProductName, &rv.UserID, &rv.UserName, &rv.UserEmail, &rv.UserAvatarURL,
		&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}
