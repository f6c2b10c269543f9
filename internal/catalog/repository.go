package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

var ErrNotFound = errors.New("product not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Deactivate(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, name, description, price, image_url, category, stock, is_active, created_at, updated_at`

// List returns active products, newest first.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	p := paging.Normalize(f.PageNumber, f.PageSize)

	where := []string{"is_active"}
	var args []any
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	clause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	pageArgs := append(append([]any{}, args...), p.Size, p.Offset())
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM products %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, productColumns, clause, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, pr)
	}
	return products, total, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Product, error) {
	pr, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return pr, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, category, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock)
	created, err := scanProduct(row)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, image_url = $5, category = $6,
			stock = $7, is_active = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock, p.IsActive)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM products
		WHERE is_active AND category <> ''
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
