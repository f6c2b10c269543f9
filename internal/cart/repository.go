package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Items(ctx context.Context, userID string) ([]Item, error)
	Item(ctx context.Context, userID string, itemID int64) (Item, error)
	Product(ctx context.Context, productID int64) (Product, error)
	// Quantity returns how many units of productID the user already has, or 0.
	Quantity(ctx context.Context, userID string, productID int64) (int, error)
	// Add inserts a line or increases an existing one and returns the line id.
	Add(ctx context.Context, userID string, productID int64, quantity int) (int64, error)
	SetQuantity(ctx context.Context, userID string, itemID int64, quantity int) error
	Remove(ctx context.Context, userID string, itemID int64) error
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itemQuery = `
	SELECT c.id, c.product_id, p.name, p.price, p.image_url, c.quantity, p.stock, c.created_at, c.updated_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id`

func (r *PostgresRepository) Items(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemQuery+`
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Item(ctx context.Context, userID string, itemID int64) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, itemQuery+`
		WHERE c.id = $1 AND c.user_id = $2`, itemID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepository) Product(ctx context.Context, productID int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, stock, is_active FROM products WHERE id = $1`, productID).
		Scan(&p.ID, &p.Name, &p.Stock, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Quantity(ctx context.Context, userID string, productID int64) (int, error) {
	var q int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)::int FROM cart_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(&q)
	return q, err
}

func (r *PostgresRepository) Add(ctx context.Context, userID string, productID int64, quantity int) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id
	`, userID, productID, quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, userID string, itemID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now() WHERE id = $1 AND user_id = $2
	`, itemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID string, itemID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.ProductImageURL,
		&it.Quantity, &it.ProductStock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	it.derive()
	return it, nil
}
