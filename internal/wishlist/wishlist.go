// Package wishlist keeps the products a user has saved for later and moves
// them into the cart on request.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

var (
	ErrNotFound        = errors.New("wishlist item not found")
	ErrProductNotFound = errors.New("product not found")
)

type Item struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductPrice    decimal.Decimal `json:"productPrice"`
	ProductImageURL string          `json:"productImageUrl"`
	ProductCategory string          `json:"productCategory"`
	IsOutOfStock    bool            `json:"isOutOfStock"`
	ProductStock    int             `json:"productStock"`
	AddedAt         time.Time       `json:"addedAt"`

	productActive bool
}

type AddInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context, userID string) ([]Item, error)
	Get(ctx context.Context, userID string, productID int64) (Item, error)
	ProductActive(ctx context.Context, productID int64) (bool, error)
	// Insert adds the product and reports whether a new row was created.
	Insert(ctx context.Context, userID string, productID int64) (bool, error)
	Remove(ctx context.Context, userID string, productID int64) error
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itemQuery = `
	SELECT w.id, w.product_id, p.name, p.price, p.image_url, p.category, p.stock, p.is_active, w.created_at
	FROM wishlist_items w
	JOIN products p ON p.id = w.product_id`

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, itemQuery+` WHERE w.user_id = $1 ORDER BY w.created_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, productID int64) (Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, itemQuery+` WHERE w.user_id = $1 AND w.product_id = $2`, userID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return it, err
}

func (r *PostgresRepository) ProductActive(ctx context.Context, productID int64) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx, `SELECT is_active FROM products WHERE id = $1`, productID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrProductNotFound
	}
	return active, err
}

func (r *PostgresRepository) Insert(ctx context.Context, userID string, productID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("insert wishlist item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID string, productID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID)
	return err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.ProductImageURL,
		&it.ProductCategory, &it.ProductStock, &it.productActive, &it.AddedAt)
	it.IsOutOfStock = it.ProductStock == 0
	return it, err
}

// CartAdder is the cart operation used when moving an item to the cart.
type CartAdder interface {
	Add(ctx context.Context, userID string, productID int64, quantity int) (cart.Item, error)
}

type Service struct {
	repo   Repository
	cart   CartAdder
	logger *slog.Logger
}

func NewService(repo Repository, cart CartAdder, logger *slog.Logger) *Service {
	return &Service{repo: repo, cart: cart, logger: logger}
}

func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.List(ctx, userID)
}

// Add saves an active product. Adding a product twice is not an error; created
// reports whether the item is new.
func (s *Service) Add(ctx context.Context, userID string, productID int64) (item Item, created bool, err error) {
	active, err := s.repo.ProductActive(ctx, productID)
	if errors.Is(err, ErrProductNotFound) || (err == nil && !active) {
		return Item{}, false, apperr.NotFound("Product not found")
	}
	if err != nil {
		return Item{}, false, err
	}

	created, err = s.repo.Insert(ctx, userID, productID)
	if err != nil {
		return Item{}, false, err
	}
	item, err = s.repo.Get(ctx, userID, productID)
	if err != nil {
		return Item{}, false, err
	}
	return item, created, nil
}

func (s *Service) Remove(ctx context.Context, userID string, productID int64) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Product not found in wishlist")
		}
		return err
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// MoveToCart adds quantity units of a wishlisted product to the cart. The
// wishlist entry is kept.
func (s *Service) MoveToCart(ctx context.Context, userID string, productID int64, quantity int) (cart.Item, error) {
	if quantity < 1 {
		quantity = 1
	}
	it, err := s.repo.Get(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return cart.Item{}, apperr.NotFound("Product not found in wishlist")
		}
		return cart.Item{}, err
	}
	if !it.productActive {
		return cart.Item{}, apperr.Validation("Product is no longer available")
	}

	added, err := s.cart.Add(ctx, userID, productID, quantity)
	if err != nil {
		return cart.Item{}, err
	}
	s.logger.InfoContext(ctx, "wishlist item moved to cart", "user_id", userID, "product_id", productID, "quantity", quantity)
	return added, nil
}
