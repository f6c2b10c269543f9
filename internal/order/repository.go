package order

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
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNumberExists = errors.New("order number already exists")
)

// StockShortageError is returned when an order cannot leave Cancelled because
// a product no longer has enough stock to cover it.
type StockShortageError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Checkout(ctx context.Context, userID, orderNumber string, ship Shipping, now time.Time) (CheckoutResult, error)
	SetStatus(ctx context.Context, orderID int64, to Status, now time.Time) (StatusChange, error)
	Get(ctx context.Context, orderID int64) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const orderColumns = `
	o.id, o.order_number, o.user_id::text, u.name, u.email, o.order_date, o.total, o.status,
	o.shipping_address, o.shipping_city, o.shipping_postal_code, o.shipping_country, o.notes,
	o.created_at, o.updated_at`

// Checkout converts the user's cart into an order in one transaction:
//   - cart rows and their products are locked (FOR UPDATE) so concurrent
//     checkouts against the same stock serialize
//   - every line is validated; any violation rolls back with nothing written
//   - otherwise the order and its item snapshot are inserted, stock is
//     decremented and the cart is emptied before commit
func (r *PostgresRepository) Checkout(ctx context.Context, userID, orderNumber string, ship Shipping, now time.Time) (CheckoutResult, error) {
	res := CheckoutResult{}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := lockCartLines(ctx, tx, userID)
	if err != nil {
		return res, err
	}
	if len(lines) == 0 {
		return res, ErrEmptyCart
	}

	items, total, violations := PriceLines(lines)
	if len(violations) > 0 {
		res.Violations = violations
		return res, nil
	}

	o := Order{
		OrderNumber:        orderNumber,
		UserID:             userID,
		OrderDate:          now,
		Total:              total,
		Status:             StatusPending,
		ShippingAddress:    ship.Address,
		ShippingCity:       ship.City,
		ShippingPostalCode: ship.PostalCode,
		ShippingCountry:    ship.Country,
		Notes:              ship.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := tx.QueryRow(ctx, `SELECT name, email FROM users WHERE id = $1`, userID).Scan(&o.UserName, &o.UserEmail); err != nil {
		return res, fmt.Errorf("load order owner: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, order_date, total, status,
			shipping_address, shipping_city, shipping_postal_code, shipping_country, notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $3, $3)
		RETURNING id
	`, o.OrderNumber, userID, now, o.Total, string(o.Status),
		o.ShippingAddress, o.ShippingCity, o.ShippingPostalCode, o.ShippingCountry, o.Notes).Scan(&o.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return res, ErrOrderNumberExists
		}
		return res, fmt.Errorf("insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, o.ID, items[i].ProductID, items[i].Quantity, items[i].Price, items[i].Subtotal).Scan(&items[i].ID)
		if err != nil {
			return res, fmt.Errorf("insert order item: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1
		`, items[i].ProductID, items[i].Quantity, now); err != nil {
			return res, fmt.Errorf("decrement stock: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return res, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if db.IsUniqueViolation(err) {
			return res, ErrOrderNumberExists
		}
		return res, err
	}

	o.Items = items
	res.Order = o
	return res, nil
}

func lockCartLines(ctx context.Context, tx pgx.Tx, userID string) ([]CartLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT c.product_id, p.name, p.image_url, p.price, p.stock, p.is_active, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
		FOR UPDATE OF c, p
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var ln CartLine
		if err := rows.Scan(&ln.ProductID, &ln.ProductName, &ln.ProductImageURL, &ln.Price, &ln.Stock, &ln.IsActive, &ln.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

// SetStatus moves an order to a new status. Crossing into Cancelled returns the
// item quantities to stock; crossing out of Cancelled takes them again and fails
// with *StockShortageError, leaving everything untouched, if any product is short.
func (r *PostgresRepository) SetStatus(ctx context.Context, orderID int64, to Status, now time.Time) (StatusChange, error) {
	change := StatusChange{OrderID: orderID, To: to}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return change, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from string
	err = tx.QueryRow(ctx, `
		SELECT order_number, user_id::text, status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&change.OrderNumber, &change.UserID, &from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return change, ErrNotFound
		}
		return change, err
	}
	change.From = Status(from)

	if effect := StockEffect(change.From, to); effect != 0 {
		if err := adjustStockForOrder(ctx, tx, orderID, effect, now); err != nil {
			return change, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, orderID, string(to), now); err != nil {
		return change, fmt.Errorf("update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return change, err
	}
	return change, nil
}

func adjustStockForOrder(ctx context.Context, tx pgx.Tx, orderID int64, effect int, now time.Time) error {
	type locked struct {
		productID int64
		name      string
		stock     int
		quantity  int
	}

	rows, err := tx.Query(ctx, `
		SELECT oi.product_id, p.name, p.stock, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id
		FOR UPDATE OF p
	`, orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	var lockedRows []locked
	for rows.Next() {
		var l locked
		if err := rows.Scan(&l.productID, &l.name, &l.stock, &l.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		lockedRows = append(lockedRows, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if effect < 0 {
		for _, l := range lockedRows {
			if l.stock < l.quantity {
				return &StockShortageError{ProductID: l.productID, ProductName: l.name, Requested: l.quantity, Available: l.stock}
			}
		}
	}

	for _, l := range lockedRows {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock + $2, updated_at = $3
			WHERE id = $1
		`, l.productID, effect*l.quantity, now); err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, orderID int64) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	p := paging.Normalize(f.PageNumber, f.PageSize)

	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(o.order_number ILIKE $%d OR u.name ILIKE $%d OR u.email ILIKE $%d)", n, n, n))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*)
		FROM orders o
		JOIN users u ON u.id = o.user_id `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	pageArgs := append(append([]any{}, args...), p.Size, p.Offset())
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s
		FROM orders o
		JOIN users u ON u.id = o.user_id
		%s
		ORDER BY o.order_date DESC
		LIMIT $%d OFFSET $%d`, orderColumns, clause, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []Item{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.image_url, oi.quantity, oi.price, oi.subtotal
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductImageURL, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.UserName, &o.UserEmail, &o.OrderDate, &o.Total, &status,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingPostalCode, &o.ShippingCountry, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
