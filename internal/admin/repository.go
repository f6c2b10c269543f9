package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

var ErrNotFound = errors.New("customer not found")

type Reports interface {
	Dashboard(ctx context.Context, p Periods) (Dashboard, error)
	Revenue(ctx context.Context, p Periods) (Revenue, error)
	OrderStats(ctx context.Context, p Periods) (OrderStats, error)
	ProductStats(ctx context.Context) (ProductStats, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	Customers(ctx context.Context, search string, p paging.Params) ([]Customer, int, error)
	Customer(ctx context.Context, id string) (Customer, error)
	CustomerOrders(ctx context.Context, id string, p paging.Params) ([]CustomerOrder, int, error)
	CustomerStats(ctx context.Context, id string) (CustomerStats, error)
}

// SQLReports runs the aggregates through database/sql so the reporting
// connection can be pointed at a replica independently of the pgx pool.
type SQLReports struct {
	db *sql.DB
}

func NewSQLReports(db *sql.DB) *SQLReports {
	return &SQLReports{db: db}
}

func (r *SQLReports) Dashboard(ctx context.Context, p Periods) (Dashboard, error) {
	var d Dashboard
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE status <> 'Cancelled'), 0),
			COUNT(*),
			COALESCE(SUM(total) FILTER (WHERE status <> 'Cancelled' AND order_date >= $1 AND order_date < $2), 0),
			COALESCE(SUM(total) FILTER (WHERE status <> 'Cancelled' AND order_date >= $3), 0),
			COUNT(*) FILTER (WHERE order_date >= $1 AND order_date < $2),
			COUNT(*) FILTER (WHERE order_date >= $3),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Processing'),
			COUNT(*) FILTER (WHERE status = 'Shipped'),
			COUNT(*) FILTER (WHERE status = 'Delivered')
		FROM orders
	`, p.Today, p.Tomorrow, p.MonthStart).Scan(
		&d.TotalRevenue, &d.TotalOrders, &d.RevenueToday, &d.RevenueThisMonth,
		&d.OrdersToday, &d.OrdersThisMonth,
		&d.PendingOrders, &d.ProcessingOrders, &d.ShippedOrders, &d.DeliveredOrders)
	if err != nil {
		return Dashboard{}, fmt.Errorf("order aggregates: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'Customer'),
			(SELECT COUNT(*) FROM products),
			(SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews)
	`).Scan(&d.TotalCustomers, &d.TotalProducts, &d.AverageRating)
	if err != nil {
		return Dashboard{}, fmt.Errorf("catalog aggregates: %w", err)
	}
	return d, nil
}

func (r *SQLReports) Revenue(ctx context.Context, p Periods) (Revenue, error) {
	var rev Revenue
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total), 0),
			COALESCE(SUM(total) FILTER (WHERE order_date >= $1 AND order_date < $2), 0),
			COALESCE(SUM(total) FILTER (WHERE order_date >= $3), 0),
			COALESCE(SUM(total) FILTER (WHERE order_date >= $4), 0),
			COALESCE(SUM(total) FILTER (WHERE order_date >= $5), 0)
		FROM orders
		WHERE status <> 'Cancelled'
	`, p.Today, p.Tomorrow, p.WeekStart, p.MonthStart, p.YearStart).Scan(
		&rev.TotalRevenue, &rev.RevenueToday, &rev.RevenueThisWeek, &rev.RevenueThisMonth, &rev.RevenueThisYear)
	if err != nil {
		return Revenue{}, fmt.Errorf("revenue aggregates: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			EXTRACT(YEAR FROM order_date AT TIME ZONE 'UTC')::int,
			EXTRACT(MONTH FROM order_date AT TIME ZONE 'UTC')::int,
			SUM(total)
		FROM orders
		WHERE status <> 'Cancelled' AND order_date >= $1
		GROUP BY 1, 2
	`, p.FirstMonth)
	if err != nil {
		return Revenue{}, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	sums := map[monthKey]decimal.Decimal{}
	for rows.Next() {
		var (
			year, month int
			total       decimal.Decimal
		)
		if err := rows.Scan(&year, &month, &total); err != nil {
			return Revenue{}, fmt.Errorf("scan monthly revenue: %w", err)
		}
		sums[monthKey{year, time.Month(month)}] = total
	}
	if err := rows.Err(); err != nil {
		return Revenue{}, err
	}
	rev.MonthlyRevenue = monthSeries(p.FirstMonth, sums)
	return rev, nil
}

func (r *SQLReports) OrderStats(ctx context.Context, p Periods) (OrderStats, error) {
	var s OrderStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE order_date >= $1 AND order_date < $2),
			COUNT(*) FILTER (WHERE order_date >= $3),
			COUNT(*) FILTER (WHERE order_date >= $4),
			COUNT(*) FILTER (WHERE order_date >= $5),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Processing'),
			COUNT(*) FILTER (WHERE status = 'Shipped'),
			COUNT(*) FILTER (WHERE status = 'Delivered'),
			COUNT(*) FILTER (WHERE status = 'Cancelled')
		FROM orders
	`, p.Today, p.Tomorrow, p.WeekStart, p.MonthStart, p.YearStart).Scan(
		&s.TotalOrders, &s.OrdersToday, &s.OrdersThisWeek, &s.OrdersThisMonth, &s.OrdersThisYear,
		&s.PendingOrders, &s.ProcessingOrders, &s.ShippedOrders, &s.DeliveredOrders, &s.CancelledOrders)
	if err != nil {
		return OrderStats{}, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}

func (r *SQLReports) ProductStats(ctx context.Context) (ProductStats, error) {
	var s ProductStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE stock = 0),
			COUNT(*) FILTER (WHERE stock > 0 AND stock < $1)
		FROM products
	`, LowStockThreshold).Scan(&s.TotalProducts, &s.ActiveProducts, &s.OutOfStockProducts, &s.LowStockProducts)
	if err != nil {
		return ProductStats{}, fmt.Errorf("product counts: %w", err)
	}
	s.InactiveProducts = s.TotalProducts - s.ActiveProducts

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, p.name, p.image_url, SUM(oi.quantity), SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status <> 'Cancelled'
		GROUP BY oi.product_id, p.name, p.image_url
		ORDER BY SUM(oi.quantity) DESC, oi.product_id
		LIMIT 10
	`)
	if err != nil {
		return ProductStats{}, fmt.Errorf("top selling products: %w", err)
	}
	defer rows.Close()

	s.TopSellingProducts = []TopSellingProduct{}
	for rows.Next() {
		var t TopSellingProduct
		if err := rows.Scan(&t.ProductID, &t.ProductName, &t.ProductImageURL, &t.TotalQuantitySold, &t.TotalRevenue); err != nil {
			return ProductStats{}, fmt.Errorf("scan top product: %w", err)
		}
		s.TopSellingProducts = append(s.TopSellingProducts, t)
	}
	return s, rows.Err()
}

func (r *SQLReports) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_number, u.name, u.email, o.total, o.status, o.order_date
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.order_date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	out := []RecentOrder{}
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.Status, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("scan recent order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

const customerColumns = `id::text, name, email, COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(avatar_url, ''), created_at, updated_at, role`

func scanCustomer(sc interface{ Scan(...any) error }) (Customer, error) {
	var c Customer
	err := sc.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.AvatarURL, &c.CreatedAt, &c.UpdatedAt, &c.Role)
	return c, err
}

func (r *SQLReports) Customers(ctx context.Context, search string, p paging.Params) ([]Customer, int, error) {
	where := "WHERE role = 'Customer'"
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+s+"%")
		where += " AND (name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1)"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	pageArgs := append(append([]any{}, args...), p.Size, p.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM users %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, customerColumns, where, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Customer loads any user by id; callers decide whether the role qualifies.
func (r *SQLReports) Customer(ctx context.Context, id string) (Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *SQLReports) CustomerOrders(ctx context.Context, id string, p paging.Params) ([]CustomerOrder, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customer orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_number, o.order_date, o.total, o.status, o.shipping_address, o.shipping_city,
			COALESCE((SELECT SUM(quantity) FROM order_items WHERE order_id = o.id), 0)
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC
		LIMIT $2 OFFSET $3
	`, id, p.Size, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	out := []CustomerOrder{}
	for rows.Next() {
		var o CustomerOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.OrderDate, &o.Total, &o.Status, &o.ShippingAddress, &o.ShippingCity, &o.TotalItems); err != nil {
			return nil, 0, fmt.Errorf("scan customer order: %w", err)
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *SQLReports) CustomerStats(ctx context.Context, id string) (CustomerStats, error) {
	var s CustomerStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Processing'),
			COUNT(*) FILTER (WHERE status = 'Shipped'),
			COUNT(*) FILTER (WHERE status = 'Delivered'),
			COUNT(*) FILTER (WHERE status = 'Cancelled'),
			COALESCE(SUM(total) FILTER (WHERE status <> 'Cancelled'), 0),
			(SELECT COUNT(*) FROM cart_items WHERE user_id = $1),
			(SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1),
			(SELECT COUNT(*) FROM reviews WHERE user_id = $1),
			MAX(order_date)
		FROM orders
		WHERE user_id = $1
	`, id).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.ProcessingOrders, &s.ShippedOrders, &s.DeliveredOrders, &s.CancelledOrders,
		&s.TotalSpent, &s.TotalCartItems, &s.TotalWishlistItems, &s.TotalReviews, &s.LastOrderDate)
	if err != nil {
		return CustomerStats{}, fmt.Errorf("customer stats: %w", err)
	}
	return s, nil
}
