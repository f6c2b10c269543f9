// Package admin serves the read-only aggregates behind the admin console.
// Every query runs on the reporting connection, which may be a replica.
package admin

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the exclusive upper bound for "low stock".
const LowStockThreshold = 10

type Dashboard struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalOrders      int             `json:"totalOrders"`
	TotalCustomers   int             `json:"totalCustomers"`
	TotalProducts    int             `json:"totalProducts"`
	AverageRating    float64         `json:"averageRating"`
	RevenueToday     decimal.Decimal `json:"revenueToday"`
	RevenueThisMonth decimal.Decimal `json:"revenueThisMonth"`
	OrdersToday      int             `json:"ordersToday"`
	OrdersThisMonth  int             `json:"ordersThisMonth"`
	PendingOrders    int             `json:"pendingOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
}

type Revenue struct {
	TotalRevenue     decimal.Decimal  `json:"totalRevenue"`
	RevenueToday     decimal.Decimal  `json:"revenueToday"`
	RevenueThisWeek  decimal.Decimal  `json:"revenueThisWeek"`
	RevenueThisMonth decimal.Decimal  `json:"revenueThisMonth"`
	RevenueThisYear  decimal.Decimal  `json:"revenueThisYear"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthlyRevenue"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Year    int             `json:"year"`
	Revenue decimal.Decimal `json:"revenue"`
}

type OrderStats struct {
	TotalOrders      int `json:"totalOrders"`
	OrdersToday      int `json:"ordersToday"`
	OrdersThisWeek   int `json:"ordersThisWeek"`
	OrdersThisMonth  int `json:"ordersThisMonth"`
	OrdersThisYear   int `json:"ordersThisYear"`
	PendingOrders    int `json:"pendingOrders"`
	ProcessingOrders int `json:"processingOrders"`
	ShippedOrders    int `json:"shippedOrders"`
	DeliveredOrders  int `json:"deliveredOrders"`
	CancelledOrders  int `json:"cancelledOrders"`
}

type ProductStats struct {
	TotalProducts      int                 `json:"totalProducts"`
	ActiveProducts     int                 `json:"activeProducts"`
	InactiveProducts   int                 `json:"inactiveProducts"`
	OutOfStockProducts int                 `json:"outOfStockProducts"`
	LowStockProducts   int                 `json:"lowStockProducts"`
	TopSellingProducts []TopSellingProduct `json:"topSellingProducts"`
}

type TopSellingProduct struct {
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	ProductImageURL   string          `json:"productImageUrl"`
	TotalQuantitySold int             `json:"totalQuantitySold"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
}

type RecentOrder struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	OrderDate     time.Time       `json:"orderDate"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Role      string    `json:"-"`
}

type CustomerDetail struct {
	Customer
	Stats CustomerStats `json:"stats"`
}

type CustomerStats struct {
	TotalOrders        int             `json:"totalOrders"`
	PendingOrders      int             `json:"pendingOrders"`
	ProcessingOrders   int             `json:"processingOrders"`
	ShippedOrders      int             `json:"shippedOrders"`
	DeliveredOrders    int             `json:"deliveredOrders"`
	CancelledOrders    int             `json:"cancelledOrders"`
	TotalSpent         decimal.Decimal `json:"totalSpent"`
	TotalCartItems     int             `json:"totalCartItems"`
	TotalWishlistItems int             `json:"totalWishlistItems"`
	TotalReviews       int             `json:"totalReviews"`
	LastOrderDate      *time.Time      `json:"lastOrderDate"`
}

type CustomerOrder struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	OrderDate       time.Time       `json:"orderDate"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	ShippingCity    string          `json:"shippingCity"`
	TotalItems      int             `json:"totalItems"`
}

type CustomerPage struct {
	Customers  []Customer `json:"customers"`
	TotalCount int        `json:"totalCount"`
	PageNumber int        `json:"pageNumber"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

type CustomerOrderPage struct {
	Orders     []CustomerOrder `json:"orders"`
	TotalCount int             `json:"totalCount"`
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// Periods are the UTC window boundaries the dashboard reports on. Weeks start
// on Sunday.
type Periods struct {
	Today      time.Time
	Tomorrow   time.Time
	WeekStart  time.Time
	MonthStart time.Time
	YearStart  time.Time
	// FirstMonth opens the twelve month revenue series ending with the current month.
	FirstMonth time.Time
}

func PeriodsAt(now time.Time) Periods {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Periods{
		Today:      today,
		Tomorrow:   today.AddDate(0, 0, 1),
		WeekStart:  today.AddDate(0, 0, -int(today.Weekday())),
		MonthStart: month,
		YearStart:  time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		FirstMonth: month.AddDate(0, -11, 0),
	}
}

type monthKey struct {
	year  int
	month time.Month
}

// monthSeries returns twelve consecutive months starting at first, oldest
// first, with zero revenue for months that have no sales.
func monthSeries(first time.Time, sums map[monthKey]decimal.Decimal) []MonthlyRevenue {
	out := make([]MonthlyRevenue, 0, 12)
	for i := 0; i < 12; i++ {
		m := first.AddDate(0, i, 0)
		rev, ok := sums[monthKey{m.Year(), m.Month()}]
		if !ok {
			rev = decimal.Zero
		}
		out = append(out, MonthlyRevenue{Month: m.Month().String(), Year: m.Year(), Revenue: rev})
	}
	return out
}
