package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"orderNumber"`
	UserID             string          `json:"userId"`
	UserName           string          `json:"userName"`
	UserEmail          string          `json:"userEmail"`
	OrderDate          time.Time       `json:"orderDate"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	ShippingAddress    string          `json:"shippingAddress"`
	ShippingCity       string          `json:"shippingCity"`
	ShippingPostalCode string          `json:"shippingPostalCode"`
	ShippingCountry    string          `json:"shippingCountry"`
	Notes              string          `json:"notes"`
	Items              []Item          `json:"orderItems"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type Item struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"-"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductImageURL string          `json:"productImageUrl"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Shipping struct {
	Address    string `json:"shippingAddress" validate:"max=500"`
	City       string `json:"shippingCity" validate:"max=100"`
	PostalCode string `json:"shippingPostalCode" validate:"max=50"`
	Country    string `json:"shippingCountry" validate:"max=100"`
	Notes      string `json:"notes" validate:"max=500"`
}

// CartLine is a cart row joined to its product, as seen inside the checkout transaction.
type CartLine struct {
	ProductID       int64
	ProductName     string
	ProductImageURL string
	Price           decimal.Decimal
	Stock           int
	IsActive        bool
	Quantity        int
}

// CheckoutResult holds either the created order or the reasons the cart was rejected.
type CheckoutResult struct {
	Order      Order
	Violations []string
}

type StatusChange struct {
	OrderID     int64
	OrderNumber string
	UserID      string
	From        Status
	To          Status
}

type ListFilter struct {
	Status     Status
	Search     string
	PageNumber int
	PageSize   int
}

type Page struct {
	Orders     []Order `json:"orders"`
	TotalCount int     `json:"totalCount"`
	PageNumber int     `json:"pageNumber"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// NewOrderNumber returns ORD-yyyyMMdd-XXXXXXXX. Uniqueness is left to the
// orders.order_number constraint.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// PriceLines validates every cart line and computes the snapshot items and total.
// All violations are collected; when any exist no items are returned.
func PriceLines(lines []CartLine) ([]Item, decimal.Decimal, []string) {
	var violations []string
	items := make([]Item, 0, len(lines))
	total := decimal.Zero

	for _, ln := range lines {
		if !ln.IsActive {
			violations = append(violations, fmt.Sprintf("Product %d is no longer available", ln.ProductID))
			continue
		}
		if ln.Stock < ln.Quantity {
			violations = append(violations, fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
				ln.ProductName, ln.Stock, ln.Quantity))
			continue
		}
		subtotal := ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		total = total.Add(subtotal)
		items = append(items, Item{
			ProductID:       ln.ProductID,
			ProductName:     ln.ProductName,
			ProductImageURL: ln.ProductImageURL,
			Quantity:        ln.Quantity,
			Price:           ln.Price,
			Subtotal:        subtotal,
		})
	}

	if len(violations) > 0 {
		return nil, decimal.Zero, violations
	}
	return items, total, nil
}
