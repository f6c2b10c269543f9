package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductPrice    decimal.Decimal `json:"productPrice"`
	ProductImageURL string          `json:"productImageUrl"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IsOutOfStock    bool            `json:"isOutOfStock"`
	ProductStock    int             `json:"productStock"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type Cart struct {
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int             `json:"totalItems"`
}

// Product is the slice of a catalog product the cart rules need.
type Product struct {
	ID       int64
	Name     string
	Stock    int
	IsActive bool
}

type AddInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

type UpdateInput struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

// derive fills the computed fields of an item loaded from storage.
func (it *Item) derive() {
	it.Subtotal = it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	it.IsOutOfStock = it.ProductStock == 0
}

func newCart(items []Item) Cart {
	c := Cart{Items: items, Total: decimal.Zero}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for _, it := range c.Items {
		c.Total = c.Total.Add(it.Subtotal)
		c.TotalItems += it.Quantity
	}
	return c
}
