package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCategory = "custom"

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl" validate:"max=500"`
	Category    string          `json:"category" validate:"max=50"`
	Stock       int             `json:"stock" validate:"min=0"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,max=500"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
	IsActive    *bool            `json:"isActive"`
}

type ListFilter struct {
	Category   string
	Search     string
	PageNumber int
	PageSize   int
}

type Page struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
	PageNumber int       `json:"pageNumber"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// Apply copies the non-nil fields of in onto p.
func (in UpdateInput) Apply(p *Product) {
	if in.Name != nil && *in.Name != "" {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Category != nil && *in.Category != "" {
		p.Category = *in.Category
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}
