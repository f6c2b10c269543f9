package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, category, search string, pageNumber, pageSize int) (Page, error) {
	p := paging.Normalize(pageNumber, pageSize)
	products, total, err := s.repo.List(ctx, ListFilter{
		Category:   category,
		Search:     search,
		PageNumber: p.Number,
		PageSize:   p.Size,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{
		Products:   products,
		TotalCount: total,
		PageNumber: p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Get returns an active product. Inactive products are hidden from the storefront.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, s.mapErr(err)
	}
	if !p.IsActive {
		return Product{}, apperr.NotFound("Product not found")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if !in.Price.IsPositive() {
		return Product{}, apperr.Validation("Validation failed", "Price must be greater than 0")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	p, err := s.repo.Create(ctx, Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    category,
		Stock:       in.Stock,
	})
	if err != nil {
		return Product{}, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Product, error) {
	if in.Price != nil && !in.Price.IsPositive() {
		return Product{}, apperr.Validation("Validation failed", "Price must be greater than 0")
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, s.mapErr(err)
	}
	in.Apply(&p)

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Product{}, s.mapErr(err)
	}
	s.logger.InfoContext(ctx, "product updated", "product_id", id)
	return updated, nil
}

// Delete hides the product. Order history keeps referencing it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return s.mapErr(err)
	}
	s.logger.InfoContext(ctx, "product deactivated", "product_id", id)
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Product not found")
	}
	return fmt.Errorf("catalog: %w", err)
}
