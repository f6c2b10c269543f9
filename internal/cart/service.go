package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	return newCart(items), nil
}

// Add puts quantity units of an active product into the cart, merging with an
// existing line. Stock must cover the resulting line quantity.
func (s *Service) Add(ctx context.Context, userID string, productID int64, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, apperr.Validation("Validation failed", "Quantity must be at least 1")
	}

	p, err := s.repo.Product(ctx, productID)
	if errors.Is(err, ErrProductNotFound) || (err == nil && !p.IsActive) {
		return Item{}, apperr.NotFound("Product not found")
	}
	if err != nil {
		return Item{}, fmt.Errorf("load product: %w", err)
	}
	if err := CheckStock(p.Stock, quantity, 0); err != nil {
		return Item{}, err
	}

	existing, err := s.repo.Quantity(ctx, userID, productID)
	if err != nil {
		return Item{}, fmt.Errorf("load cart line: %w", err)
	}
	if err := CheckStock(p.Stock, quantity, existing); err != nil {
		return Item{}, err
	}

	id, err := s.repo.Add(ctx, userID, productID, quantity)
	if err != nil {
		return Item{}, err
	}
	s.logger.DebugContext(ctx, "cart item added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return s.repo.Item(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, userID string, itemID int64, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, apperr.Validation("Validation failed", "Quantity must be at least 1")
	}

	it, err := s.repo.Item(ctx, userID, itemID)
	if err != nil {
		return Item{}, mapErr(err)
	}
	if err := CheckStock(it.ProductStock, quantity, 0); err != nil {
		return Item{}, err
	}
	if err := s.repo.SetQuantity(ctx, userID, itemID, quantity); err != nil {
		return Item{}, mapErr(err)
	}
	return s.repo.Item(ctx, userID, itemID)
}

func (s *Service) Remove(ctx context.Context, userID string, itemID int64) error {
	return mapErr(s.repo.Remove(ctx, userID, itemID))
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// CheckStock verifies stock covers inCart+quantity units.
func CheckStock(stock, quantity, inCart int) error {
	if stock >= inCart+quantity {
		return nil
	}
	if inCart > 0 {
		return apperr.Validation(fmt.Sprintf("Only %d items available in stock. You already have %d in cart.", stock, inCart))
	}
	return apperr.Validation(fmt.Sprintf("Only %d items available in stock", stock))
}

func mapErr(err error) error {
	if errors.Is(err, ErrItemNotFound) {
		return apperr.NotFound("Cart item not found")
	}
	return err
}
