package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

// EventPublisher announces committed order changes. Failures are logged and
// never undo the change.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o Order) error
	PublishOrderStatusChanged(ctx context.Context, o Order, from Status) error
}

type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger

	now       func() time.Time
	newNumber func(time.Time) string
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newNumber: NewOrderNumber,
	}
}

func (s *Service) CreateOrder(ctx context.Context, userID string, ship Shipping) (Order, error) {
	now := s.now()
	res, err := s.repo.Checkout(ctx, userID, s.newNumber(now), ship, now)
	switch {
	case errors.Is(err, ErrEmptyCart):
		return Order{}, apperr.Validation("Cart is empty. Please add items to cart before checkout.")
	case errors.Is(err, ErrOrderNumberExists):
		return Order{}, &apperr.Error{Kind: apperr.KindConflict, Message: "Order number collision, please retry", Err: err}
	case err != nil:
		return Order{}, fmt.Errorf("checkout: %w", err)
	}
	if len(res.Violations) > 0 {
		return Order{}, apperr.Validation("Some items are not available", res.Violations...)
	}

	o := res.Order
	s.logger.InfoContext(ctx, "order created",
		"order_id", o.ID, "order_number", o.OrderNumber, "user_id", userID,
		"total", o.Total.StringFixed(2), "items", len(o.Items))

	if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
		s.logger.ErrorContext(ctx, "publish order created", "order_number", o.OrderNumber, "err", err)
	}
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID int64, rawStatus string) (Order, error) {
	to, ok := ParseStatus(rawStatus)
	if !ok {
		return Order{}, apperr.Validation(InvalidStatusMessage)
	}

	now := s.now()
	change, err := s.repo.SetStatus(ctx, orderID, to, now)
	if err != nil {
		var shortage *StockShortageError
		switch {
		case errors.Is(err, ErrNotFound):
			return Order{}, apperr.NotFound("Order not found")
		case errors.As(err, &shortage):
			return Order{}, apperr.Validation(fmt.Sprintf("Cannot change status. Insufficient stock for %s", shortage.ProductName))
		default:
			return Order{}, fmt.Errorf("update order status: %w", err)
		}
	}

	// The change is committed from here on; a failed reload must not hide it.
	o, reloadErr := s.repo.Get(ctx, orderID)
	if reloadErr != nil {
		s.logger.ErrorContext(ctx, "reload order after status change",
			"order_id", orderID, "order_number", change.OrderNumber, "status", change.To, "err", reloadErr)
		o = Order{
			ID:          change.OrderID,
			OrderNumber: change.OrderNumber,
			UserID:      change.UserID,
			Status:      change.To,
			UpdatedAt:   now,
		}
	}

	if change.From != change.To {
		s.logger.InfoContext(ctx, "order status changed",
			"order_number", change.OrderNumber, "from", change.From, "to", change.To,
			"stock_effect", StockEffect(change.From, change.To))
		if err := s.publisher.PublishOrderStatusChanged(ctx, o, change.From); err != nil {
			s.logger.ErrorContext(ctx, "publish order status changed", "order_number", o.OrderNumber, "err", err)
		}
	}

	if reloadErr != nil {
		return Order{}, apperr.Internal("Order status was updated but the order could not be loaded", reloadErr)
	}
	return o, nil
}

// Get returns the order if the caller owns it or is an admin. Orders owned by
// someone else are reported as not found.
func (s *Service) Get(ctx context.Context, orderID int64, userID string, isAdmin bool) (Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, apperr.NotFound("Order not found")
		}
		return Order{}, err
	}
	if !isAdmin && o.UserID != userID {
		return Order{}, apperr.NotFound("Order not found")
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) List(ctx context.Context, status, search string, pageNumber, pageSize int) (Page, error) {
	f := ListFilter{Search: search}
	if status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return Page{}, apperr.Validation(InvalidStatusMessage)
		}
		f.Status = st
	}
	p := paging.Normalize(pageNumber, pageSize)
	f.PageNumber, f.PageSize = p.Number, p.Size

	orders, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Orders:     orders,
		TotalCount: total,
		PageNumber: p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}, nil
}
