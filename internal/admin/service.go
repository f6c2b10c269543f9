package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/review"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

const (
	DefaultRecentOrders = 10
	MaxRecentOrders     = 100
)

type Service struct {
	reports Reports
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(reports Reports, logger *slog.Logger) *Service {
	return &Service{
		reports: reports,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	d, err := s.reports.Dashboard(ctx, PeriodsAt(s.now()))
	if err != nil {
		return Dashboard{}, err
	}
	d.AverageRating = review.Round2(d.AverageRating)
	return d, nil
}

func (s *Service) Revenue(ctx context.Context) (Revenue, error) {
	return s.reports.Revenue(ctx, PeriodsAt(s.now()))
}

func (s *Service) OrderStats(ctx context.Context) (OrderStats, error) {
	return s.reports.OrderStats(ctx, PeriodsAt(s.now()))
}

func (s *Service) ProductStats(ctx context.Context) (ProductStats, error) {
	return s.reports.ProductStats(ctx)
}

func (s *Service) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	if limit < 1 {
		limit = DefaultRecentOrders
	}
	if limit > MaxRecentOrders {
		limit = MaxRecentOrders
	}
	return s.reports.RecentOrders(ctx, limit)
}

func (s *Service) Customers(ctx context.Context, search string, pageNumber, pageSize int) (CustomerPage, error) {
	p := paging.Normalize(pageNumber, pageSize)
	customers, total, err := s.reports.Customers(ctx, search, p)
	if err != nil {
		return CustomerPage{}, err
	}
	return CustomerPage{
		Customers:  customers,
		TotalCount: total,
		PageNumber: p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}, nil
}

// Customer returns a customer with their statistics. Admin accounts are
// rejected so the console never shows staff as shoppers.
func (s *Service) Customer(ctx context.Context, id string) (CustomerDetail, error) {
	c, err := s.lookup(ctx, id)
	if err != nil {
		return CustomerDetail{}, err
	}
	if c.Role != user.RoleCustomer {
		s.logger.InfoContext(ctx, "customer lookup on non-customer", "user_id", c.ID, "role", c.Role)
		return CustomerDetail{}, apperr.Validation("User is not a customer")
	}
	stats, err := s.reports.CustomerStats(ctx, c.ID)
	if err != nil {
		return CustomerDetail{}, err
	}
	return CustomerDetail{Customer: c, Stats: stats}, nil
}

func (s *Service) CustomerOrders(ctx context.Context, id string, pageNumber, pageSize int) (CustomerOrderPage, error) {
	c, err := s.lookup(ctx, id)
	if err != nil {
		return CustomerOrderPage{}, err
	}
	p := paging.Normalize(pageNumber, pageSize)
	orders, total, err := s.reports.CustomerOrders(ctx, c.ID, p)
	if err != nil {
		return CustomerOrderPage{}, err
	}
	return CustomerOrderPage{
		Orders:     orders,
		TotalCount: total,
		PageNumber: p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}, nil
}

func (s *Service) CustomerStats(ctx context.Context, id string) (CustomerStats, error) {
	c, err := s.lookup(ctx, id)
	if err != nil {
		return CustomerStats{}, err
	}
	return s.reports.CustomerStats(ctx, c.ID)
}

func (s *Service) lookup(ctx context.Context, id string) (Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Customer{}, apperr.NotFound("Customer not found")
	}
	c, err := s.reports.Customer(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Customer{}, apperr.NotFound("Customer not found")
	}
	return c, err
}
