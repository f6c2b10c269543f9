package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/paging"
)

const duplicateMessage = "You have already reviewed this product. Use PUT to update your review."

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) ForProduct(ctx context.Context, productID int64) (ProductReviews, error) {
	if err := s.repo.ProductExists(ctx, productID); err != nil {
		return ProductReviews{}, mapErr(err)
	}
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return ProductReviews{}, err
	}
	return Summarize(reviews), nil
}

// Create records the user's single review of a product. A second attempt is a
// conflict whether it is caught here or by the unique constraint.
func (s *Service) Create(ctx context.Context, userID string, productID int64, in Input) (Review, error) {
	if err := validateInput(in); err != nil {
		return Review{}, err
	}
	if err := s.repo.ProductExists(ctx, productID); err != nil {
		return Review{}, mapErr(err)
	}
	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return Review{}, err
	}
	if exists {
		return Review{}, apperr.Conflict(duplicateMessage)
	}

	id, err := s.repo.Create(ctx, userID, productID, Input{Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)})
	if err != nil {
		return Review{}, mapErr(err)
	}
	s.logger.InfoContext(ctx, "review created", "review_id", id, "product_id", productID, "user_id", userID)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, userID string, id int64, in Input) (Review, error) {
	if err := validateInput(in); err != nil {
		return Review{}, err
	}
	rv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Review{}, mapErr(err)
	}
	if rv.UserID != userID {
		return Review{}, apperr.Forbidden("You can only update your own reviews")
	}
	if err := s.repo.Update(ctx, id, Input{Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)}); err != nil {
		return Review{}, mapErr(err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	rv, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapErr(err)
	}
	if rv.UserID != userID {
		return apperr.Forbidden("You can only delete your own reviews")
	}
	return mapErr(s.repo.Delete(ctx, id))
}

// AdminDelete removes any review.
func (s *Service) AdminDelete(ctx context.Context, id int64) error {
	if err := mapErr(s.repo.Delete(ctx, id)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "review removed by admin", "review_id", id)
	return nil
}

func (s *Service) List(ctx context.Context, f AdminFilter) (Page, error) {
	p := paging.Normalize(f.PageNumber, f.PageSize)
	f.PageNumber, f.PageSize = p.Number, p.Size

	reviews, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Reviews:    reviews,
		TotalCount: total,
		PageNumber: p.Number,
		PageSize:   p.Size,
		TotalPages: p.TotalPages(total),
	}, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.repo.Stats(ctx, monthStart, yearStart)
}

func validateInput(in Input) error {
	if in.Rating < 1 || in.Rating > 5 {
		return apperr.Validation("Validation failed", "Rating must be between 1 and 5")
	}
	if len([]rune(in.Comment)) > 1000 {
		return apperr.Validation("Validation failed", "Comment must not exceed 1000 characters")
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Review not found")
	case errors.Is(err, ErrProductNotFound):
		return apperr.NotFound("Product not found")
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict(duplicateMessage)
	default:
		return err
	}
}
