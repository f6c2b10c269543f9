package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/review"
)

type ReviewService interface {
	ForProduct(ctx context.Context, productID int64) (review.ProductReviews, error)
	Create(ctx context.Context, userID string, productID int64, in review.Input) (review.Review, error)
	Update(ctx context.Context, userID string, id int64, in review.Input) (review.Review, error)
	Delete(ctx context.Context, userID string, id int64) error
	AdminDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f review.AdminFilter) (review.Page, error)
	Stats(ctx context.Context) (review.Stats, error)
}

const reviewNotFound = "Review not found"

func (h *Handler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id", productNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.reviews.ForProduct(r.Context(), productID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id", productNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in review.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rv, err := h.reviews.Create(r.Context(), middleware.GetUserID(r.Context()), productID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/products/%d/reviews", productID))
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", reviewNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in review.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rv, err := h.reviews.Update(r.Context(), middleware.GetUserID(r.Context()), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", reviewNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Review deleted successfully")
}

func (h *Handler) AdminListReviews(w http.ResponseWriter, r *http.Request) {
	page, err := h.reviews.List(r.Context(), review.AdminFilter{
		ProductID:  int64(queryInt(r, "productId")),
		Rating:     queryInt(r, "rating"),
		Search:     r.URL.Query().Get("search"),
		PageNumber: queryInt(r, "pageNumber"),
		PageSize:   queryInt(r, "pageSize"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) AdminDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", reviewNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.reviews.AdminDelete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Review deleted successfully")
}

func (h *Handler) ReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviews.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
