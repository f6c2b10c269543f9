package httpapi

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/wishlist"
)

type WishlistService interface {
	List(ctx context.Context, userID string) ([]wishlist.Item, error)
	Add(ctx context.Context, userID string, productID int64) (wishlist.Item, bool, error)
	Remove(ctx context.Context, userID string, productID int64) error
	Clear(ctx context.Context, userID string) error
	MoveToCart(ctx context.Context, userID string, productID int64, quantity int) (cart.Item, error)
}

type wishlistExistingResponse struct {
	Message string        `json:"message"`
	Item    wishlist.Item `json:"item"`
}

type movedToCartResponse struct {
	Message string    `json:"message"`
	Item    cart.Item `json:"item"`
}

const wishlistNotFound = "Product not found in wishlist"

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.wishlist.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var in wishlist.AddInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	item, created, err := h.wishlist.Add(r.Context(), middleware.GetUserID(r.Context()), in.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, wishlistExistingResponse{Message: "Product already in wishlist", Item: item})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", wishlistNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.wishlist.Remove(r.Context(), middleware.GetUserID(r.Context()), productID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Product removed from wishlist successfully")
}

func (h *Handler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlist.Clear(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Wishlist cleared successfully")
}

// MoveWishlistItemToCart takes an optional quantity query parameter, default 1.
func (h *Handler) MoveWishlistItemToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", wishlistNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.wishlist.MoveToCart(r.Context(), middleware.GetUserID(r.Context()), productID, queryInt(r, "quantity"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movedToCartResponse{Message: "Product added to cart successfully", Item: item})
}
