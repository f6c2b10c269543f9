package httpapi

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type CartService interface {
	Get(ctx context.Context, userID string) (cart.Cart, error)
	Add(ctx context.Context, userID string, productID int64, quantity int) (cart.Item, error)
	Update(ctx context.Context, userID string, itemID int64, quantity int) (cart.Item, error)
	Remove(ctx context.Context, userID string, itemID int64) error
	Clear(ctx context.Context, userID string) error
}

const cartItemNotFound = "Cart item not found"

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var in cart.AddInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.cart.Add(r.Context(), middleware.GetUserID(r.Context()), in.ProductID, in.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemId", cartItemNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in cart.UpdateInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.cart.Update(r.Context(), middleware.GetUserID(r.Context()), id, in.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemId", cartItemNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.cart.Remove(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Item removed from cart successfully")
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Cart cleared successfully")
}
