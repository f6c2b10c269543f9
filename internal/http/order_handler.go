package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, ship order.Shipping) (order.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (order.Order, error)
	Get(ctx context.Context, orderID int64, userID string, isAdmin bool) (order.Order, error)
	ListForUser(ctx context.Context, userID string) ([]order.Order, error)
	List(ctx context.Context, status, search string, pageNumber, pageSize int) (order.Page, error)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

const orderNotFound = "Order not found"

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var ship order.Shipping
	if err := decode(r, &ship); err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.CreateOrder(r.Context(), middleware.GetUserID(r.Context()), ship)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/orders/%d", o.ID))
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", orderNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, _ := middleware.GetPrincipal(r.Context())
	o, err := h.orders.Get(r.Context(), id, p.UserID, p.Role == user.RoleAdmin)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", orderNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.orders.List(r.Context(), q.Get("status"), q.Get("search"), queryInt(r, "pageNumber"), queryInt(r, "pageSize"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", orderNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id, "", true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
