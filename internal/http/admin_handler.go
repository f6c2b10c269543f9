package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/admin"
)

type AdminService interface {
	Dashboard(ctx context.Context) (admin.Dashboard, error)
	Revenue(ctx context.Context) (admin.Revenue, error)
	OrderStats(ctx context.Context) (admin.OrderStats, error)
	ProductStats(ctx context.Context) (admin.ProductStats, error)
	RecentOrders(ctx context.Context, limit int) ([]admin.RecentOrder, error)
	Customers(ctx context.Context, search string, pageNumber, pageSize int) (admin.CustomerPage, error)
	Customer(ctx context.Context, id string) (admin.CustomerDetail, error)
	CustomerOrders(ctx context.Context, id string, pageNumber, pageSize int) (admin.CustomerOrderPage, error)
	CustomerStats(ctx context.Context, id string) (admin.CustomerStats, error)
}

// respond writes v as a 200 unless err is set.
func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, v T, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.Dashboard(r.Context())
	respond(h, w, r, v, err)
}

func (h *Handler) RevenueStats(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.Revenue(r.Context())
	respond(h, w, r, v, err)
}

func (h *Handler) OrderStats(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.OrderStats(r.Context())
	respond(h, w, r, v, err)
}

func (h *Handler) ProductStats(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.ProductStats(r.Context())
	respond(h, w, r, v, err)
}

func (h *Handler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.RecentOrders(r.Context(), queryInt(r, "limit"))
	respond(h, w, r, v, err)
}

func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.Customers(r.Context(), r.URL.Query().Get("search"), queryInt(r, "pageNumber"), queryInt(r, "pageSize"))
	respond(h, w, r, v, err)
}

func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.Customer(r.Context(), chi.URLParam(r, "id"))
	respond(h, w, r, v, err)
}

func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.CustomerOrders(r.Context(), chi.URLParam(r, "id"), queryInt(r, "pageNumber"), queryInt(r, "pageSize"))
	respond(h, w, r, v, err)
}

func (h *Handler) CustomerStats(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.CustomerStats(r.Context(), chi.URLParam(r, "id"))
	respond(h, w, r, v, err)
}
