package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

type CatalogService interface {
	List(ctx context.Context, category, search string, pageNumber, pageSize int) (catalog.Page, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, in catalog.CreateInput) (catalog.Product, error)
	Update(ctx context.Context, id int64, in catalog.UpdateInput) (catalog.Product, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

const productNotFound = "Product not found"

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.catalog.List(r.Context(), q.Get("category"), q.Get("search"), queryInt(r, "pageNumber"), queryInt(r, "pageSize"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", productNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/products/%d", p.ID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", productNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in catalog.UpdateInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.catalog.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", productNotFound)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Product deleted successfully")
}
