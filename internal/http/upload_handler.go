package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/upload"
)

type UploadService interface {
	ProductImage(ctx context.Context, f *upload.File) (upload.Result, error)
	Avatar(ctx context.Context, userID string, f *upload.File) (upload.Result, error)
}

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	f, closeFile, err := formFile(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeFile()

	res, err := h.uploads.ProductImage(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	f, closeFile, err := formFile(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeFile()

	res, err := h.uploads.Avatar(r.Context(), middleware.GetUserID(r.Context()), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// formFile extracts the "file" part. A missing part yields a nil file, which
// the upload service reports as "No file uploaded".
func formFile(w http.ResponseWriter, r *http.Request) (*upload.File, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, func() {}, apperr.Validation("File size exceeds 5MB limit")
		}
		return nil, func() {}, nil
	}
	return &upload.File{Name: header.Filename, Size: header.Size, Body: file}, func() { _ = file.Close() }, nil
}
