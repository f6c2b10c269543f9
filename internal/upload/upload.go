// Package upload validates image uploads and hands them to a Store.
package upload

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
)

const MaxFileSize = 5 << 20

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type File struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

type Result struct {
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

type Service struct {
	store  Store
	logger *slog.Logger
	newID  func() string
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, newID: uuid.NewString}
}

func (s *Service) ProductImage(ctx context.Context, f *File) (Result, error) {
	ext, err := check(f)
	if err != nil {
		return Result{}, err
	}
	name := s.newID() + ext
	url, err := s.put(ctx, "products/"+name, f, ext)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Product image uploaded successfully", FileURL: url, FileName: name}, nil
}

func (s *Service) Avatar(ctx context.Context, userID string, f *File) (Result, error) {
	ext, err := check(f)
	if err != nil {
		return Result{}, err
	}
	name := userID + "_" + s.newID() + ext
	url, err := s.put(ctx, "avatars/"+name, f, ext)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Avatar uploaded successfully", FileURL: url, FileName: name}, nil
}

func (s *Service) put(ctx context.Context, key string, f *File, ext string) (string, error) {
	url, err := s.store.Put(ctx, key, f.Body, contentTypes[ext])
	if err != nil {
		return "", apperr.Internal("An error occurred while uploading the image", err)
	}
	s.logger.InfoContext(ctx, "file uploaded", "key", key, "size", f.Size)
	return url, nil
}

// check returns the lower-cased extension of an acceptable upload.
func check(f *File) (string, error) {
	if f == nil || f.Size == 0 || f.Body == nil {
		return "", apperr.Validation("No file uploaded")
	}
	if f.Size > MaxFileSize {
		return "", apperr.Validation("File size exceeds 5MB limit")
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if _, ok := contentTypes[ext]; !ok {
		return "", apperr.Validation("Invalid file type. Allowed types: jpg, jpeg, png, gif, webp")
	}
	return ext, nil
}
