package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
)

type Repository interface {
	ByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	Stats(ctx context.Context, id string) (Stats, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return Profile{}, mapErr(err)
	}
	return u.Profile(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Profile{}, apperr.Validation("Validation failed", "Name is required")
	}
	u, err := s.repo.UpdateProfile(ctx, id, in)
	if err != nil {
		return Profile{}, mapErr(err)
	}
	s.logger.InfoContext(ctx, "profile updated", "user_id", id)
	return u.Profile(), nil
}

func (s *Service) Avatar(ctx context.Context, id string) (string, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return "", mapErr(err)
	}
	return u.AvatarURL, nil
}

func (s *Service) SetAvatar(ctx context.Context, id, avatarURL string) error {
	return mapErr(s.repo.UpdateAvatar(ctx, id, avatarURL))
}

func (s *Service) Stats(ctx context.Context, id string) (Stats, error) {
	return s.repo.Stats(ctx, id)
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return err
}
