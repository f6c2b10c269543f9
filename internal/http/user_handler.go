package httpapi

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

type UserService interface {
	Profile(ctx context.Context, id string) (user.Profile, error)
	UpdateProfile(ctx context.Context, id string, in user.ProfileInput) (user.Profile, error)
	Avatar(ctx context.Context, id string) (string, error)
	SetAvatar(ctx context.Context, id, avatarURL string) error
	Stats(ctx context.Context, id string) (user.Stats, error)
}

type avatarResponse struct {
	Message   string `json:"message,omitempty"`
	AvatarURL string `json:"avatarUrl"`
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Profile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in user.ProfileInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.users.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ProfileStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.users.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	url, err := h.users.Avatar(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{AvatarURL: url})
}

func (h *Handler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var in user.AvatarInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.SetAvatar(r.Context(), middleware.GetUserID(r.Context()), in.AvatarURL); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{Message: "Avatar updated successfully", AvatarURL: in.AvatarURL})
}
