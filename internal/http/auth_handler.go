package httpapi

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (auth.Response, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.Response, error)
	Me(ctx context.Context, userID string) (auth.UserInfo, error)
	ChangePassword(ctx context.Context, userID string, in auth.ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in auth.ResetPasswordInput) error
}

type forgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout is stateless; clients discard their tokens.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Logged out successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	info, err := h.auth.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in auth.ChangePasswordInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Password changed successfully")
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in auth.ForgotPasswordInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.auth.ForgotPassword(r.Context(), in.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := forgotPasswordResponse{Message: auth.ForgotMessage}
	if h.exposeResetTokens {
		resp.ResetToken = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in auth.ResetPasswordInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, "Password reset successfully. Please login with your new password.")
}
