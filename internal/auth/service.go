// Package auth handles registration, sign-in, password changes and resets,
// and the access tokens that identify callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 5 * time.Minute
	ResetTokenTTL     = time.Hour

	invalidCredentials = "Invalid email or password"
	accountLocked      = "Account is locked. Try again later."
	ForgotMessage      = "If an account with that email exists, a password reset link has been sent."
)

// Users is the account storage auth works against.
type Users interface {
	Create(ctx context.Context, u user.User) error
	ByID(ctx context.Context, id string) (user.User, error)
	ByEmail(ctx context.Context, email string) (user.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockoutEnd time.Time) (bool, error)
	ResetLoginFailures(ctx context.Context, id string) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"max=50"`
	Address  string `json:"address" validate:"max=500"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UserInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

func infoOf(u user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}

type Response struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	User         UserInfo  `json:"user"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type Service struct {
	users  Users
	resets ResetStore
	tokens *TokenManager
	logger *slog.Logger

	now      func() time.Time
	hashCost int
}

func NewService(users Users, resets ResetStore, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		resets:   resets,
		tokens:   tokens,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Response, error) {
	if problems := PasswordProblems(in.Password); len(problems) > 0 {
		return Response{}, apperr.Validation("Validation failed", problems...)
	}
	email := strings.TrimSpace(in.Email)
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return Response{}, apperr.Conflict("Email is already registered")
	} else if !errors.Is(err, user.ErrNotFound) {
		return Response{}, err
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return Response{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := user.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         user.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return Response{}, apperr.Conflict("Email is already registered")
		}
		return Response{}, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.respond(u)
}

// Login checks credentials. After MaxFailedAttempts consecutive failures the
// account is locked for LockoutDuration.
func (s *Service) Login(ctx context.Context, in LoginInput) (Response, error) {
	u, err := s.users.ByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, user.ErrNotFound) {
		return Response{}, apperr.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return Response{}, err
	}

	now := s.now()
	if u.LockedAt(now) {
		return Response{}, apperr.Unauthorized(accountLocked)
	}

	if !checkPassword(u.PasswordHash, in.Password) {
		locked, err := s.users.RecordLoginFailure(ctx, u.ID, MaxFailedAttempts, now.Add(LockoutDuration))
		if err != nil {
			return Response{}, err
		}
		if locked {
			s.logger.WarnContext(ctx, "account locked", "user_id", u.ID)
			return Response{}, apperr.Unauthorized(accountLocked)
		}
		return Response{}, apperr.Unauthorized(invalidCredentials)
	}

	if u.FailedLoginCount > 0 || u.LockoutEnd != nil {
		if err := s.users.ResetLoginFailures(ctx, u.ID); err != nil {
			return Response{}, err
		}
	}
	return s.respond(u)
}

func (s *Service) Me(ctx context.Context, userID string) (UserInfo, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return UserInfo{}, apperr.NotFound("User not found")
		}
		return UserInfo{}, err
	}
	return infoOf(u), nil
}

func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return apperr.Validation("Validation failed", "Passwords do not match")
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	if !checkPassword(u.PasswordHash, in.CurrentPassword) {
		return apperr.Validation("Password change failed", "Incorrect password.")
	}
	if problems := PasswordProblems(in.NewPassword); len(problems) > 0 {
		return apperr.Validation("Password change failed", problems...)
	}
	if err := s.setPassword(ctx, u.ID, in.NewPassword); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password changed", "user_id", u.ID)
	return nil
}

// ForgotPassword stores a single-use reset token for the account, if any, and
// returns the raw token. Callers must not reveal whether the account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, user.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	raw := newOpaqueToken(32)
	if err := s.resets.Create(ctx, u.ID, hashResetToken(raw), s.now().Add(ResetTokenTTL)); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "password reset requested", "user_id", u.ID)
	return raw, nil
}

func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	invalid := apperr.Validation("Invalid email or token")

	u, err := s.users.ByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, user.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}
	if problems := PasswordProblems(in.NewPassword); len(problems) > 0 {
		return apperr.Validation("Password reset failed", problems...)
	}

	ok, err := s.resets.Consume(ctx, u.ID, hashResetToken(in.Token), s.now())
	if err != nil {
		return err
	}
	if !ok {
		return invalid
	}
	if err := s.setPassword(ctx, u.ID, in.NewPassword); err != nil {
		return err
	}
	if err := s.users.ResetLoginFailures(ctx, u.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "user_id", u.ID)
	return nil
}

// EnsureAdmin creates the admin account unless the email is already taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	now := s.now()
	err = s.users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         "Admin User",
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, user.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) setPassword(ctx context.Context, userID, pw string) error {
	hash, err := hashPassword(pw, s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPasswordHash(ctx, userID, hash)
}

func (s *Service) respond(u user.User) (Response, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Token:        token,
		RefreshToken: NewRefreshToken(),
		User:         infoOf(u),
		ExpiresAt:    expiresAt,
	}, nil
}
