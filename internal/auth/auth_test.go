package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/obs"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
)

type fakeUsers struct {
	byID     map[string]user.User
	failures map[string]int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]user.User{}, failures: map[string]int{}}
}

func (f *fakeUsers) Create(_ context.Context, u user.User) error {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrDuplicateEmail
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) ByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	u := f.byID[id]
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) RecordLoginFailure(_ context.Context, id string, maxAttempts int, lockoutEnd time.Time) (bool, error) {
	u := f.byID[id]
	u.FailedLoginCount++
	locked := false
	if u.FailedLoginCount >= maxAttempts {
		u.FailedLoginCount = 0
		u.LockoutEnd = &lockoutEnd
		locked = true
	}
	f.byID[id] = u
	return locked, nil
}

func (f *fakeUsers) ResetLoginFailures(_ context.Context, id string) error {
	u := f.byID[id]
	u.FailedLoginCount = 0
	u.LockoutEnd = nil
	f.byID[id] = u
	return nil
}

type resetRecord struct {
	userID    string
	expiresAt time.Time
	used      bool
}

type fakeResets struct {
	tokens map[string]*resetRecord
}

func (f *fakeResets) Create(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.tokens[tokenHash] = &resetRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeResets) Consume(_ context.Context, userID, tokenHash string, now time.Time) (bool, error) {
	r, ok := f.tokens[tokenHash]
	if !ok || r.used || r.userID != userID || !r.expiresAt.After(now) {
		return false, nil
	}
	r.used = true
	return true, nil
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeUsers, *fakeResets) {
	t.Helper()
	users := newFakeUsers()
	resets := &fakeResets{tokens: map[string]*resetRecord{}}
	tokens := NewTokenManager("test-signing-key-with-enough-bytes!!", "storefront", "storefront-clients", 24*time.Hour)
	svc := NewService(users, resets, tokens, obs.Discard())
	svc.hashCost = bcrypt.MinCost
	svc.now = func() time.Time { return testNow }
	return svc, users, resets
}

func register(t *testing.T, svc *Service) Response {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "Secret1",
	})
	require.NoError(t, err)
	return resp
}

func TestPasswordProblems(t *testing.T) {
	assert.Empty(t, PasswordProblems("Secret1"))
	assert.Len(t, PasswordProblems("abc"), 3)
	assert.Equal(t, []string{"Passwords must have at least one uppercase ('A'-'Z')."}, PasswordProblems("secret1"))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestService(t)

	resp := register(t, svc)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.Equal(t, user.RoleCustomer, resp.User.Role)

	stored := users.byID[resp.User.ID]
	assert.NotEqual(t, "Secret1", stored.PasswordHash)
	assert.True(t, checkPassword(stored.PasswordHash, "Secret1"))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Name: "Other", Email: "ANN@example.com", Password: "Secret1"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "weak"})
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		var e *apperr.Error
		require.ErrorAs(t, err, &e)
		assert.NotEmpty(t, e.Details)
	})
}

func TestService_LoginAndLockout(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestService(t)
	registered := register(t, svc)

	resp, err := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Secret1"})
	assert.EqualError(t, err, invalidCredentials)

	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong"})
		assert.EqualError(t, err, invalidCredentials)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong"})
	assert.EqualError(t, err, accountLocked)

	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Secret1"})
	assert.EqualError(t, err, accountLocked, "correct password is refused while locked")

	svc.now = func() time.Time { return testNow.Add(LockoutDuration + time.Second) }
	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Nil(t, users.byID[registered.User.ID].LockoutEnd)
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	id := register(t, svc).User.ID

	err := svc.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "nope", NewPassword: "Better2", ConfirmPassword: "Better2"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "Secret1", NewPassword: "Better2", ConfirmPassword: "Other3"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "Secret1", NewPassword: "Better2", ConfirmPassword: "Better2"}))

	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Secret1"})
	assert.Error(t, err)
	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Better2"})
	assert.NoError(t, err)
}

func TestService_ForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, resets := newTestService(t)
	register(t, svc)

	raw, err := svc.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, raw)

	raw, err = svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	_, stored := resets.tokens[raw]
	assert.False(t, stored, "only the hash is stored")
	require.Contains(t, resets.tokens, hashResetToken(raw))

	err = svc.ResetPassword(ctx, ResetPasswordInput{Email: "ann@example.com", Token: "bogus", NewPassword: "Better2"})
	assert.EqualError(t, err, "Invalid email or token")

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordInput{Email: "ann@example.com", Token: raw, NewPassword: "Better2"}))
	_, err = svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "Better2"})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, ResetPasswordInput{Email: "ann@example.com", Token: raw, NewPassword: "Third3x"})
	assert.EqualError(t, err, "Invalid email or token", "tokens are single use")
}

func TestService_ResetTokenExpires(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	register(t, svc)

	raw, err := svc.ForgotPassword(ctx, "ann@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(ResetTokenTTL + time.Minute) }
	err = svc.ResetPassword(ctx, ResetPasswordInput{Email: "ann@example.com", Token: raw, NewPassword: "Better2"})
	assert.EqualError(t, err, "Invalid email or token")
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestService(t)

	created, err := svc.EnsureAdmin(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, users.byID, 1)
	for _, u := range users.byID {
		assert.Equal(t, user.RoleAdmin, u.Role)
		assert.Equal(t, "Admin User", u.Name)
	}
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-signing-key-with-enough-bytes!!", "storefront", "storefront-clients", time.Hour)
	u := user.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: user.RoleAdmin}

	raw, expiresAt, err := m.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, user.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	t.Run("wrong audience", func(t *testing.T) {
		other := NewTokenManager("test-signing-key-with-enough-bytes!!", "storefront", "someone-else", time.Hour)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewTokenManager("a-completely-different-signing-key!!", "storefront", "storefront-clients", time.Hour)
		_, err := other.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("test-signing-key-with-enough-bytes!!", "storefront", "storefront-clients", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPostgresResetStore_Consume(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresResetStore(mock)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE password_reset_tokens`).
		WithArgs("u1", "hash", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE password_reset_tokens`).
		WithArgs("u1", "hash", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := store.Consume(context.Background(), "u1", "hash", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(context.Background(), "u1", "hash", now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
