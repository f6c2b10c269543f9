package user

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/obs"
)

type fakeRepo struct {
	users map[string]User
}

func (r *fakeRepo) ByID(_ context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, id string, in ProfileInput) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Name, u.Phone, u.Address, u.AvatarURL = in.Name, in.Phone, in.Address, in.AvatarURL
	r.users[id] = u
	return u, nil
}

func (r *fakeRepo) UpdateAvatar(_ context.Context, id, avatarURL string) error {
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.AvatarURL = avatarURL
	r.users[id] = u
	return nil
}

func (r *fakeRepo) Stats(context.Context, string) (Stats, error) {
	return Stats{TotalOrders: 2, TotalSpent: decimal.NewFromInt(30)}, nil
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{users: map[string]User{"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com", Role: RoleCustomer}}}
	svc := NewService(repo, obs.Discard())

	p, err := svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer"}, p.Roles)

	_, err = svc.Profile(ctx, "nobody")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	p, err = svc.UpdateProfile(ctx, "u1", ProfileInput{Name: " Ann B ", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", p.Name)
	assert.Equal(t, "123", p.Phone)

	_, err = svc.UpdateProfile(ctx, "u1", ProfileInput{Name: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_Avatar(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{users: map[string]User{"u1": {ID: "u1"}}}
	svc := NewService(repo, obs.Discard())

	require.NoError(t, svc.SetAvatar(ctx, "u1", "https://cdn.example.com/a.png"))
	url, err := svc.Avatar(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", url)

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.SetAvatar(ctx, "u2", "")))
}

func TestUser_LockedAt(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	assert.False(t, User{}.LockedAt(now))
	assert.True(t, User{LockoutEnd: &later}.LockedAt(now))
	assert.False(t, User{LockoutEnd: &earlier}.LockedAt(now))
}

func TestPostgresRepository_ByEmailMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).WithArgs("ANN@example.com").WillReturnError(pgx.ErrNoRows)

	_, err = repo.ByEmail(context.Background(), "ANN@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_RecordLoginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)
	until := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)

	mock.ExpectQuery(`SET failed_login_count`).
		WithArgs("u1", 5, until).
		WillReturnRows(pgxmock.NewRows([]string{"locked"}).AddRow(true))

	locked, err := repo.RecordLoginFailure(context.Background(), "u1", 5, until)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestPostgresRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`status <> 'Cancelled'`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"orders", "wishlist", "cart", "reviews", "spent"}).
			AddRow(3, 1, 2, 0, decimal.RequireFromString("120.50")))

	s, err := repo.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalOrders)
	assert.Equal(t, "120.5", s.TotalSpent.String())
}

func TestPostgresRepository_SetPasswordMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	mock.ExpectExec(`UPDATE users SET password_hash`).WithArgs("u9", "hash").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, repo.SetPasswordHash(context.Background(), "u9", "hash"), ErrNotFound)
}
