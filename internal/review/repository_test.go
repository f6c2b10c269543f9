package review

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs("u1", int64(1), 5, "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), "u1", 1, Input{Rating: 5})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestPostgresRepository_ListFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT count\(\*\) FROM reviews r JOIN users u ON u.id = r.user_id WHERE r.product_id = \$1 AND r.rating = \$2 AND`).
		WithArgs(int64(3), 5, "%gift%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs(int64(3), 5, "%gift%", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "name", "user_id", "name", "email", "avatar_url", "rating", "comment", "created_at", "updated_at"}).
			AddRow(int64(9), int64(3), "Vase", "u1", "Ann", "ann@example.com", "", 5, "great gift", now, now))

	reviews, total, err := repo.List(context.Background(), AdminFilter{ProductID: 3, Rating: 5, Search: "gift"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Vase", reviews[0].ProductName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_StatsRoundsAverage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)
	month := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	year := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM reviews`).
		WithArgs(month, year).
		WillReturnRows(pgxmock.NewRows([]string{"total", "avg", "r1", "r2", "r3", "r4", "r5", "month", "year", "products"}).
			AddRow(3, 4.333333, 0, 0, 0, 2, 1, 1, 3, 2))

	s, err := repo.Stats(context.Background(), month, year)
	require.NoError(t, err)
	assert.Equal(t, 4.33, s.AverageRating)
	assert.Equal(t, 2, s.ProductsWithReviews)
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepository(mock)

	mock.ExpectExec(`DELETE FROM reviews`).WithArgs(int64(4)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}
