package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/obs"
)

type fakeRepo struct {
	products map[int64]bool
	reviews  map[int64]Review
	nextID   int64
	// skipExistsCheck simulates a concurrent insert racing past Exists.
	skipExistsCheck bool

	statsMonth, statsYear time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[int64]bool{1: true, 2: true}, reviews: map[int64]Review{}}
}

func (r *fakeRepo) ProductExists(_ context.Context, productID int64) error {
	if !r.products[productID] {
		return ErrProductNotFound
	}
	return nil
}

func (r *fakeRepo) ListByProduct(_ context.Context, productID int64) ([]Review, error) {
	var out []Review
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeRepo) Exists(_ context.Context, userID string, productID int64) (bool, error) {
	if r.skipExistsCheck {
		return false, nil
	}
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Create(_ context.Context, userID string, productID int64, in Input) (int64, error) {
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return 0, ErrDuplicate
		}
	}
	r.nextID++
	r.reviews[r.nextID] = Review{ID: r.nextID, UserID: userID, ProductID: productID, Rating: in.Rating, Comment: in.Comment}
	return r.nextID, nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	return rv, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, in Input) error {
	rv, ok := r.reviews[id]
	if !ok {
		return ErrNotFound
	}
	rv.Rating, rv.Comment = in.Rating, in.Comment
	r.reviews[id] = rv
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, f AdminFilter) ([]Review, int, error) {
	return []Review{}, len(r.reviews), nil
}

func (r *fakeRepo) Stats(_ context.Context, monthStart, yearStart time.Time) (Stats, error) {
	r.statsMonth, r.statsYear = monthStart, yearStart
	return Stats{TotalReviews: len(r.reviews)}, nil
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Message
}

func TestService_OneReviewPerUserAndProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, obs.Discard())

	rv, err := svc.Create(ctx, "u1", 1, Input{Rating: 5, Comment: " lovely "})
	require.NoError(t, err)
	assert.Equal(t, "lovely", rv.Comment)

	_, err = svc.Create(ctx, "u1", 1, Input{Rating: 4})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, duplicateMessage, messageOf(t, err))

	repo.skipExistsCheck = true
	_, err = svc.Create(ctx, "u1", 1, Input{Rating: 4})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "constraint violation maps to conflict")

	_, err = svc.Create(ctx, "u2", 1, Input{Rating: 4})
	require.NoError(t, err)
	assert.Len(t, repo.reviews, 2)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo(), obs.Discard())

	_, err := svc.Create(ctx, "u1", 1, Input{Rating: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Create(ctx, "u1", 1, Input{Rating: 6})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Create(ctx, "u1", 99, Input{Rating: 3})
	assert.Equal(t, "Product not found", messageOf(t, err))
}

func TestService_OwnerChecks(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, obs.Discard())

	rv, err := svc.Create(ctx, "owner", 1, Input{Rating: 3})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "intruder", rv.ID, Input{Rating: 1})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "You can only update your own reviews", messageOf(t, err))

	err = svc.Delete(ctx, "intruder", rv.ID)
	assert.Equal(t, "You can only delete your own reviews", messageOf(t, err))

	updated, err := svc.Update(ctx, "owner", rv.ID, Input{Rating: 4, Comment: "better"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	require.NoError(t, svc.Delete(ctx, "owner", rv.ID))
	assert.Equal(t, "Review not found", messageOf(t, svc.Delete(ctx, "owner", rv.ID)))
}

func TestService_AdminDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, obs.Discard())

	rv, err := svc.Create(ctx, "u1", 2, Input{Rating: 2})
	require.NoError(t, err)
	require.NoError(t, svc.AdminDelete(ctx, rv.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.AdminDelete(ctx, rv.ID)))
}

func TestService_StatsPeriods(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, obs.Discard())
	svc.now = func() time.Time { return time.Date(2024, 8, 17, 15, 4, 0, 0, time.UTC) }

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), repo.statsMonth)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.statsYear)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Review{{Rating: 5}, {Rating: 4}, {Rating: 4}})
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 4.33, s.AverageRating)
	assert.Equal(t, 2, s.RatingDistribution4)
	assert.Equal(t, 1, s.RatingDistribution5)

	empty := Summarize(nil)
	assert.NotNil(t, empty.Reviews)
	assert.Zero(t, empty.AverageRating)
}
