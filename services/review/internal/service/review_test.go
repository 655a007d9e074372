package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka/kafkatest"
	"github.com/Skotchmaster/sport_shop/services/review/internal/models"
	"github.com/Skotchmaster/sport_shop/services/review/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/review/internal/transport"
)

func newTestService(t *testing.T) (*ReviewService, *kafkatest.Recorder, uint) {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Review{}))

	p := models.Product{Name: "Tennis racket"}
	require.NoError(t, db.Create(&p).Error)

	rec := &kafkatest.Recorder{}
	return &ReviewService{Repo: &repo.GormRepo{DB: db}, Events: rec}, rec, p.ID
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	svc, _, productID := newTestService(t)

	tests := []struct {
		name string
		req  transport.CreateReviewRequest
		msg  string
	}{
		{"missing product", transport.CreateReviewRequest{Rating: intPtr(4)}, "productId must be an integer"},
		{"missing rating", transport.CreateReviewRequest{ProductID: uintPtr(productID)}, "Rating is required"},
		{"rating too low", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(0)}, "Rating must be at least 1"},
		{"rating too high", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(6)}, "Rating must be at most 5"},
		{"short comment", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(3), Comment: strPtr(" ok  ")}, "Comment must be at least 5 characters"},
		{"long comment", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(3), Comment: strPtr(strings.Repeat("a", 1001))}, "Comment must be at most 1000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", tt.req)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.msg, apperr.Message(err))
		})
	}

	_, err := svc.Create(context.Background(), "u1", transport.CreateReviewRequest{ProductID: uintPtr(999), Rating: intPtr(5)})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Product not found", apperr.Message(err))
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	svc, rec, productID := newTestService(t)
	ctx := context.Background()

	rv, err := svc.Create(ctx, "u1", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(5), Comment: strPtr("  Great grip  ")})
	require.NoError(t, err)
	require.NotNil(t, rv.Comment)
	assert.Equal(t, "Great grip", *rv.Comment)

	_, err = svc.Create(ctx, "u1", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(1)})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "You have already reviewed this product", apperr.Message(err))

	assert.Equal(t, []string{EventReviewCreated}, rec.Types(mykafka.TopicReview))
}

func TestCreate_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()
	svc, _, productID := newTestService(t)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), "u1", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(4)})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	t.Parallel()
	svc, rec, productID := newTestService(t)
	ctx := context.Background()

	rv, err := svc.Create(ctx, "author", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(2)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "author", rv.ID, transport.UpdateReviewRequest{})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "At least one field (rating or comment) must be provided", apperr.Message(err))

	_, err = svc.Update(ctx, "intruder", rv.ID, transport.UpdateReviewRequest{Rating: intPtr(5)})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Unauthorized to update this review", apperr.Message(err))

	_, err = svc.Update(ctx, "author", 999, transport.UpdateReviewRequest{Rating: intPtr(5)})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := svc.Update(ctx, "author", rv.ID, transport.UpdateReviewRequest{Rating: intPtr(4), Comment: strPtr("Better after a week")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "Better after a week", *updated.Comment)

	err = svc.Delete(ctx, "intruder", rv.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Unauthorized to delete this review", apperr.Message(err))

	require.NoError(t, svc.Delete(ctx, "author", rv.ID))
	require.ErrorIs(t, svc.Delete(ctx, "author", rv.ID), apperr.ErrNotFound)

	assert.Equal(t,
		[]string{EventReviewCreated, EventReviewUpdated, EventReviewDeleted},
		rec.Types(mykafka.TopicReview))
}

func TestList_PagesAndStats(t *testing.T) {
	t.Parallel()
	svc, _, productID := newTestService(t)
	ctx := context.Background()

	for i, rating := range []int{5, 4, 4} {
		_, err := svc.Create(ctx, string(rune('a'+i)), transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(rating)})
		require.NoError(t, err)
	}

	out, err := svc.List(ctx, productID, 2, 0)
	require.NoError(t, err)
	require.Len(t, out.Reviews, 2)
	assert.Equal(t, "c", out.Reviews[0].UserID, "newest first")
	assert.EqualValues(t, 3, out.Stats.TotalReviews)
	assert.Equal(t, "4.33", out.Stats.AverageRating.StringFixed(2))

	out, err = svc.List(ctx, productID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, out.Reviews, 1)

	out, err = svc.List(ctx, 4242, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Reviews)
	assert.True(t, out.Stats.AverageRating.IsZero())

	_, err = svc.List(ctx, 0, 10, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	svc, rec, productID := newTestService(t)
	rec.Err = errors.New("broker down")

	_, err := svc.Create(context.Background(), "u1", transport.CreateReviewRequest{ProductID: uintPtr(productID), Rating: intPtr(3)})
	require.NoError(t, err)
}
