package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/review/internal/models"
	"github.com/Skotchmaster/sport_shop/services/review/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/review/internal/transport"
)

const (
	EventReviewCreated = "review_created"
	EventReviewUpdated = "review_updated"
	EventReviewDeleted = "review_deleted"

	DefaultLimit = 20
	MaxLimit     = 100

	minComment = 5
	maxComment = 1000
)

type ReviewService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// List returns one page of the product's reviews, newest first, with stats over
// all of them.
func (s *ReviewService) List(ctx context.Context, productID uint, limit, offset int) (*transport.ReviewList, error) {
	if productID == 0 {
		return nil, apperr.New(apperr.ErrValidation, "productId is required")
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.Repo.ListByProduct(ctx, productID, offset, limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.Stats(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &transport.ReviewList{Reviews: reviews, Stats: stats}, nil
}

func (s *ReviewService) Create(ctx context.Context, userID string, req transport.CreateReviewRequest) (*models.Review, error) {
	var fields []apperr.FieldError
	if req.ProductID == nil || *req.ProductID == 0 {
		fields = append(fields, apperr.FieldError{Field: "productId", Message: "productId must be an integer"})
	}
	if req.Rating == nil {
		fields = append(fields, apperr.FieldError{Field: "rating", Message: "Rating is required"})
	}
	fields = append(fields, validate(req.Rating, req.Comment)...)
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	rv := &models.Review{
		UserID:    userID,
		ProductID: *req.ProductID,
		Rating:    *req.Rating,
		Comment:   trimmed(req.Comment),
	}
	if err := s.Repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.publish(ctx, rv.ProductID, EventReviewCreated, rv)
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, userID string, id uint, req transport.UpdateReviewRequest) (*models.Review, error) {
	if id == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid review ID is required")
	}
	if req.Rating == nil && req.Comment == nil {
		return nil, apperr.New(apperr.ErrValidation, "At least one field (rating or comment) must be provided")
	}
	if fields := validate(req.Rating, req.Comment); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	updates := map[string]any{}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Comment != nil {
		updates["comment"] = *trimmed(req.Comment)
	}

	rv, err := s.Repo.Update(ctx, userID, id, updates)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, rv.ProductID, EventReviewUpdated, rv)
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID string, id uint) error {
	if id == 0 {
		return apperr.New(apperr.ErrValidation, "Valid review ID is required")
	}
	rv, err := s.Repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	s.publish(ctx, rv.ProductID, EventReviewDeleted, map[string]any{"id": rv.ID, "productId": rv.ProductID})
	return nil
}

func validate(rating *int, comment *string) []apperr.FieldError {
	var out []apperr.FieldError
	if rating != nil {
		switch {
		case *rating < 1:
			out = append(out, apperr.FieldError{Field: "rating", Message: "Rating must be at least 1"})
		case *rating > 5:
			out = append(out, apperr.FieldError{Field: "rating", Message: "Rating must be at most 5"})
		}
	}
	if comment != nil {
		n := utf8.RuneCountInString(strings.TrimSpace(*comment))
		switch {
		case n < minComment:
			out = append(out, apperr.FieldError{Field: "comment", Message: "Comment must be at least 5 characters"})
		case n > maxComment:
			out = append(out, apperr.FieldError{Field: "comment", Message: "Comment must be at most 1000 characters"})
		}
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func (s *ReviewService) publish(ctx context.Context, productID uint, typ string, data any) {
	if s.Events == nil {
		return
	}
	key := strconv.FormatUint(uint64(productID), 10)
	if err := s.Events.PublishEvent(ctx, mykafka.TopicReview, key, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("review_event_publish_failed", "type", typ, "error", err)
	}
}
