package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/review/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) ListByProduct(ctx context.Context, productID uint, offset, limit int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Stats covers every review of the product regardless of the page being read.
func (r *GormRepo) Stats(ctx context.Context, productID uint) (models.Stats, error) {
	var row struct {
		Average decimal.NullDecimal
		Total   int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return models.Stats{}, fmt.Errorf("review stats: %w", err)
	}

	stats := models.Stats{AverageRating: decimal.Zero, TotalReviews: row.Total}
	if row.Average.Valid {
		stats.AverageRating = row.Average.Decimal.Round(2)
	}
	return stats, nil
}

// Create relies on the (user_id, product_id) unique index for duplicates.
func (r *GormRepo) Create(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", rv.ProductID).Count(&n).Error; err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if n == 0 {
			return apperr.New(apperr.ErrNotFound, "Product not found")
		}

		err := tx.Create(rv).Error
		if pkgdb.IsUniqueViolation(err) {
			return apperr.New(apperr.ErrConflict, "You have already reviewed this product")
		}
		if err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		return nil
	})
}

// Update applies updates to a review the user wrote. A review written by someone
// else is reported as forbidden, not missing.
func (r *GormRepo) Update(ctx context.Context, userID string, id uint, updates map[string]any) (*models.Review, error) {
	var rv models.Review
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedReview(tx, userID, id, &rv, "Unauthorized to update this review"); err != nil {
			return err
		}
		res := tx.Model(&models.Review{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update review: %w", res.Error)
		}
		return tx.First(&rv, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *GormRepo) Delete(ctx context.Context, userID string, id uint) (*models.Review, error) {
	var rv models.Review
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedReview(tx, userID, id, &rv, "Unauthorized to delete this review"); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func ownedReview(tx *gorm.DB, userID string, id uint, out *models.Review, forbidden string) error {
	err := tx.First(out, id).Error
	if pkgdb.IsNotFound(err) {
		return apperr.New(apperr.ErrNotFound, "Review not found")
	}
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if out.UserID != userID {
		return apperr.New(apperr.ErrForbidden, "%s", forbidden)
	}
	return nil
}
