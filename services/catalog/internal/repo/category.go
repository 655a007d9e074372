package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
)

func errDuplicateSlug() error {
	return apperr.New(apperr.ErrConflict, "Category with this slug already exists")
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	out := []models.CategoryWithCount{}
	err := r.DB.WithContext(ctx).
		Table("categories").
		Select("categories.id, categories.name, categories.slug, categories.created_at, COUNT(products.id) AS products_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name, categories.slug, categories.created_at").
		Order("categories.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, []models.Product, error) {
	var c models.Category
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if pkgdb.IsNotFound(err) {
		return nil, nil, apperr.New(apperr.ErrNotFound, "Category not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get category: %w", err)
	}

	products := []models.Product{}
	if err := r.DB.WithContext(ctx).Where("category_id = ?", id).Order("id").Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("category products: %w", err)
	}
	return &c, products, nil
}

// CreateCategory relies on the unique slug index, so concurrent creates of the same
// slug yield exactly one row.
func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	err := r.DB.WithContext(ctx).Create(c).Error
	if pkgdb.IsUniqueViolation(err) {
		return errDuplicateSlug()
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uint, updates map[string]any) (*models.Category, error) {
	var c models.Category
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&c, id).Error
		if pkgdb.IsNotFound(err) {
			return apperr.New(apperr.ErrNotFound, "Category not found")
		}
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if len(updates) == 0 {
			return nil
		}

		err = tx.Model(&c).Updates(updates).Error
		if pkgdb.IsUniqueViolation(err) {
			return errDuplicateSlug()
		}
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		err := tx.First(&c, id).Error
		if pkgdb.IsNotFound(err) {
			return apperr.New(apperr.ErrNotFound, "Category not found")
		}
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}

		var n int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("count category products: %w", err)
		}
		if n > 0 {
			return apperr.New(apperr.ErrConflict, "Cannot delete category with products")
		}

		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
