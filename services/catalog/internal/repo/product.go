package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

const (
	SortCreatedAt = "createdAt"
	SortPrice     = "price"
	SortName      = "name"
)

var sortColumns = map[string]string{
	SortCreatedAt: "created_at",
	SortPrice:     "price",
	SortName:      "name",
}

type ProductFilter struct {
	Search     string
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	Asc        bool
	Offset     int
	Limit      int
}

func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("count products: %w", err)
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[SortCreatedAt]
	}

	items := make([]models.Product, 0, f.Limit)
	if err := q.Preload("Category").
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: !f.Asc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: !f.Asc}).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("list products: %w", err)
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Preload("Category").First(&p, id).Error
	if pkgdb.IsNotFound(err) {
		return nil, apperr.New(apperr.ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ProductsByID loads ids and returns them in the order given. Ids that no longer
// exist are dropped.
func (r *GormRepo) ProductsByID(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("products by id: %w", err)
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) RelatedProducts(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	out := []models.Product{}
	if p.CategoryID == nil {
		return out, nil
	}
	if err := r.DB.WithContext(ctx).
		Where("category_id = ? AND id <> ?", *p.CategoryID, p.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	return out, nil
}

func (r *GormRepo) ProductReviews(ctx context.Context, productID uint) ([]models.Review, models.ReviewStats, error) {
	reviews := []models.Review{}
	if err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, models.ReviewStats{}, fmt.Errorf("product reviews: %w", err)
	}

	var row struct {
		Average decimal.NullDecimal
		Total   int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error; err != nil {
		return nil, models.ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}

	stats := models.ReviewStats{AverageRating: decimal.Zero, TotalReviews: row.Total}
	if row.Average.Valid {
		stats.AverageRating = row.Average.Decimal.Round(2)
	}
	return reviews, stats, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.CategoryID != nil {
			if err := categoryExists(tx, *p.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Omit("Category").Create(p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return tx.Preload("Category").First(p, p.ID).Error
	})
}

// UpdateProduct applies the column updates to product id and returns the stored row.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, updates map[string]any) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&p, id).Error
		if pkgdb.IsNotFound(err) {
			return apperr.New(apperr.ErrNotFound, "Product not found")
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		if cid, ok := updates["category_id"].(uint); ok {
			if err := categoryExists(tx, cid); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&p).Omit("Category").Updates(updates).Error; err != nil {
				return fmt.Errorf("update product: %w", err)
			}
		}
		return tx.Preload("Category").First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product together with its reviews. A product still held
// in a cart or referenced by an order is kept and ErrConflict is returned.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		err := tx.Select("id").First(&p, id).Error
		if pkgdb.IsNotFound(err) {
			return apperr.New(apperr.ErrNotFound, "Product not found")
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		inCarts, err := references(tx, &models.CartLine{}, id)
		if err != nil {
			return err
		}
		if inCarts {
			return apperr.New(apperr.ErrConflict, "Cannot delete product that is in a cart")
		}
		inOrders, err := references(tx, &models.OrderLine{}, id)
		if err != nil {
			return err
		}
		if inOrders {
			return apperr.New(apperr.ErrConflict, "Cannot delete product with orders")
		}

		if tx.Migrator().HasTable(&models.Review{}) {
			if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
				return fmt.Errorf("delete product reviews: %w", err)
			}
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

// references reports whether any row of model's table points at the product. A
// table that does not exist yet holds no references.
func references(tx *gorm.DB, model any, productID uint) (bool, error) {
	if !tx.Migrator().HasTable(model) {
		return false, nil
	}
	var n int64
	if err := tx.Model(model).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count product references: %w", err)
	}
	return n > 0, nil
}

// EachProduct walks the whole table in id order, batchSize rows at a time.
func (r *GormRepo) EachProduct(ctx context.Context, batchSize int, fn func([]models.Product) error) error {
	var batch []models.Product
	res := r.DB.WithContext(ctx).FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}

func categoryExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return apperr.Validation(apperr.FieldError{Field: "categoryId", Message: "Category not found"})
	}
	return nil
}
