package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	return getOrCreateCart(r.DB.WithContext(ctx), userID)
}

// getOrCreateCart is safe under concurrent first access: the insert is skipped on a
// user_id conflict and the row is read back.
func getOrCreateCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	var out models.Cart
	if err := tx.Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &out, nil
}

func (r *GormRepo) ListLines(ctx context.Context, cartID uint) ([]models.CartLine, map[uint]models.Product, error) {
	db := r.DB.WithContext(ctx)

	var lines []models.CartLine
	if err := db.Where("cart_id = ?", cartID).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return lines, map[uint]models.Product{}, nil
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return lines, byID, nil
}

// AddLine inserts the line or adds its quantity to the existing (cart, product,
// size, color) line, then checks the combined quantity against stock inside the
// same transaction.
func (r *GormRepo) AddLine(ctx context.Context, userID string, in models.CartLine) (*models.Cart, *models.CartLine, error) {
	var (
		cart *models.Cart
		line models.CartLine
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "Product not found")
			}
			return err
		}

		var err error
		cart, err = getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		row := models.CartLine{
			CartID:    cart.ID,
			ProductID: in.ProductID,
			Size:      in.Size,
			Color:     in.Color,
			Quantity:  in.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "size"}, {Name: "color"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}

		if err := tx.Where("cart_id = ? AND product_id = ? AND size = ? AND color = ?",
			cart.ID, in.ProductID, in.Size, in.Color).First(&line).Error; err != nil {
			return err
		}

		if line.Quantity > product.Stock {
			return apperr.New(apperr.ErrInsufficientStock, "Insufficient stock")
		}

		return touchCart(tx, cart.ID, now)
	})
	if err != nil {
		return nil, nil, err
	}
	return cart, &line, nil
}

func (r *GormRepo) UpdateLineQuantity(ctx context.Context, userID string, lineID uint, quantity int) (*models.CartLine, error) {
	var line models.CartLine

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedLine(tx, userID, lineID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "Cart item not found")
			}
			return err
		}

		var product models.Product
		if err := tx.First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "Product not found")
			}
			return err
		}
		if quantity > product.Stock {
			return apperr.New(apperr.ErrInsufficientStock, "Insufficient stock")
		}

		now := time.Now().UTC()
		if err := tx.Model(&line).Updates(map[string]any{"quantity": quantity, "updated_at": now}).Error; err != nil {
			return err
		}
		line.Quantity = quantity
		line.UpdatedAt = now

		return touchCart(tx, line.CartID, now)
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) RemoveLine(ctx context.Context, userID string, lineID uint) (*models.CartLine, error) {
	var line models.CartLine

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownedLine(tx, userID, lineID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "Cart item not found")
			}
			return err
		}

		res := tx.Delete(&models.CartLine{}, line.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.ErrNotFound, "Cart item not found")
		}

		return touchCart(tx, line.CartID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ClearCart removes every line of the user's cart. A user without a cart is not an
// error.
func (r *GormRepo) ClearCart(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("cart_id IN (?)", r.DB.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func ownedLine(tx *gorm.DB, userID string, lineID uint) *gorm.DB {
	return tx.Model(&models.CartLine{}).
		Where("id = ? AND cart_id IN (?)", lineID, tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Cart{}).Select("id").Where("user_id = ?", userID))
}

func touchCart(tx *gorm.DB, cartID uint, now time.Time) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", now).Error
}
