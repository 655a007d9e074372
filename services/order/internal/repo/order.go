package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/services/order/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

type PlaceOrderInput struct {
	UserID          string
	ShippingAddress string
}

// PlaceOrder turns the user's cart into an order in one transaction. Stock is taken
// with a conditional decrement per line so two concurrent orders can never take the
// same unit. Lines are processed in product id order to keep lock order stable.
func (r *GormRepo) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", in.UserID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrEmptyCart, "Cart is empty")
			}
			return fmt.Errorf("load cart: %w", err)
		}

		var lines []models.CartLine
		if err := tx.Where("cart_id = ?", cart.ID).Order("product_id ASC, id ASC").Find(&lines).Error; err != nil {
			return fmt.Errorf("load cart lines: %w", err)
		}
		if len(lines) == 0 {
			return apperr.New(apperr.ErrEmptyCart, "Cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderLine, 0, len(lines))
		for _, l := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", l.ProductID, l.Quantity).
				Update("stock", gorm.Expr("stock - ?", l.Quantity))
			if res.Error != nil {
				return fmt.Errorf("decrement stock: %w", res.Error)
			}

			var p models.Product
			if err := tx.First(&p, l.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.New(apperr.ErrNotFound, "Product not found")
				}
				return err
			}
			if res.RowsAffected == 0 {
				return apperr.New(apperr.ErrInsufficientStock, "Product %s is out of stock", p.Name)
			}

			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
			items = append(items, models.OrderLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     p.Price,
				Size:      l.Size,
				Color:     l.Color,
			})
		}

		order = models.Order{
			UserID:          in.UserID,
			TotalAmount:     total,
			Status:          models.StatusPending,
			ShippingAddress: in.ShippingAddress,
			Items:           items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// GetOrder loads an order owned by userID. An order owned by someone else is
// reported as not found.
func (r *GormRepo) GetOrder(ctx context.Context, userID string, orderID uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Order not found")
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ProductsByID(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

type StatusChange struct {
	Order   *models.Order
	From    string
	Changed bool
}

// UpdateStatus moves an owned order to status. Setting the current status again is
// a no-op. Cancelling restores stock.
func (r *GormRepo) UpdateStatus(ctx context.Context, userID string, orderID uint, status string) (*StatusChange, error) {
	var change StatusChange

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "Order not found")
			}
			return err
		}

		change.From = o.Status
		if o.Status == status {
			change.Order = &o
			return nil
		}
		if !models.CanTransition(o.Status, status) {
			return apperr.New(apperr.ErrConflict, "Cannot change order status from %s to %s", o.Status, status)
		}

		var (
			moved bool
			err   error
		)
		if status == models.StatusCancelled {
			moved, err = cancelOrder(tx, o.ID)
		} else {
			moved, err = moveStatus(tx, o.ID, o.Status, status, nil)
		}
		if err != nil {
			return err
		}
		if !moved {
			return apperr.New(apperr.ErrConflict, "Order status changed concurrently")
		}

		if err := tx.First(&o, o.ID).Error; err != nil {
			return err
		}
		change.Order = &o
		change.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func moveStatus(tx *gorm.DB, orderID uint, from, to string, paymentIntentID *string) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	if paymentIntentID != nil {
		updates["payment_intent_id"] = *paymentIntentID
	}
	res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", orderID, from).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// cancelOrder cancels a pending or processing order and puts its quantities back.
// The conditional status update guarantees stock is restored at most once, so
// cancelling an already cancelled or completed order reports false and changes
// nothing.
func cancelOrder(tx *gorm.DB, orderID uint) (bool, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, []string{models.StatusPending, models.StatusProcessing}).
		Updates(map[string]any{"status": models.StatusCancelled, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("cancel order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	var lines []models.OrderLine
	if err := tx.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return false, fmt.Errorf("load order lines: %w", err)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	for _, l := range lines {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", l.ProductID).
			Update("stock", gorm.Expr("stock + ?", l.Quantity)).Error; err != nil {
			return false, fmt.Errorf("restore stock: %w", err)
		}
	}
	return true, nil
}
