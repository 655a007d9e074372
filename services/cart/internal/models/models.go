package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID    string    `gorm:"size:255;uniqueIndex;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLine is unique per (cart, product, size, color). Size and color are stored as
// empty strings rather than NULL so the unique index covers lines without a variant.
type CartLine struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                                  json:"id"`
	CartID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_line_variant,priority:1" json:"cartId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line_variant,priority:2"       json:"productId"`
	Size      string    `gorm:"size:50;not null;default:'';uniqueIndex:idx_cart_line_variant,priority:3" json:"size"`
	Color     string    `gorm:"size:50;not null;default:'';uniqueIndex:idx_cart_line_variant,priority:4" json:"color"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"                     json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is the cart's read-only view of the catalog table.
type Product struct {
	ID          uint            `gorm:"primaryKey"            json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)"    json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  *uint           `json:"categoryId"`
}

func (Product) TableName() string {
	return "products"
}
