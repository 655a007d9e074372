package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name      string    `gorm:"size:100;not null"                  json:"name"`
	Slug      string    `gorm:"size:100;not null;uniqueIndex"      json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product owns the products table. Cart and order read it through their own views.
type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                        json:"id"`
	Name        string          `gorm:"size:200;not null"                               json:"name"`
	Description string          `gorm:"type:text;not null"                              json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"                     json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"             json:"stock"`
	ImageURL    string          `gorm:"size:1024"                                       json:"imageUrl"`
	CategoryID  *uint           `gorm:"index"                                           json:"categoryId"`
	Category    *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	CreatedBy   string          `gorm:"size:255"                                        json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Review is the catalog's read-only view of the reviews table.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `json:"userId"`
	ProductID uint      `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string {
	return "reviews"
}

// CartLine and OrderLine are the catalog's views of rows that pin a product in
// place. Only the product reference is read.
type CartLine struct {
	ID        uint
	ProductID uint
}

func (CartLine) TableName() string {
	return "cart_lines"
}

type OrderLine struct {
	ID        uint
	ProductID uint
}

func (OrderLine) TableName() string {
	return "order_items"
}

type ReviewStats struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int64           `json:"totalReviews"`
}

type CategoryWithCount struct {
	Category
	ProductsCount int64 `json:"productsCount"`
}
