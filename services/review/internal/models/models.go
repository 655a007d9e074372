package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Review is unique per (user, product); the index backs the duplicate check so two
// concurrent creates cannot both succeed.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                                     json:"id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:idx_review_user_product,priority:1" json:"userId"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_review_user_product,priority:2"  json:"productId"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"                   json:"rating"`
	Comment   *string   `gorm:"type:text"                                                    json:"comment"`
	CreatedAt time.Time `gorm:"index"                                                        json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product is the review service's read-only view of the catalog table.
type Product struct {
	ID   uint   `gorm:"primaryKey"`
	Name string
}

func (Product) TableName() string {
	return "products"
}

type Stats struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int64           `json:"totalReviews"`
}
