package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an edge of the order state machine.
// Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	UserID          string          `gorm:"size:255;index;not null"         json:"userId"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"totalAmount"`
	Status          string          `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	ShippingAddress string          `gorm:"type:text;not null"              json:"shippingAddress"`
	PaymentIntentID *string         `gorm:"size:255;index"                  json:"paymentIntentId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Items []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

// OrderLine keeps the unit price the product had when the order was placed.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"   json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"orderId"`
	ProductID uint            `gorm:"index;not null"              json:"productId"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Size      string          `gorm:"size:50;not null;default:''" json:"size"`
	Color     string          `gorm:"size:50;not null;default:''" json:"color"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (OrderLine) TableName() string {
	return "order_items"
}

// ProcessedEvent is the ledger of payment-provider events already applied.
type ProcessedEvent struct {
	ID          string    `gorm:"primaryKey;size:255"`
	Type        string    `gorm:"size:100;not null"`
	OrderID     *uint     `gorm:"index"`
	ProcessedAt time.Time `gorm:"not null"`
}

// Product, Cart and CartLine are views of tables owned by the catalog and cart
// services.
type Product struct {
	ID          uint            `gorm:"primaryKey"         json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

func (Product) TableName() string { return "products" }

type Cart struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:255;uniqueIndex;not null"`
}

func (Cart) TableName() string { return "carts" }

type CartLine struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint
	ProductID uint
	Size      string
	Color     string
	Quantity  int
}

func (CartLine) TableName() string { return "cart_lines" }
