package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/services/cart/internal/models"
)

type AddItemRequest struct {
	ProductID uint   `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type LineView struct {
	CartItem models.CartLine `json:"cartItem"`
	Product  models.Product  `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Cart  models.Cart     `json:"cart"`
	Items []LineView      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddItemResult struct {
	Cart models.Cart     `json:"cart"`
	Item models.CartLine `json:"item"`
}
