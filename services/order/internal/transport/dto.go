package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/services/order/internal/models"
)

type CreateOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderLineView struct {
	OrderItem models.OrderLine `json:"orderItem"`
	Product   *models.Product  `json:"product"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type OrderView struct {
	Order models.Order    `json:"order"`
	Items []OrderLineView `json:"items"`
}

type OrderSummary struct {
	Order      models.Order    `json:"order"`
	Items      []OrderLineView `json:"items"`
	ItemsCount int             `json:"itemsCount"`
}

type CreatedOrder struct {
	Order models.Order       `json:"order"`
	Items []models.OrderLine `json:"items"`
}

type CheckoutLineItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Image       string          `json:"image"`
}

type CheckoutSessionRequest struct {
	LineItems     []CheckoutLineItem `json:"lineItems"`
	SuccessURL    string             `json:"successUrl"`
	CancelURL     string             `json:"cancelUrl"`
	CustomerEmail string             `json:"customerEmail"`
	Metadata      map[string]string  `json:"metadata"`
	OrderID       uint               `json:"orderId"`
}

type PaymentIntentRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	OrderID  uint              `json:"orderId"`
	Metadata map[string]string `json:"metadata"`
}
