// Package payment wraps the card payment provider. The order engine only sees the
// Gateway and WebhookParser interfaces.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrSignature = errors.New("invalid webhook signature")

type LineItem struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int64
	Image       string
}

type CheckoutSessionInput struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

type PaymentIntentInput struct {
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
	ID           string `json:"paymentIntentId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type SessionLine struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

type SessionDetails struct {
	ID            string        `json:"id"`
	AmountTotal   int64         `json:"amount_total"`
	Currency      string        `json:"currency"`
	CustomerEmail string        `json:"customer_email"`
	CustomerName  string        `json:"customer_name"`
	PaymentStatus string        `json:"payment_status"`
	Status        string        `json:"status"`
	LineItems     []SessionLine `json:"line_items"`
	Created       int64         `json:"created"`
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntent, error)
	GetCheckoutSession(ctx context.Context, id string) (*SessionDetails, error)
}

type EventKind int

const (
	KindIgnored EventKind = iota
	KindSucceeded
	KindFailed
	KindRefunded
)

// Event is a verified webhook event. OrderID is zero when the provider object carried
// no usable orderId metadata.
type Event struct {
	ID              string
	Type            string
	Kind            EventKind
	OrderID         uint
	PaymentIntentID string
}

type WebhookParser interface {
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}

// ToCents converts a decimal currency amount to the provider's smallest unit,
// rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
