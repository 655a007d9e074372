// Package paymenttest provides an in-memory Gateway and signed webhook payloads for tests.
package paymenttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Skotchmaster/sport_shop/services/order/internal/payment"
)

type Gateway struct {
	mu       sync.Mutex
	Sessions []payment.CheckoutSessionInput
	Intents  []payment.PaymentIntentInput
	Err      error
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, in payment.CheckoutSessionInput) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.Sessions = append(g.Sessions, in)
	id := fmt.Sprintf("cs_test_%d", len(g.Sessions))
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.example.test/" + id}, nil
}

func (g *Gateway) CreatePaymentIntent(_ context.Context, in payment.PaymentIntentInput) (*payment.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.Intents = append(g.Intents, in)
	id := fmt.Sprintf("pi_test_%d", len(g.Intents))
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}
	return &payment.PaymentIntent{
		ClientSecret: id + "_secret",
		ID:           id,
		Amount:       payment.ToCents(in.Amount),
		Currency:     currency,
	}, nil
}

func (g *Gateway) GetCheckoutSession(_ context.Context, id string) (*payment.SessionDetails, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return &payment.SessionDetails{ID: id, Currency: "usd", PaymentStatus: "paid", Status: "complete"}, nil
}

// SignatureHeader builds a Stripe-Signature header for payload signed with secret.
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

// EventPayload renders a minimal provider event whose data.object is obj.
func EventPayload(id, typ, obj string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, id, typ, obj))
}
