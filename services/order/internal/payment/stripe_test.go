package payment_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sport_shop/services/order/internal/payment"
	"github.com/Skotchmaster/sport_shop/services/order/internal/payment/paymenttest"
)

const secret = "whsec_test"

func TestParseWebhook(t *testing.T) {
	t.Parallel()
	v := payment.NewWebhookVerifier(secret)

	tests := []struct {
		name    string
		typ     string
		obj     string
		kind    payment.EventKind
		orderID uint
		pi      string
	}{
		{
			name: "intent succeeded", typ: "payment_intent.succeeded",
			obj:  `{"id":"pi_1","object":"payment_intent","metadata":{"orderId":"7","userId":"u1"}}`,
			kind: payment.KindSucceeded, orderID: 7, pi: "pi_1",
		},
		{
			name: "intent failed", typ: "payment_intent.payment_failed",
			obj:  `{"id":"pi_2","object":"payment_intent","metadata":{"orderId":"8"}}`,
			kind: payment.KindFailed, orderID: 8, pi: "pi_2",
		},
		{
			name: "missing order metadata", typ: "payment_intent.succeeded",
			obj:  `{"id":"pi_3","object":"payment_intent","metadata":{}}`,
			kind: payment.KindSucceeded, pi: "pi_3",
		},
		{
			name: "charge refunded", typ: "charge.refunded",
			obj:  `{"id":"ch_1","object":"charge","payment_intent":"pi_9"}`,
			kind: payment.KindRefunded, pi: "pi_9",
		},
		{
			name: "checkout completed", typ: "checkout.session.completed",
			obj:  `{"id":"cs_1","object":"checkout.session","payment_intent":"pi_5","metadata":{"orderId":"3"}}`,
			kind: payment.KindSucceeded, orderID: 3, pi: "pi_5",
		},
		{
			name: "unrelated", typ: "customer.created",
			obj:  `{"id":"cus_1","object":"customer"}`,
			kind: payment.KindIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := paymenttest.EventPayload("evt_"+tt.name, tt.typ, tt.obj)
			ev, err := v.ParseWebhook(body, paymenttest.SignatureHeader(body, secret, time.Now()))
			require.NoError(t, err)
			assert.Equal(t, tt.typ, ev.Type)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.orderID, ev.OrderID)
			assert.Equal(t, tt.pi, ev.PaymentIntentID)
		})
	}
}

func TestParseWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()
	v := payment.NewWebhookVerifier(secret)
	body := paymenttest.EventPayload("evt_1", "payment_intent.succeeded", `{"id":"pi_1","object":"payment_intent"}`)

	_, err := v.ParseWebhook(body, paymenttest.SignatureHeader(body, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, payment.ErrSignature)

	_, err = v.ParseWebhook(body, "")
	assert.ErrorIs(t, err, payment.ErrSignature)

	stale := paymenttest.SignatureHeader(body, secret, time.Now().Add(-time.Hour))
	_, err = v.ParseWebhook(body, stale)
	assert.ErrorIs(t, err, payment.ErrSignature)
}

func TestToCents(t *testing.T) {
	t.Parallel()
	assert.EqualValues(t, 4500, payment.ToCents(decimal.RequireFromString("45.00")))
	assert.EqualValues(t, 1999, payment.ToCents(decimal.RequireFromString("19.99")))
	assert.EqualValues(t, 1, payment.ToCents(decimal.RequireFromString("0.005")))
}
