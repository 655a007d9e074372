package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/services/order/internal/dedup"
	"github.com/Skotchmaster/sport_shop/services/order/internal/payment"
	"github.com/Skotchmaster/sport_shop/services/order/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/order/internal/transport"
)

var (
	ErrPaymentsNotConfigured = errors.New("stripe secret key not configured")
	ErrWebhookNotConfigured  = errors.New("stripe webhook secret not configured")
	ErrPublishableKeyMissing = errors.New("stripe publishable key not configured")
)

type PaymentService struct {
	Orders         *OrderService
	Gateway        payment.Gateway
	Webhooks       payment.WebhookParser
	Dedup          dedup.Guard
	PublishableKey string
}

func (s *PaymentService) Config() (string, error) {
	if s.PublishableKey == "" {
		return "", ErrPublishableKeyMissing
	}
	return s.PublishableKey, nil
}

func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID string, req transport.CheckoutSessionRequest) (*payment.CheckoutSession, error) {
	if s.Gateway == nil {
		return nil, ErrPaymentsNotConfigured
	}

	if fields := validateCheckout(req); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	md := copyMetadata(req.Metadata)
	if req.OrderID != 0 {
		if userID == "" {
			return nil, apperr.New(apperr.ErrUnauthenticated, "Authentication required")
		}
		if _, err := s.Orders.Repo.GetOrder(ctx, userID, req.OrderID); err != nil {
			return nil, err
		}
		md["orderId"] = strconv.FormatUint(uint64(req.OrderID), 10)
		md["userId"] = userID
	}

	items := make([]payment.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, payment.LineItem{
			Name:        li.Name,
			Description: li.Description,
			Price:       li.Price,
			Quantity:    li.Quantity,
			Image:       li.Image,
		})
	}

	return s.Gateway.CreateCheckoutSession(ctx, payment.CheckoutSessionInput{
		LineItems:     items,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		CustomerEmail: req.CustomerEmail,
		Metadata:      md,
	})
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID string, req transport.PaymentIntentRequest) (*payment.PaymentIntent, error) {
	if s.Gateway == nil {
		return nil, ErrPaymentsNotConfigured
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation(apperr.FieldError{Field: "amount", Message: "Amount must be positive"})
	}

	md := copyMetadata(req.Metadata)
	md["userId"] = userID
	md["orderId"] = ""
	if req.OrderID != 0 {
		if _, err := s.Orders.Repo.GetOrder(ctx, userID, req.OrderID); err != nil {
			return nil, err
		}
		md["orderId"] = strconv.FormatUint(uint64(req.OrderID), 10)
	}

	return s.Gateway.CreatePaymentIntent(ctx, payment.PaymentIntentInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Metadata: md,
	})
}

func (s *PaymentService) GetCheckoutSession(ctx context.Context, id string) (*payment.SessionDetails, error) {
	if s.Gateway == nil {
		return nil, ErrPaymentsNotConfigured
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperr.New(apperr.ErrValidation, "Session ID is required")
	}
	return s.Gateway.GetCheckoutSession(ctx, id)
}

type WebhookResult struct {
	EventID   string
	Type      string
	Duplicate bool
	Ignored   bool
	OrderID   uint
	Changed   bool
}

// HandleWebhook verifies and applies a provider event. A nil result with an error
// means the delivery was rejected before verification. A result with an error
// means the event was verified but could not be applied.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.Webhooks == nil {
		return nil, ErrWebhookNotConfigured
	}
	if signature == "" {
		return nil, apperr.New(apperr.ErrValidation, "No signature provided")
	}

	ev, err := s.Webhooks.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignature) {
			return nil, apperr.New(apperr.ErrValidation, "Webhook Error: %v", err)
		}
		return nil, err
	}

	l := logging.FromContext(ctx).With("event_id", ev.ID, "event_type", ev.Type)
	res := &WebhookResult{EventID: ev.ID, Type: ev.Type}

	if ev.Kind == payment.KindIgnored {
		l.Info("webhook_event_ignored")
		res.Ignored = true
		return res, nil
	}

	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, ev.ID)
		if err != nil {
			l.Warn("webhook_dedup_unavailable", "error", err)
		} else if seen {
			l.Info("webhook_event_duplicate", "layer", "cache")
			res.Duplicate = true
			return res, nil
		}
	}

	if ev.OrderID == 0 && ev.PaymentIntentID == "" {
		l.Warn("webhook_event_without_order")
	}

	applied, err := s.Orders.Repo.ApplyPayment(ctx, repo.PaymentUpdate{
		EventID:         ev.ID,
		EventType:       ev.Type,
		Outcome:         outcome(ev.Kind),
		OrderID:         ev.OrderID,
		PaymentIntentID: ev.PaymentIntentID,
	})
	if err != nil {
		l.Error("webhook_processing_failed", "error", err)
		return res, err
	}

	if s.Dedup != nil {
		// The ledger row is committed; the mark must land even if the caller left.
		if err := s.Dedup.Mark(context.WithoutCancel(ctx), ev.ID); err != nil {
			l.Warn("webhook_dedup_mark_failed", "error", err)
		}
	}

	switch {
	case applied.Duplicate:
		l.Info("webhook_event_duplicate", "layer", "ledger")
		res.Duplicate = true
	case applied.Order == nil:
		l.Warn("webhook_order_not_found", "order_id", ev.OrderID, "payment_intent_id", ev.PaymentIntentID)
	default:
		res.OrderID = applied.Order.ID
		res.Changed = applied.Changed
		if applied.Changed {
			s.Orders.publishStatus(ctx, applied.Order, applied.From, "payment")
		}
		l.Info("webhook_event_applied", "order_id", applied.Order.ID, "changed", applied.Changed, "status", applied.Order.Status)
	}
	return res, nil
}

func outcome(k payment.EventKind) repo.PaymentOutcome {
	switch k {
	case payment.KindSucceeded:
		return repo.PaymentSucceeded
	case payment.KindFailed:
		return repo.PaymentFailed
	case payment.KindRefunded:
		return repo.PaymentRefunded
	}
	return 0
}

func validateCheckout(req transport.CheckoutSessionRequest) []apperr.FieldError {
	var fields []apperr.FieldError
	if len(req.LineItems) == 0 {
		fields = append(fields, apperr.FieldError{Field: "lineItems", Message: "At least one line item is required"})
	}
	for i, li := range req.LineItems {
		prefix := "lineItems." + strconv.Itoa(i)
		if strings.TrimSpace(li.Name) == "" {
			fields = append(fields, apperr.FieldError{Field: prefix + ".name", Message: "Name is required"})
		}
		if !li.Price.IsPositive() {
			fields = append(fields, apperr.FieldError{Field: prefix + ".price", Message: "Price must be positive"})
		}
		if li.Quantity <= 0 {
			fields = append(fields, apperr.FieldError{Field: prefix + ".quantity", Message: "Quantity must be positive"})
		}
	}
	if !validURL(req.SuccessURL) {
		fields = append(fields, apperr.FieldError{Field: "successUrl", Message: "Invalid url"})
	}
	if !validURL(req.CancelURL) {
		fields = append(fields, apperr.FieldError{Field: "cancelUrl", Message: "Invalid url"})
	}
	if req.CustomerEmail != "" && !strings.Contains(req.CustomerEmail, "@") {
		fields = append(fields, apperr.FieldError{Field: "customerEmail", Message: "Invalid email"})
	}
	return fields
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func copyMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}
