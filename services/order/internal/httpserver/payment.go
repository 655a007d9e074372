package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/services/order/internal/service"
	"github.com/Skotchmaster/sport_shop/services/order/internal/transport"
)

const (
	headerStripeSignature = "Stripe-Signature"
	maxWebhookBody        = 1 << 20
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) Config(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "payment.config")

	key, err := h.Svc.Config()
	if err != nil {
		return httpx.Fail(l, "stripe_config_error", notConfigured(err))
	}
	return httpx.OK(c, http.StatusOK, map[string]string{"publishableKey": key})
}

func (h *PaymentHTTP) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.checkout_session")

	var req transport.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "checkout_session_error", httpx.BadBody(err))
	}

	userID, _ := middleware.UserID(c)
	sess, err := h.Svc.CreateCheckoutSession(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "checkout_session_error", notConfigured(err))
	}

	l.Info("checkout_session_created", "session_id", sess.ID, "order_id", req.OrderID)
	return httpx.OK(c, http.StatusCreated, sess)
}

func (h *PaymentHTTP) CreatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.payment_intent")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "payment_intent_error", err)
	}

	var req transport.PaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "payment_intent_error", httpx.BadBody(err))
	}

	pi, err := h.Svc.CreatePaymentIntent(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "payment_intent_error", notConfigured(err))
	}

	l.Info("payment_intent_created", "payment_intent_id", pi.ID, "order_id", req.OrderID)
	return httpx.OK(c, http.StatusCreated, pi)
}

func (h *PaymentHTTP) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.get_session")

	sess, err := h.Svc.GetCheckoutSession(ctx, c.Param("id"))
	if err != nil {
		return httpx.Fail(l, "get_session_error", notConfigured(err))
	}
	return httpx.OK(c, http.StatusOK, sess)
}

// Webhook acknowledges every verified delivery with 200, including ones that
// failed to apply, so the provider does not hammer a broken order.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return httpx.Fail(l, "webhook_error", httpx.BadBody(err))
	}
	if len(payload) > maxWebhookBody {
		l.Warn("webhook_too_large", "limit", maxWebhookBody)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Webhook payload too large")
	}

	res, err := h.Svc.HandleWebhook(ctx, payload, c.Request().Header.Get(headerStripeSignature))
	if err != nil && res == nil {
		return httpx.Fail(l, "webhook_rejected", notConfigured(err))
	}
	// A verified event that could not be applied is answered 500 so the provider
	// delivers it again.
	if err != nil {
		return httpx.Fail(l, "webhook_not_applied",
			echo.NewHTTPError(http.StatusInternalServerError, "Webhook processing failed").SetInternal(err))
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "received": true})
}

func notConfigured(err error) error {
	var msg string
	switch {
	case errors.Is(err, service.ErrPaymentsNotConfigured):
		msg = "Stripe is not configured. Please set STRIPE_SECRET_KEY in environment variables."
	case errors.Is(err, service.ErrWebhookNotConfigured):
		msg = "Webhook not configured"
	case errors.Is(err, service.ErrPublishableKeyMissing):
		msg = "Stripe publishable key not configured"
	default:
		return err
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}
