package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	PaymentHandler *PaymentHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	orders := e.Group("/orders", middleware.RequireUser)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id", d.OrderHandler.UpdateStatus)

	stripe := e.Group("/stripe")
	stripe.GET("/config", d.PaymentHandler.Config)
	stripe.POST("/webhook", d.PaymentHandler.Webhook)
	stripe.POST("/checkout-session", d.PaymentHandler.CreateCheckoutSession, middleware.OptionalUser)
	stripe.GET("/session/:id", d.PaymentHandler.GetSession, middleware.OptionalUser)
	stripe.POST("/payment-intent", d.PaymentHandler.CreatePaymentIntent, middleware.RequireUser)
}
