package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/services/order/internal/service"
	"github.com/Skotchmaster/sport_shop/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "create_order_error", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "create_order_error", httpx.BadBody(err))
	}

	created, err := h.Svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", created.Order.ID, "total", created.Order.TotalAmount.StringFixed(2))
	return httpx.OKMessage(c, http.StatusCreated, "Order created successfully", created)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "list_orders_error", err)
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return httpx.Fail(l, "list_orders_error", err)
	}

	return httpx.OK(c, http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "get_order_error", err)
	}

	id, err := orderID(c)
	if err != nil {
		return httpx.Fail(l, "get_order_error", err)
	}

	view, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return httpx.Fail(l, "get_order_error", err)
	}

	return httpx.OK(c, http.StatusOK, view)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "update_status_error", err)
	}

	id, err := orderID(c)
	if err != nil {
		return httpx.Fail(l, "update_status_error", err)
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "update_status_error", httpx.BadBody(err))
	}

	order, err := h.Svc.UpdateStatus(ctx, userID, id, req.Status)
	if err != nil {
		return httpx.Fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "status", order.Status)
	return httpx.OKMessage(c, http.StatusOK, "Order status updated", order)
}

func orderID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "Valid order ID is required")
	}
	return uint(id), nil
}
