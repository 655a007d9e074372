package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/service"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "get_cart_error", err)
	}

	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return httpx.Fail(l, "get_cart_error", err)
	}

	return httpx.OK(c, http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "add_item_error", err)
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "add_item_error", httpx.BadBody(err))
	}

	res, err := h.Svc.AddItem(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "add_item_error", err)
	}

	l.Info("item added to cart", "product_id", req.ProductID, "line_id", res.Item.ID)
	return httpx.OKMessage(c, http.StatusCreated, "Item added to cart", res)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "update_item_error", err)
	}

	lineID, err := itemID(c)
	if err != nil {
		return httpx.Fail(l, "update_item_error", err)
	}

	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "update_item_error", httpx.BadBody(err))
	}

	line, err := h.Svc.UpdateItem(ctx, userID, lineID, req.Quantity)
	if err != nil {
		return httpx.Fail(l, "update_item_error", err)
	}

	return httpx.OKMessage(c, http.StatusOK, "Cart item updated", line)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "remove_item_error", err)
	}

	lineID, err := itemID(c)
	if err != nil {
		return httpx.Fail(l, "remove_item_error", err)
	}

	if err := h.Svc.RemoveItem(ctx, userID, lineID); err != nil {
		return httpx.Fail(l, "remove_item_error", err)
	}

	return httpx.OKMessage(c, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "clear_cart_error", err)
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return httpx.Fail(l, "clear_cart_error", err)
	}

	l.Info("cart cleared")
	return httpx.OKMessage(c, http.StatusOK, "Cart cleared successfully", nil)
}

func itemID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "Valid item ID is required")
	}
	return uint(id), nil
}
