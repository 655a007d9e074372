package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/services/review/internal/service"
	"github.com/Skotchmaster/sport_shop/services/review/internal/transport"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	raw := c.QueryParam("productId")
	if raw == "" {
		return httpx.Fail(l, "list_reviews_error", apperr.New(apperr.ErrValidation, "productId is required"))
	}
	productID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return httpx.Fail(l, "list_reviews_error", apperr.New(apperr.ErrValidation, "productId must be a valid integer"))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	out, err := h.Svc.List(ctx, uint(productID), limit, offset)
	if err != nil {
		return httpx.Fail(l, "list_reviews_error", err)
	}
	return httpx.OK(c, http.StatusOK, out)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "create_review_error", err)
	}

	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "create_review_error", httpx.BadBody(err))
	}

	rv, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "create_review_error", err)
	}

	l.Info("create_review_success", "review_id", rv.ID, "product_id", rv.ProductID)
	return httpx.OKMessage(c, http.StatusCreated, "Review created successfully", rv)
}

func (h *ReviewHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.update")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "update_review_error", err)
	}
	id, err := reviewID(c)
	if err != nil {
		return httpx.Fail(l, "update_review_error", err)
	}

	var req transport.UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "update_review_error", httpx.BadBody(err))
	}

	rv, err := h.Svc.Update(ctx, userID, id, req)
	if err != nil {
		return httpx.Fail(l, "update_review_error", err)
	}
	return httpx.OKMessage(c, http.StatusOK, "Review updated successfully", rv)
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "delete_review_error", err)
	}
	id, err := reviewID(c)
	if err != nil {
		return httpx.Fail(l, "delete_review_error", err)
	}

	if err := h.Svc.Delete(ctx, userID, id); err != nil {
		return httpx.Fail(l, "delete_review_error", err)
	}

	l.Info("delete_review_success", "review_id", id)
	return httpx.OKMessage(c, http.StatusOK, "Review deleted successfully", nil)
}

func reviewID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "Valid review ID is required")
	}
	return uint(id), nil
}
