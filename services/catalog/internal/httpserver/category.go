package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/transport"
)

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return httpx.Fail(l, "get_categories_error", err)
	}
	return httpx.OK(c, http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	id, err := pathID(c, "Valid ID is required")
	if err != nil {
		return httpx.Fail(l, "get_category_error", err)
	}

	detail, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return httpx.Fail(l, "get_category_error", err)
	}
	return httpx.OK(c, http.StatusOK, detail)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "create_category_error", httpx.BadBody(err))
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return httpx.Fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID, "slug", cat.Slug)
	return httpx.OKMessage(c, http.StatusCreated, "Category created successfully", cat)
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_category")

	id, err := pathID(c, "Valid ID is required")
	if err != nil {
		return httpx.Fail(l, "patch_category_error", err)
	}

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "patch_category_error", httpx.BadBody(err))
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return httpx.Fail(l, "patch_category_error", err)
	}
	return httpx.OKMessage(c, http.StatusOK, "Category updated successfully", cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := pathID(c, "Valid ID is required")
	if err != nil {
		return httpx.Fail(l, "delete_category_error", err)
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return httpx.Fail(l, "delete_category_error", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return httpx.OKMessage(c, http.StatusOK, "Category deleted successfully", map[string]uint{"id": id})
}
