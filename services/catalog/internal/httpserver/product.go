package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/service"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/transport"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page, err := h.Svc.ListProducts(ctx, productQuery(c))
	if err != nil {
		return httpx.Fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "total", page.Meta.Total)
	return httpx.OK(c, http.StatusOK, page)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	res, err := h.Svc.SearchProducts(ctx,
		c.QueryParam("q"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
	)
	if err != nil {
		return httpx.Fail(l, "search_products_error", err)
	}

	l.Info("search_products_success", "engine", res.Engine, "total", res.Meta.Total)
	return httpx.OK(c, http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := pathID(c, "Valid product ID is required")
	if err != nil {
		return httpx.Fail(l, "get_product_error", err)
	}

	detail, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return httpx.Fail(l, "get_product_error", err)
	}
	return httpx.OK(c, http.StatusOK, detail)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	userID, err := middleware.UserID(c)
	if err != nil {
		return httpx.Fail(l, "create_product_error", err)
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "create_product_error", httpx.BadBody(err))
	}

	p, err := h.Svc.CreateProduct(ctx, userID, req)
	if err != nil {
		return httpx.Fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return httpx.OKMessage(c, http.StatusCreated, "Product created successfully", p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := pathID(c, "Valid product ID is required")
	if err != nil {
		return httpx.Fail(l, "patch_product_error", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "patch_product_error", httpx.BadBody(err))
	}

	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return httpx.Fail(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return httpx.OKMessage(c, http.StatusOK, "Product updated successfully", p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := pathID(c, "Valid product ID is required")
	if err != nil {
		return httpx.Fail(l, "delete_product_error", err)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return httpx.Fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return httpx.OKMessage(c, http.StatusOK, "Product deleted successfully", transport.DeletedProduct{ID: id})
}

// productQuery reads the list filters. Malformed numbers are ignored rather than
// rejected.
func productQuery(c echo.Context) transport.ProductQuery {
	q := transport.ProductQuery{
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sortBy"),
		Order:    c.QueryParam("order"),
		Page:     util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:    util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
		MinPrice: decimalParam(c, "minPrice"),
		MaxPrice: decimalParam(c, "maxPrice"),
	}
	if v, err := strconv.ParseUint(c.QueryParam("categoryId"), 10, 64); err == nil {
		id := uint(v)
		q.CategoryID = &id
	}
	return q
}

func decimalParam(c echo.Context, name string) *decimal.Decimal {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

func pathID(c echo.Context, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "%s", msg)
	}
	return uint(id), nil
}
