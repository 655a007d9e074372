package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	products := e.Group("/catalog/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	products.POST("", d.CatalogHandler.CreateProduct, middleware.RequireAdmin)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct, middleware.RequireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, middleware.RequireAdmin)

	categories := e.Group("/catalog/categories")
	categories.GET("", d.CatalogHandler.GetCategories)
	categories.GET("/:id", d.CatalogHandler.GetCategory)

	categories.POST("", d.CatalogHandler.CreateCategory, middleware.RequireAdmin)
	categories.PATCH("/:id", d.CatalogHandler.PatchCategory, middleware.RequireAdmin)
	categories.DELETE("/:id", d.CatalogHandler.DeleteCategory, middleware.RequireAdmin)
}
