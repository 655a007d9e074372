package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
)

type Deps struct {
	ReviewHandler *ReviewHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	reviews := e.Group("/reviews")
	reviews.GET("", d.ReviewHandler.List)
	reviews.POST("", d.ReviewHandler.Create, middleware.RequireUser)
	reviews.PUT("/:id", d.ReviewHandler.Update, middleware.RequireUser)
	reviews.DELETE("/:id", d.ReviewHandler.Delete, middleware.RequireUser)
}
