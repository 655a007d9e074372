package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/gateway/internal/middleware"
	authmw "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
)

type Deps struct {
	AuthURL    string
	CatalogURL string
	CartURL    string
	OrderURL   string
	ReviewURL  string

	JWTSecret    []byte
	Logger       *slog.Logger
	AllowOrigins []string
	SecureCookie bool
}

var mutating = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common(d.Logger, d.AllowOrigins) {
		e.Use(m)
	}
	e.Use(middleware.CSRF(d.SecureCookie, "/health/", apiPrefix+"/auth/", apiPrefix+"/stripe/webhook"))

	proxies := map[string]echo.HandlerFunc{}
	for name, target := range map[string]string{
		"auth":    d.AuthURL,
		"catalog": d.CatalogURL,
		"cart":    d.CartURL,
		"order":   d.OrderURL,
		"review":  d.ReviewURL,
	} {
		p, err := newProxy(name, target)
		if err != nil {
			return err
		}
		proxies[name] = p
	}

	optional := middleware.OptionalAuth(d.JWTSecret)
	required := middleware.RequireAuth(d.JWTSecret)
	admin := middleware.RequireRole(authmw.RoleAdmin)

	e.Any(apiPrefix+"/auth/*", proxies["auth"])

	e.GET(apiPrefix+"/catalog/*", proxies["catalog"], optional)
	e.Match(mutating, apiPrefix+"/catalog/*", proxies["catalog"], required, admin)

	e.GET(apiPrefix+"/reviews", proxies["review"], optional)
	e.POST(apiPrefix+"/reviews", proxies["review"], required)
	e.Match(mutating, apiPrefix+"/reviews/*", proxies["review"], required)

	e.Any(apiPrefix+"/cart", proxies["cart"], required)
	e.Any(apiPrefix+"/cart/*", proxies["cart"], required)

	e.Any(apiPrefix+"/orders", proxies["order"], required)
	e.Any(apiPrefix+"/orders/*", proxies["order"], required)

	e.GET(apiPrefix+"/stripe/config", proxies["order"])
	e.POST(apiPrefix+"/stripe/webhook", proxies["order"])
	e.POST(apiPrefix+"/stripe/checkout-session", proxies["order"], optional)
	e.GET(apiPrefix+"/stripe/session/:id", proxies["order"], optional)
	e.Any(apiPrefix+"/stripe/*", proxies["order"], required)

	return nil
}
