package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/sport_shop/pkg/middleware/logging"
)

const (
	CSRFCookie = "XSRF-TOKEN"
	CSRFHeader = "X-CSRF-Token"
)

func Common(logger *slog.Logger, origins []string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		StripIdentity,
		loggingmw.RequestLogger(logger),
		ecM.Secure(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     origins,
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, CSRFHeader, "Stripe-Signature",
			},
		}),
	}
}

// CSRF guards cookie-authenticated requests with a double-submit token. Auth routes,
// the payment webhook, bearer-token calls and callers without an access cookie are
// not checked.
func CSRF(secure bool, exempt ...string) echo.MiddlewareFunc {
	return ecM.CSRFWithConfig(ecM.CSRFConfig{
		TokenLookup:    "header:" + CSRFHeader,
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			for _, p := range exempt {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			if strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ") {
				return true
			}
			ck, err := c.Cookie(AccessCookie)
			return err != nil || ck.Value == ""
		},
	})
}
