package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	authmw "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/pkg/tokens"
)

const (
	AccessCookie = "accessToken"

	CtxUserID = authmw.CtxUserID
	CtxRole   = authmw.CtxRole
	CtxBearer = "bearer"
)

// StripIdentity drops identity headers supplied by the client. Only the proxy may
// set them, from a verified token.
func StripIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header
		h.Del(authmw.HeaderUserID)
		h.Del(authmw.HeaderUserRole)
		return next(c)
	}
}

// RequireAuth accepts the access token from the cookie or an Authorization bearer
// header.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, bearer := accessToken(c)
			if token == "" {
				return apperr.New(apperr.ErrUnauthenticated, "Authentication required")
			}
			claims, err := tokens.AccessClaimsFromToken(token, secret)
			if err != nil || claims.Subject == "" {
				return apperr.New(apperr.ErrUnauthenticated, "Invalid or expired token")
			}
			setIdentity(c, claims, bearer)
			return next(c)
		}
	}
}

// OptionalAuth forwards the identity of a valid token and treats anything else as
// an anonymous caller.
func OptionalAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, bearer := accessToken(c); token != "" {
				if claims, err := tokens.AccessClaimsFromToken(token, secret); err == nil && claims.Subject != "" {
					setIdentity(c, claims, bearer)
				}
			}
			return next(c)
		}
	}
}

func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if got, _ := c.Get(CtxRole).(string); got != role {
				return apperr.New(apperr.ErrForbidden, "%s access required", role)
			}
			return next(c)
		}
	}
}

func accessToken(c echo.Context) (token string, bearer bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(t) != "" {
			return strings.TrimSpace(t), true
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, false
	}
	return "", false
}

func setIdentity(c echo.Context, claims *tokens.AccessClaims, bearer bool) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxBearer, bearer)
}
