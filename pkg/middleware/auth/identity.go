package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
)

// Identity headers are set by the gateway after it has verified the access token.
// The gateway drops any client-supplied copy before proxying.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	CtxUserID = "user_id"
	CtxRole   = "role"

	RoleAdmin = "admin"
)

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !setIdentity(c) {
			return apperr.New(apperr.ErrUnauthenticated, "Authentication required")
		}
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !setIdentity(c) {
			return apperr.New(apperr.ErrUnauthenticated, "Authentication required")
		}
		if role, _ := c.Get(CtxRole).(string); role != RoleAdmin {
			return apperr.New(apperr.ErrForbidden, "admin access required")
		}
		return next(c)
	}
}

// OptionalUser records the identity when present and never rejects.
func OptionalUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		setIdentity(c)
		return next(c)
	}
}

func UserID(c echo.Context) (string, error) {
	s, ok := c.Get(CtxUserID).(string)
	if !ok || s == "" {
		return "", apperr.New(apperr.ErrUnauthenticated, "Authentication required")
	}
	return s, nil
}

func setIdentity(c echo.Context) bool {
	uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	if uid == "" {
		return false
	}
	c.Set(CtxUserID, uid)
	c.Set(CtxRole, strings.TrimSpace(c.Request().Header.Get(HeaderUserRole)))
	return true
}
