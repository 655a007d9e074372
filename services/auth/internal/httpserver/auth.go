package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/service"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "register_error", httpx.BadBody(err))
	}

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpx.Fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", u.ID)
	return httpx.OKMessage(c, http.StatusCreated, "User registered successfully", u)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(l, "login_error", httpx.BadBody(err))
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return httpx.Fail(l, "login_error", err)
	}

	c.SetCookie(createCookie(AccessCookie, res.Token, res.ExpiresAt, h.SecureCookie))
	l.Info("login_success", "user_id", res.User.ID, "role", res.User.Role)
	return httpx.OKMessage(c, http.StatusOK, "Login successful", res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.logout")

	c.SetCookie(deleteCookie(AccessCookie, h.SecureCookie))
	l.Info("logout_success")
	return httpx.OKMessage(c, http.StatusOK, "Logged out successfully", nil)
}
