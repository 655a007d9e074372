// Package httpx carries the response envelope shared by all services:
// {success, data?, message?, errors?}.
package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
)

type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

func OKMessage(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// ErrorHandler renders every error returned by a handler or middleware as an
// envelope. It is installed as echo's HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperr.Status(err)
	msg := apperr.Message(err)
	fields := apperr.Fields(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			var ae *apperr.Error
			if errors.As(he.Internal, &ae) {
				fields = ae.Fields
			}
		}
	}

	body := Envelope{Success: false, Message: msg, Errors: fields}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

// Fail logs err at a level matching its HTTP status and hands it back so the
// handler can return it to the error handler.
func Fail(l *slog.Logger, event string, err error) error {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", apperr.Message(err))
	}
	return err
}

// BadBody wraps a bind error in the validation taxonomy.
func BadBody(err error) error {
	return &apperr.Error{Kind: apperr.ErrValidation, Msg: "invalid body: " + bindMessage(err)}
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
