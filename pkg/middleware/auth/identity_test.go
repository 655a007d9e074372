package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
)

func newCtx(headers map[string]string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	err := RequireUser(ok)(newCtx(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	c := newCtx(map[string]string{HeaderUserID: "user-1"})
	require.NoError(t, RequireUser(ok)(c))
	uid, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name    string
		headers map[string]string
		wantErr error
	}{
		{name: "anonymous", headers: nil, wantErr: apperr.ErrUnauthenticated},
		{name: "plain user", headers: map[string]string{HeaderUserID: "u", HeaderUserRole: "user"}, wantErr: apperr.ErrForbidden},
		{name: "admin", headers: map[string]string{HeaderUserID: "u", HeaderUserRole: RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := RequireAdmin(ok)(newCtx(tt.headers))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOptionalUser(t *testing.T) {
	t.Parallel()

	c := newCtx(nil)
	require.NoError(t, OptionalUser(func(c echo.Context) error { return nil })(c))
	_, err := UserID(c)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
