package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/pkg/httpx"
	authmw "github.com/Skotchmaster/sport_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/models"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/service"
)

type testEnv struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	product models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartLine{}))

	p := models.Product{Name: "Shin guards", Price: decimal.RequireFromString("15.50"), Stock: 5}
	require.NoError(t, db.Create(&p).Error)

	r := &repo.GormRepo{DB: db}
	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler
	Register(e, &Deps{CartHandler: &CartHTTP{Svc: &service.CartService{Repo: r, Events: mykafka.Nop{}}}})

	return &testEnv{e: e, repo: r, product: p}
}

func (env *testEnv) do(t *testing.T, method, path, userID, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(authmw.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestCartRoutes_RequireIdentity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authentication required", body["message"])
}

func TestCartRoutes_AddGetClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/cart", "u1", `{"productId":1,"quantity":2,"size":"M"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Item added to cart", body["message"])

	rec, body = env.do(t, http.MethodGet, "/cart", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 1)
	assert.Equal(t, "31", data["total"])

	rec, body = env.do(t, http.MethodDelete, "/cart", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared successfully", body["message"])
}

func TestCartRoutes_Errors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{name: "bad item id", method: http.MethodPut, path: "/cart/items/abc", body: `{"quantity":1}`, status: http.StatusBadRequest, msg: "Valid item ID is required"},
		{name: "unknown item", method: http.MethodDelete, path: "/cart/items/42", status: http.StatusNotFound, msg: "Cart item not found"},
		{name: "unknown product", method: http.MethodPost, path: "/cart", body: `{"productId":99}`, status: http.StatusNotFound, msg: "Product not found"},
		{name: "over stock", method: http.MethodPost, path: "/cart", body: `{"productId":1,"quantity":6}`, status: http.StatusBadRequest, msg: "Insufficient stock"},
		{name: "zero quantity", method: http.MethodPost, path: "/cart", body: `{"productId":1,"quantity":0}`, status: http.StatusBadRequest, msg: "Quantity must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, tt.method, tt.path, "u1", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}
