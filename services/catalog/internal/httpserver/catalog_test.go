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
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/service"
)

type testEnv struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Review{}))

	r := &repo.GormRepo{DB: db}
	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler
	Register(e, &Deps{CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: mykafka.Nop{}}}})

	return &testEnv{e: e, repo: r}
}

type caller struct {
	userID string
	role   string
}

var (
	anonymous = caller{}
	customer  = caller{userID: "u1", role: "user"}
	admin     = caller{userID: "a1", role: authmw.RoleAdmin}
)

func (env *testEnv) do(t *testing.T, who caller, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if who.userID != "" {
		req.Header.Set(authmw.HeaderUserID, who.userID)
		req.Header.Set(authmw.HeaderUserRole, who.role)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestAdminRoutes_Guarded(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/catalog/products"},
		{http.MethodPatch, "/catalog/products/1"},
		{http.MethodDelete, "/catalog/products/1"},
		{http.MethodPost, "/catalog/categories"},
		{http.MethodPatch, "/catalog/categories/1"},
		{http.MethodDelete, "/catalog/categories/1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec, _ := env.do(t, anonymous, rt.method, rt.path, `{}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec, body := env.do(t, customer, rt.method, rt.path, `{}`)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestProductRoutes_Lifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, body := env.do(t, admin, http.MethodPost, "/catalog/categories", `{"name":"Team Sports"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Category created successfully", body["message"])
	cat := body["data"].(map[string]any)
	assert.Equal(t, "team-sports", cat["slug"])

	rec, body = env.do(t, admin, http.MethodPost, "/catalog/products",
		`{"name":"Volleyball","description":"Soft touch indoor volleyball","price":"29.99","stock":8,"categoryId":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Product created successfully", body["message"])
	created := body["data"].(map[string]any)
	assert.Equal(t, "a1", created["createdBy"])

	rec, body = env.do(t, anonymous, http.MethodGet, "/catalog/products?categoryId=1&minPrice=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := body["data"].(map[string]any)
	assert.Len(t, page["products"], 1)
	assert.EqualValues(t, 1, page["meta"].(map[string]any)["total"])

	rec, body = env.do(t, anonymous, http.MethodGet, "/catalog/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := body["data"].(map[string]any)
	assert.Equal(t, "Volleyball", detail["product"].(map[string]any)["name"])
	assert.Equal(t, "Team Sports", detail["category"].(map[string]any)["name"])
	assert.Empty(t, detail["reviews"])

	rec, body = env.do(t, anonymous, http.MethodGet, "/catalog/products/search?q=volley", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := body["data"].(map[string]any)
	assert.Equal(t, service.EngineDatabase, res["engine"])
	assert.Len(t, res["products"], 1)

	rec, body = env.do(t, admin, http.MethodPatch, "/catalog/products/1", `{"stock":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product updated successfully", body["message"])
	assert.EqualValues(t, 0, body["data"].(map[string]any)["stock"])

	rec, body = env.do(t, admin, http.MethodDelete, "/catalog/categories/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot delete category with products", body["message"])

	rec, body = env.do(t, admin, http.MethodDelete, "/catalog/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", body["message"])
	assert.EqualValues(t, 1, body["data"].(map[string]any)["id"])

	rec, body = env.do(t, anonymous, http.MethodGet, "/catalog/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := body["data"].([]any)
	require.Len(t, cats, 1)
	assert.EqualValues(t, 0, cats[0].(map[string]any)["productsCount"])
}

func TestCatalogRoutes_Errors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	p := models.Product{Name: "Jump rope", Description: "Speed rope with bearings", Price: decimal.RequireFromString("9.99")}
	require.NoError(t, env.repo.CreateProduct(context.Background(), &p))
	require.NoError(t, env.repo.DB.AutoMigrate(&models.OrderLine{}))
	require.NoError(t, env.repo.DB.Create(&models.OrderLine{ProductID: p.ID}).Error)

	tests := []struct {
		name   string
		who    caller
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{name: "bad product id", who: anonymous, method: http.MethodGet, path: "/catalog/products/abc", status: http.StatusBadRequest, msg: "Valid product ID is required"},
		{name: "unknown product", who: anonymous, method: http.MethodGet, path: "/catalog/products/99", status: http.StatusNotFound, msg: "Product not found"},
		{name: "empty search", who: anonymous, method: http.MethodGet, path: "/catalog/products/search?q=", status: http.StatusBadRequest, msg: "Search query is required"},
		{name: "unknown category", who: anonymous, method: http.MethodGet, path: "/catalog/categories/7", status: http.StatusNotFound, msg: "Category not found"},
		{name: "bad category id", who: anonymous, method: http.MethodGet, path: "/catalog/categories/0", status: http.StatusBadRequest, msg: "Valid ID is required"},
		{name: "negative price", who: admin, method: http.MethodPatch, path: "/catalog/products/1", body: `{"price":"-1"}`, status: http.StatusBadRequest, msg: "Price must be positive"},
		{name: "product with orders", who: admin, method: http.MethodDelete, path: "/catalog/products/1", status: http.StatusConflict, msg: "Cannot delete product with orders"},
		{name: "malformed body", who: admin, method: http.MethodPost, path: "/catalog/products", body: `{"name":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, tt.who, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["message"])
			}
		})
	}
}
