package repo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Review{}))
	return &GormRepo{DB: db}
}

func seedCategory(t *testing.T, r *GormRepo, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug}
	require.NoError(t, r.CreateCategory(context.Background(), &c))
	return c
}

func seedProduct(t *testing.T, r *GormRepo, name, price string, categoryID *uint) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: name + " for every season",
		Price:       decimal.RequireFromString(price),
		Stock:       10,
		CategoryID:  categoryID,
	}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

func names(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestListProducts_Filters(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	balls := seedCategory(t, r, "Balls", "balls")
	seedProduct(t, r, "Football", "25.00", &balls.ID)
	seedProduct(t, r, "Basketball", "40.00", &balls.ID)
	seedProduct(t, r, "Tennis racket", "120.00", nil)

	minPrice := decimal.RequireFromString("30")
	maxPrice := decimal.RequireFromString("130")

	tests := []struct {
		name      string
		filter    ProductFilter
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "search is case insensitive",
			filter:    ProductFilter{Search: "BALL", SortBy: SortName, Asc: true, Limit: 10},
			wantNames: []string{"Basketball", "Football"},
			wantTotal: 2,
		},
		{
			name:      "category",
			filter:    ProductFilter{CategoryID: &balls.ID, SortBy: SortPrice, Limit: 10},
			wantNames: []string{"Basketball", "Football"},
			wantTotal: 2,
		},
		{
			name:      "price range",
			filter:    ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice, SortBy: SortPrice, Asc: true, Limit: 10},
			wantNames: []string{"Basketball", "Tennis racket"},
			wantTotal: 2,
		},
		{
			name:      "pagination keeps the total",
			filter:    ProductFilter{SortBy: SortPrice, Asc: true, Offset: 1, Limit: 1},
			wantNames: []string{"Basketball"},
			wantTotal: 3,
		},
		{
			name:      "newest first by default",
			filter:    ProductFilter{Limit: 10},
			wantNames: []string{"Tennis racket", "Basketball", "Football"},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, items, err := r.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantNames, names(items))
		})
	}
}

func TestGetProduct_WithCategoryAndRelated(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	shoes := seedCategory(t, r, "Shoes", "shoes")
	runner := seedProduct(t, r, "Runner", "80.00", &shoes.ID)
	for _, n := range []string{"Trail", "Spike", "Court", "Walker", "Sandal"} {
		seedProduct(t, r, n, "50.00", &shoes.ID)
	}
	lonely := seedProduct(t, r, "Yoga mat", "20.00", nil)

	p, err := r.GetProduct(ctx, runner.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Category)
	assert.Equal(t, "shoes", p.Category.Slug)

	related, err := r.RelatedProducts(ctx, p, 4)
	require.NoError(t, err)
	assert.Len(t, related, 4)
	assert.NotContains(t, names(related), "Runner")

	related, err = r.RelatedProducts(ctx, &lonely, 4)
	require.NoError(t, err)
	assert.Empty(t, related)

	_, err = r.GetProduct(ctx, 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductReviews_Stats(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	p := seedProduct(t, r, "Helmet", "60.00", nil)
	for i, rating := range []int{5, 4, 4} {
		require.NoError(t, r.DB.Create(&models.Review{
			UserID:    string(rune('a' + i)),
			ProductID: p.ID,
			Rating:    rating,
		}).Error)
	}

	reviews, stats, err := r.ProductReviews(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
	assert.EqualValues(t, 3, stats.TotalReviews)
	assert.Equal(t, "4.33", stats.AverageRating.StringFixed(2))

	reviews, stats, err = r.ProductReviews(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Zero(t, stats.TotalReviews)
	assert.True(t, stats.AverageRating.IsZero())
}

func TestCreateAndUpdateProduct(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	missing := uint(42)
	err := r.CreateProduct(ctx, &models.Product{Name: "Bat", Description: "Willow cricket bat", Price: decimal.NewFromInt(90), CategoryID: &missing})
	require.ErrorIs(t, err, apperr.ErrValidation)

	p := seedProduct(t, r, "Bat", "90.00", nil)
	cat := seedCategory(t, r, "Cricket", "cricket")

	updated, err := r.UpdateProduct(ctx, p.ID, map[string]any{"stock": 3, "category_id": cat.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Cricket", updated.Category.Name)

	_, err = r.UpdateProduct(ctx, p.ID, map[string]any{"category_id": missing})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = r.UpdateProduct(ctx, 999, map[string]any{"stock": 1})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	require.ErrorIs(t, r.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestCategories(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	run := seedCategory(t, r, "Running", "running")
	swim := seedCategory(t, r, "Aquatics", "aquatics")
	seedProduct(t, r, "Runner", "80.00", &run.ID)
	seedProduct(t, r, "Spike", "95.00", &run.ID)

	err := r.CreateCategory(ctx, &models.Category{Name: "Running again", Slug: "running"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	list, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aquatics", list[0].Name, "ordered by name")
	assert.Zero(t, list[0].ProductsCount)
	assert.EqualValues(t, 2, list[1].ProductsCount)

	c, products, err := r.GetCategory(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", c.Slug)
	assert.Len(t, products, 2)

	_, err = r.UpdateCategory(ctx, swim.ID, map[string]any{"slug": "running"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	renamed, err := r.UpdateCategory(ctx, swim.ID, map[string]any{"name": "Swimming", "slug": "swimming"})
	require.NoError(t, err)
	assert.Equal(t, "swimming", renamed.Slug)

	require.ErrorIs(t, r.DeleteCategory(ctx, run.ID), apperr.ErrConflict)
	require.NoError(t, r.DeleteCategory(ctx, swim.ID))
	require.ErrorIs(t, r.DeleteCategory(ctx, swim.ID), apperr.ErrNotFound)

	_, _, err = r.GetCategory(ctx, swim.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEachProduct(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)

	for _, n := range []string{"A1", "A2", "A3", "A4", "A5"} {
		seedProduct(t, r, n, "1.00", nil)
	}

	var batches, total int
	err := r.EachProduct(context.Background(), 2, func(batch []models.Product) error {
		batches++
		total += len(batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, batches)
	assert.Equal(t, 5, total)
}

func TestDeleteProduct_RefusedWhileReferenced(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.DB.AutoMigrate(&models.CartLine{}, &models.OrderLine{}))

	carted := seedProduct(t, r, "Kettlebell", "35.00", nil)
	ordered := seedProduct(t, r, "Jump rope", "9.00", nil)
	reviewed := seedProduct(t, r, "Chalk bag", "12.00", nil)

	require.NoError(t, r.DB.Create(&models.CartLine{ProductID: carted.ID}).Error)
	require.NoError(t, r.DB.Create(&models.OrderLine{ProductID: ordered.ID}).Error)
	require.NoError(t, r.DB.Create(&models.Review{UserID: "u1", ProductID: reviewed.ID, Rating: 5}).Error)

	err := r.DeleteProduct(ctx, carted.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Cannot delete product that is in a cart", apperr.Message(err))

	err = r.DeleteProduct(ctx, ordered.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Cannot delete product with orders", apperr.Message(err))

	for _, id := range []uint{carted.ID, ordered.ID} {
		_, err := r.GetProduct(ctx, id)
		require.NoError(t, err, "refused delete keeps the product")
	}

	require.NoError(t, r.DB.Where("product_id = ?", carted.ID).Delete(&models.CartLine{}).Error)
	require.NoError(t, r.DeleteProduct(ctx, carted.ID))

	require.NoError(t, r.DeleteProduct(ctx, reviewed.ID))
	var left int64
	require.NoError(t, r.DB.Model(&models.Review{}).Where("product_id = ?", reviewed.ID).Count(&left).Error)
	assert.Zero(t, left, "reviews go with the product")
}
