package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/cart/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartLine{}))
	return &GormRepo{DB: db}
}

func seedProduct(t *testing.T, db *gorm.DB, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: "Ball", Description: "match ball", Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestGetOrCreateCart_Idempotent(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.GetOrCreateCart(ctx, "u1")
	require.NoError(t, err)
	second, err := r.GetOrCreateCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := r.GetOrCreateCart(ctx, "u2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGetOrCreateCart_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := r.GetOrCreateCart(ctx, "u1")
			if assert.NoError(t, err) {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, r.DB.Model(&models.Cart{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAddLine_MergesSameVariant(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r.DB, "10.00", 10)

	_, first, err := r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 2, Size: "M", Color: "red"})
	require.NoError(t, err)
	_, second, err := r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 3, Size: "M", Color: "red"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	_, other, err := r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 1, Size: "L", Color: "red"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	var n int64
	require.NoError(t, r.DB.Model(&models.CartLine{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestAddLine_StockIsCheckedAgainstMergedQuantity(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r.DB, "10.00", 4)

	_, _, err := r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	_, _, err = r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 2})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	var line models.CartLine
	require.NoError(t, r.DB.First(&line).Error)
	assert.Equal(t, 3, line.Quantity, "failed add must roll back")
}

func TestAddLine_MissingProduct(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)

	_, _, err := r.AddLine(context.Background(), "u1", models.CartLine{ProductID: 99, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLineOwnership(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r.DB, "10.00", 10)

	_, line, err := r.AddLine(ctx, "owner", models.CartLine{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = r.GetOrCreateCart(ctx, "intruder")
	require.NoError(t, err)

	_, err = r.UpdateLineQuantity(ctx, "intruder", line.ID, 2)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = r.RemoveLine(ctx, "intruder", line.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := r.UpdateLineQuantity(ctx, "owner", line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = r.UpdateLineQuantity(ctx, "owner", line.ID, 11)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	_, err = r.RemoveLine(ctx, "owner", line.ID)
	require.NoError(t, err)
	_, err = r.RemoveLine(ctx, "owner", line.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearCart(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r.DB, "10.00", 10)

	removed, err := r.ClearCart(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, _, err = r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 1, Size: "S"})
	require.NoError(t, err)
	_, _, err = r.AddLine(ctx, "u1", models.CartLine{ProductID: p.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)
	_, _, err = r.AddLine(ctx, "u2", models.CartLine{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	removed, err = r.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	var n int64
	require.NoError(t, r.DB.Model(&models.CartLine{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
