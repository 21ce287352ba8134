package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vendorID    int64 = 2
	otherVendor int64 = 10
	buyerID     int64 = 1
)

type fixture struct {
	store   *memory.Store
	svc     *Service
	mine    *domain.Product
	foreign *domain.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.SeedDemoData()
	store.AddUser(&domain.User{ID: otherVendor, Name: "Other Vendor", Email: "o@marketplace.local", Role: domain.RoleVendor, Active: true})

	mine := &domain.Product{ASIN: "M1", Title: "Mine", Price: decimal.RequireFromString("4.00"), VendorID: vendorID}
	foreign := &domain.Product{ASIN: "F1", Title: "Foreign", Price: decimal.RequireFromString("9.00"), VendorID: otherVendor}
	require.NoError(t, store.CreateProduct(ctx, mine))
	require.NoError(t, store.CreateProduct(ctx, foreign))

	return &fixture{store: store, svc: NewService(store), mine: mine, foreign: foreign}
}

func (f *fixture) order(t *testing.T, at time.Time, lines map[*domain.Product]int) *domain.Order {
	t.Helper()
	ctx := context.Background()
	o := &domain.Order{BuyerID: buyerID, TotalAmount: decimal.Zero, CreatedAt: at}
	require.NoError(t, f.store.CreateOrder(ctx, o))
	for p, qty := range lines {
		require.NoError(t, f.store.CreateOrderItem(ctx, &domain.OrderItem{OrderID: o.ID, ProductID: p.ID, Quantity: qty, UnitPrice: p.Price}))
	}
	return o
}

func TestProductStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, stars := range []int{5, 5, 4} {
		require.NoError(t, f.store.CreateRating(ctx, &domain.Rating{ProductID: f.mine.ID, BuyerID: buyerID, Stars: stars, Comment: "x"}))
	}

	stats, err := f.svc.ProductStats(ctx, vendorID, f.mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.7, stats.AverageRating)
	assert.Equal(t, int64(2), stats.FiveStar)
	assert.Equal(t, int64(1), stats.FourStar)

	_, err = f.svc.ProductStats(ctx, vendorID, f.foreign.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.ProductStats(ctx, vendorID, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVendorSales(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	older := f.order(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), map[*domain.Product]int{f.mine: 1})
	newer := f.order(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), map[*domain.Product]int{f.mine: 3, f.foreign: 1})

	sales, err := f.svc.VendorSales(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, newer.ID, sales[0].OrderID)
	assert.Equal(t, older.ID, sales[1].OrderID)
	assert.True(t, sales[0].LineTotal.Equal(decimal.RequireFromString("12.00")))
	assert.Equal(t, "Demo Buyer", sales[0].BuyerName)

	stats, err := f.svc.VendorSalesStats(ctx, vendorID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 4, stats.TotalProductsSold)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("16.00")))
	assert.True(t, stats.AverageOrderValue.Equal(decimal.RequireFromString("8.00")))

	sales, err = f.svc.VendorSales(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)
}

func TestVendorSaleDetail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mixed := f.order(t, time.Now().UTC(), map[*domain.Product]int{f.mine: 2, f.foreign: 5})
	foreignOnly := f.order(t, time.Now().UTC(), map[*domain.Product]int{f.foreign: 1})

	detail, err := f.svc.VendorSaleDetail(ctx, vendorID, mixed.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.True(t, detail.Total.Equal(decimal.RequireFromString("8.00")))
	assert.Equal(t, "Demo Buyer", detail.BuyerName)

	_, err = f.svc.VendorSaleDetail(ctx, vendorID, foreignOnly.ID)
	assert.ErrorIs(t, err, domain.ErrNoStake)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.VendorSaleDetail(ctx, vendorID, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuyerCannotSeeVendorStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.order(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), map[*domain.Product]int{f.mine: 1})

	_, err := f.svc.ProductStats(ctx, buyerID, f.mine.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.VendorSales(ctx, buyerID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.VendorSalesStats(ctx, buyerID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.VendorSaleDetail(ctx, buyerID, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.VendorSales(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
