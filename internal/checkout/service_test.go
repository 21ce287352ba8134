package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository"
	"github.com/fjod/go_marketplace/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerID int64 = 1
	otherID int64 = 3
)

type fixture struct {
	store *memory.Store
	svc   *Service
	a, b  *domain.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.SeedDemoData()

	a := &domain.Product{ASIN: "A", Title: "Ten", Price: decimal.RequireFromString("10.00"), QuantityAvailable: 5, VendorID: 2}
	b := &domain.Product{ASIN: "B", Title: "FiveFifty", Price: decimal.RequireFromString("5.50"), QuantityAvailable: 5, VendorID: 2}
	require.NoError(t, store.CreateProduct(ctx, a))
	require.NoError(t, store.CreateProduct(ctx, b))

	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{store: store, svc: svc, a: a, b: b}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.UpsertCartItem(ctx, buyerID, f.a.ID, 2)
	require.NoError(t, err)
	_, err = f.store.UpsertCartItem(ctx, buyerID, f.b.ID, 3)
	require.NoError(t, err)
}

func TestCheckout_Totals(t *testing.T) {
	f := setup(t)
	f.fillCart(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, buyerID)
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("36.50")), order.TotalAmount.String())
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(f.a.Price))
	assert.True(t, order.Items[1].UnitPrice.Equal(f.b.Price))
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), order.CreatedAt)

	items, err := f.store.ListCartItems(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckout_PriceIsSnapshot(t *testing.T) {
	f := setup(t)
	f.fillCart(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, buyerID)
	require.NoError(t, err)

	f.a.Price = decimal.RequireFromString("99.00")
	require.NoError(t, f.store.UpdateProduct(ctx, f.a))

	got, err := f.svc.GetOrder(ctx, buyerID, order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("36.50")))
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, buyerID)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.ErrorIs(t, err, domain.ErrValidation)

	orders, err := f.svc.ListOrders(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_UnknownBuyer(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Checkout(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckout_RollbackOnFailure(t *testing.T) {
	f := setup(t)
	f.fillCart(t)
	ctx := context.Background()

	injected := errors.New("insert order item failed")
	f.store.FailOn("CreateOrderItem", injected)

	_, err := f.svc.Checkout(ctx, buyerID)
	assert.ErrorIs(t, err, injected)

	orders, err := f.svc.ListOrders(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := f.store.ListCartItems(ctx, buyerID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Empty(t, f.store.Outbox())

	f.store.FailOn("CreateOrderItem", nil)
	order, err := f.svc.Checkout(ctx, buyerID)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
}

// racingStore adds a cart row right after checkout has read the cart, the
// way a concurrent request would.
type racingStore struct {
	repository.Store
	productID int64
}

func (r *racingStore) InTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return r.Store.InTx(ctx, func(q repository.Queries) error {
		return fn(&racingQueries{Queries: q, productID: r.productID})
	})
}

type racingQueries struct {
	repository.Queries
	productID int64
}

func (r *racingQueries) LockCheckoutLines(ctx context.Context, buyerID int64) ([]domain.CheckoutLine, error) {
	lines, err := r.Queries.LockCheckoutLines(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if _, err := r.Queries.UpsertCartItem(ctx, buyerID, r.productID, 1); err != nil {
		return nil, err
	}
	return lines, nil
}

func TestCheckout_KeepsItemsAddedAfterRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.store.UpsertCartItem(ctx, buyerID, f.a.ID, 2)
	require.NoError(t, err)

	svc := NewService(&racingStore{Store: f.store, productID: f.b.ID})
	order, err := svc.Checkout(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, f.a.ID, order.Items[0].ProductID)

	items, err := f.store.ListCartItems(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.b.ID, items[0].ProductID)
}

func TestCheckout_WritesOutboxEvent(t *testing.T) {
	f := setup(t)
	f.fillCart(t)

	order, err := f.svc.Checkout(context.Background(), buyerID)
	require.NoError(t, err)

	events := f.store.Outbox()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOrderCreated, events[0].EventType)

	var payload domain.OrderCreatedPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, "36.50", payload.TotalAmount)
	assert.Len(t, payload.Items, 2)
}

func TestGetOrder_Ownership(t *testing.T) {
	f := setup(t)
	f.fillCart(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, buyerID)
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, otherID, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetOrder(ctx, buyerID, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		f.fillCart(t)
		day := i
		f.svc.now = func() time.Time { return time.Date(2026, 3, 1+day, 0, 0, 0, 0, time.UTC) }
		_, err := f.svc.Checkout(ctx, buyerID)
		require.NoError(t, err)
	}

	orders, err := f.svc.ListOrders(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
}
