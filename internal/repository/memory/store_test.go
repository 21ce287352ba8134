package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded(t *testing.T) (*Store, *domain.Product) {
	t.Helper()
	s := NewStore()
	s.SeedDemoData()
	p := &domain.Product{ASIN: "B1", Title: "Lamp", Price: decimal.RequireFromString("9.99"), QuantityAvailable: 3, VendorID: 2}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return s, p
}

func TestUpsertCartItem_MergesQuantity(t *testing.T) {
	s, p := newSeeded(t)
	ctx := context.Background()

	a, err := s.UpsertCartItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	b, err := s.UpsertCartItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 5, b.Quantity)

	_, err = s.UpsertCartItem(ctx, 1, 404, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.UpsertCartItem(ctx, 404, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInTx_RestoresStateOnError(t *testing.T) {
	s, p := newSeeded(t)
	ctx := context.Background()
	_, err := s.UpsertCartItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(q repository.Queries) error {
		o := &domain.Order{BuyerID: 1, TotalAmount: p.Price, CreatedAt: time.Now()}
		require.NoError(t, q.CreateOrder(ctx, o))
		require.NoError(t, q.DeleteCartItems(ctx, []int64{1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := s.ListOrdersByBuyer(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := s.ListCartItems(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFailOn(t *testing.T) {
	s, p := newSeeded(t)
	ctx := context.Background()
	injected := errors.New("disk full")

	s.FailOn("GetProduct", injected)
	_, err := s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, injected)

	s.FailOn("GetProduct", nil)
	_, err = s.GetProduct(ctx, p.ID)
	assert.NoError(t, err)
}

func TestDeleteProduct_CascadeAndRestrict(t *testing.T) {
	s, p := newSeeded(t)
	ctx := context.Background()

	_, err := s.UpsertCartItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, s.CreateRating(ctx, &domain.Rating{ProductID: p.ID, BuyerID: 1, Stars: 4, Comment: "fine"}))

	other := &domain.Product{ASIN: "B2", Title: "Chair", Price: decimal.NewFromInt(50), VendorID: 2}
	require.NoError(t, s.CreateProduct(ctx, other))
	o := &domain.Order{BuyerID: 1, TotalAmount: other.Price, CreatedAt: time.Now()}
	require.NoError(t, s.CreateOrder(ctx, o))
	require.NoError(t, s.CreateOrderItem(ctx, &domain.OrderItem{OrderID: o.ID, ProductID: other.ID, Quantity: 1, UnitPrice: other.Price}))

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	items, err := s.ListCartItems(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
	ratings, err := s.ListRatingsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ratings)

	assert.ErrorIs(t, s.DeleteProduct(ctx, other.ID), domain.ErrConflict)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), domain.ErrNotFound)
}

func TestRefreshProductRating(t *testing.T) {
	s, p := newSeeded(t)
	ctx := context.Background()

	for _, stars := range []int{5, 5, 4} {
		require.NoError(t, s.CreateRating(ctx, &domain.Rating{ProductID: p.ID, BuyerID: 3, Stars: stars, Comment: "ok"}))
	}
	require.NoError(t, s.RefreshProductRating(ctx, p.ID))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.67, got.Rating, 1e-9)
	assert.Equal(t, int64(3), got.RatingCount)
}

func TestSearchProducts_OrderedByID(t *testing.T) {
	s, _ := newSeeded(t)
	ctx := context.Background()
	require.NoError(t, s.CreateProduct(ctx, &domain.Product{ASIN: "B2", Title: "Floor Lamp", Price: decimal.NewFromInt(80), VendorID: 2}))

	kw := "lamp"
	got, err := s.SearchProducts(ctx, domain.SearchFilter{Keyword: &kw})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Less(t, got[0].ID, got[1].ID)

	err = s.CreateProduct(ctx, &domain.Product{ASIN: "B2", Title: "dup", Price: decimal.NewFromInt(1), VendorID: 2})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOutbox(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	e := &domain.OutboxEvent{AggregateID: "7", EventType: domain.EventOrderCreated, Payload: []byte(`{}`)}
	require.NoError(t, s.InsertOutboxEvent(ctx, e))

	events, err := s.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, s.MarkEventAsProcessed(ctx, e.ID))
	assert.ErrorIs(t, s.MarkEventAsProcessed(ctx, e.ID), domain.ErrNotFound)

	events, err = s.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, s.Outbox()[0].ProcessedAt)
}
