package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerA int64 = 1
	buyerB int64 = 3
)

func setup(t *testing.T) (*Service, *domain.Product) {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemoData()
	p := &domain.Product{ASIN: "P1", Title: "Mug", Price: decimal.RequireFromString("7.50"), QuantityAvailable: 9, VendorID: 2}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return NewService(store), p
}

func TestAdd_MergesIntoOneItem(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, buyerA, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, buyerA, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := svc.List(ctx, buyerA)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_ConcurrentAddsAreNotLost(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, buyerA, p.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := svc.List(ctx, buyerA)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Quantity)
}

func TestAdd_Errors(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		buyer    int64
		product  int64
		quantity int
		want     error
	}{
		{"zero quantity", buyerA, p.ID, 0, domain.ErrValidation},
		{"negative quantity", buyerA, p.ID, -2, domain.ErrValidation},
		{"unknown product", buyerA, 999, 1, domain.ErrNotFound},
		{"unknown buyer", 999, p.ID, 1, domain.ErrNotFound},
		{"above line cap", buyerA, p.ID, domain.MaxCartItemQuantity + 1, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.buyer, tt.product, tt.quantity)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, buyerA, p.ID, 4)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, buyerA, item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, buyerA, item.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateQuantity(ctx, buyerA, item.ID, domain.MaxCartItemQuantity+1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateQuantity(ctx, buyerB, item.ID, 2)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateQuantity(ctx, buyerA, 12345, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, buyerA, p.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Remove(ctx, buyerB, item.ID), domain.ErrForbidden)
	require.NoError(t, svc.Remove(ctx, buyerA, item.ID))
	assert.ErrorIs(t, svc.Remove(ctx, buyerA, item.ID), domain.ErrNotFound)

	items, err := svc.List(ctx, buyerA)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAdd_MergeCannotExceedLineCap(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, buyerA, p.ID, domain.MaxCartItemQuantity)
	require.NoError(t, err)

	_, err = svc.Add(ctx, buyerA, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	items, err := svc.List(ctx, buyerA)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.MaxCartItemQuantity, items[0].Quantity)
}
