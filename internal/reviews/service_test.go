package reviews

import (
	"context"
	"strings"
	"testing"

	"github.com/fjod/go_marketplace/internal/cache"
	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyCache struct {
	cache.Nop
	deleted []int64
}

func (s *spyCache) DeleteProduct(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func setup(t *testing.T) (*Service, *memory.Store, *spyCache, *domain.Product) {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemoData()
	p := &domain.Product{ASIN: "R1", Title: "Headphones", Price: decimal.NewFromInt(60), VendorID: 2}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	spy := &spyCache{}
	return NewService(store, spy), store, spy, p
}

func TestSubmit_RecomputesProductRating(t *testing.T) {
	svc, store, spy, p := setup(t)
	ctx := context.Background()

	for _, stars := range []int{5, 5, 4} {
		_, err := svc.Submit(ctx, 1, p.ID, stars, "good sound")
		require.NoError(t, err)
	}

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.RatingCount)
	assert.InDelta(t, 4.67, got.Rating, 1e-9)
	assert.Equal(t, []int64{p.ID, p.ID, p.ID}, spy.deleted)

	reviews, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, spy, p := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		stars   int
		comment string
	}{
		{"zero stars", 0, "meh"},
		{"six stars", 6, "wow"},
		{"blank comment", 3, "   "},
		{"comment too long", 3, strings.Repeat("é", domain.MaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, 1, p.ID, tt.stars, tt.comment)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := svc.Submit(ctx, 1, p.ID, 3, strings.Repeat("é", domain.MaxCommentLength))
	assert.NoError(t, err)
	assert.Len(t, spy.deleted, 1)
}

func TestSubmit_NotFound(t *testing.T) {
	svc, store, spy, p := setup(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, 999, 4, "nice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Submit(ctx, 999, p.ID, 4, "nice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ratings, err := store.ListRatingsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.Empty(t, spy.deleted)

	_, err = svc.List(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
