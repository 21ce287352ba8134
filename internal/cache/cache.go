package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/logger"
)

// CatalogCache holds read-mostly catalog data. Entries are invalidated by
// the writers; a stale read is bounded by the TTL.
type CatalogCache interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetCategories(ctx context.Context) ([]*domain.Category, error)
	SetCategories(ctx context.Context, categories []*domain.Category) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop never stores anything. Used when no redis address is configured.
type Nop struct{}

func (Nop) GetProduct(context.Context, int64) (*domain.Product, error) { return nil, ErrCacheMiss }
func (Nop) SetProduct(context.Context, *domain.Product) error          { return nil }
func (Nop) DeleteProduct(context.Context, int64) error                 { return nil }
func (Nop) GetCategories(context.Context) ([]*domain.Category, error)  { return nil, ErrCacheMiss }
func (Nop) SetCategories(context.Context, []*domain.Category) error    { return nil }

// InvalidateProduct drops a product entry, logging instead of failing: the
// write that triggered it has already committed.
func InvalidateProduct(ctx context.Context, c CatalogCache, id int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := c.DeleteProduct(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("cache invalidate failed", "product_id", id, "error", err)
	}
}
