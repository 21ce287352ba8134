// Package catalog answers read-only product and category queries.
package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/fjod/go_marketplace/internal/cache"
	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/logger"
	"github.com/fjod/go_marketplace/internal/repository"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo  repository.CatalogRepository
	cache cache.CatalogCache
	sfg   singleflight.Group
}

func NewService(repo repository.CatalogRepository, c cache.CatalogCache) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		repo:  repo,
		cache: c,
	}
}

// Search returns every product matching all set filter fields, ordered by id.
func (s *Service) Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Product, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.repo.SearchProducts(ctx, filter)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.SearchProducts(ctx, domain.SearchFilter{})
}

func (s *Service) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListAvailableProducts(ctx)
}

func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.SearchProducts(ctx, domain.SearchFilter{CategoryID: &categoryID})
}

// GetProduct reads through the cache. Concurrent misses for the same id share
// one store lookup, which is detached from the first caller's cancellation.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do("product:"+strconv.FormatInt(id, 10), func() (any, error) {
		lookupCtx := context.WithoutCancel(ctx)

		p, err := s.cache.GetProduct(lookupCtx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn("cache get failed", "product_id", id, "error", err)
		}

		p, err = s.repo.GetProduct(lookupCtx, id)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetProduct(lookupCtx, p); errSet != nil {
			logger.FromContext(ctx).Warn("cache set failed", "product_id", id, "error", errSet)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.FromContext(ctx).Warn("cache get failed", "key", "categories", "error", err)
	}

	categories, err = s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if errSet := s.cache.SetCategories(ctx, categories); errSet != nil {
		logger.FromContext(ctx).Warn("cache set failed", "key", "categories", "error", errSet)
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}
