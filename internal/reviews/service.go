// Package reviews accepts buyer ratings and keeps the product's derived
// rating in step with them.
package reviews

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fjod/go_marketplace/internal/cache"
	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/logger"
	"github.com/fjod/go_marketplace/internal/repository"
)

type Service struct {
	store repository.Store
	cache cache.CatalogCache
}

func NewService(store repository.Store, c cache.CatalogCache) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{store: store, cache: c}
}

func validate(stars int, comment string) error {
	if stars < domain.MinStars || stars > domain.MaxStars {
		return domain.Invalid("stars must be between %d and %d", domain.MinStars, domain.MaxStars)
	}
	if strings.TrimSpace(comment) == "" {
		return domain.Invalid("comment is required")
	}
	if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
		return domain.Invalid("comment must not exceed %d characters", domain.MaxCommentLength)
	}
	return nil
}

// Submit stores a rating and recomputes the product's rating and rating count
// in the same transaction. A buyer may review the same product more than once.
func (s *Service) Submit(ctx context.Context, buyerID, productID int64, stars int, comment string) (*domain.Rating, error) {
	if err := validate(stars, comment); err != nil {
		return nil, err
	}

	rating := &domain.Rating{
		ProductID: productID,
		BuyerID:   buyerID,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
	}
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return err
		}
		if _, err := q.GetUser(ctx, buyerID); err != nil {
			return err
		}
		if err := q.CreateRating(ctx, rating); err != nil {
			return err
		}
		return q.RefreshProductRating(ctx, productID)
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateProduct(ctx, s.cache, productID)
	logger.FromContext(ctx).Info("review submitted", "product_id", productID, "buyer_id", buyerID, "stars", stars)
	return rating, nil
}

// List returns a product's reviews, newest first.
func (s *Service) List(ctx context.Context, productID int64) ([]*domain.Rating, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.ListRatingsByProduct(ctx, productID)
}
