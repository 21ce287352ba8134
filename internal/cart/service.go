// Package cart manages each buyer's staging set of products.
package cart

import (
	"context"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/logger"
	"github.com/fjod/go_marketplace/internal/repository"
)

type Repository interface {
	repository.UserRepository
	repository.CartRepository
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add puts quantity of the product into the buyer's cart, merging with an
// existing item for the same product.
func (s *Service) Add(ctx context.Context, buyerID, productID int64, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, buyerID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	item, err := s.repo.UpsertCartItem(ctx, buyerID, productID, quantity)
	if err != nil {
		logger.FromContext(ctx).Error("repo upsert cart item failed", "buyer_id", buyerID, "product_id", productID, "error", err)
		return nil, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, buyerID int64) ([]*domain.CartItem, error) {
	return s.repo.ListCartItems(ctx, buyerID)
}

func (s *Service) UpdateQuantity(ctx context.Context, buyerID, itemID int64, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.ownedItem(ctx, buyerID, itemID); err != nil {
		return nil, err
	}

	item, err := s.repo.UpdateCartItemQuantity(ctx, itemID, quantity)
	if err != nil {
		logger.FromContext(ctx).Error("repo update cart item failed", "cart_item_id", itemID, "error", err)
		return nil, err
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, buyerID, itemID int64) error {
	if _, err := s.ownedItem(ctx, buyerID, itemID); err != nil {
		return err
	}

	if err := s.repo.DeleteCartItem(ctx, itemID); err != nil {
		logger.FromContext(ctx).Error("repo delete cart item failed", "cart_item_id", itemID, "error", err)
		return err
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.Invalid("quantity must be greater than 0")
	}
	if quantity > domain.MaxCartItemQuantity {
		return domain.Invalid("quantity must not exceed %d", domain.MaxCartItemQuantity)
	}
	return nil
}

func (s *Service) ownedItem(ctx context.Context, buyerID, itemID int64) (*domain.CartItem, error) {
	item, err := s.repo.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.BuyerID != buyerID {
		return nil, domain.Forbidden("cart item %d does not belong to the caller", itemID)
	}
	return item, nil
}
