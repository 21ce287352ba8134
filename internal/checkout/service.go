// Package checkout turns a buyer's cart into an order in one transaction.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/fjod/go_marketplace/internal/logger"
	"github.com/fjod/go_marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

type Service struct {
	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Checkout creates an order from every line in the buyer's cart, priced at
// the current product prices, and removes exactly those lines from the cart.
// The buyer row is locked first so checkouts of one buyer run one at a time.
func (s *Service) Checkout(ctx context.Context, buyerID int64) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if _, err := q.LockUser(ctx, buyerID); err != nil {
			return err
		}

		lines, err := q.LockCheckoutLines(ctx, buyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.Subtotal())
		}

		o := &domain.Order{
			BuyerID:     buyerID,
			TotalAmount: total,
			CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
		}
		if err := q.CreateOrder(ctx, o); err != nil {
			return err
		}

		cartItemIDs := make([]int64, 0, len(lines))
		o.Items = make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			item := domain.OrderItem{
				OrderID:      o.ID,
				ProductID:    l.ProductID,
				ProductTitle: l.ProductTitle,
				Quantity:     l.Quantity,
				UnitPrice:    l.UnitPrice,
			}
			if err := q.CreateOrderItem(ctx, &item); err != nil {
				return err
			}
			o.Items = append(o.Items, item)
			cartItemIDs = append(cartItemIDs, l.CartItemID)
		}

		if err := q.DeleteCartItems(ctx, cartItemIDs); err != nil {
			return err
		}

		event, err := orderCreatedEvent(o)
		if err != nil {
			return err
		}
		if err := q.InsertOutboxEvent(ctx, event); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("order created",
		"order_id", order.ID,
		"buyer_id", buyerID,
		"items", len(order.Items),
		"total", order.TotalAmount.StringFixed(2))
	return order, nil
}

func orderCreatedEvent(o *domain.Order) (*domain.OutboxEvent, error) {
	payload, err := json.Marshal(domain.OrderCreatedPayload{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Items:       o.Items,
		CreatedAt:   o.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order created payload: %w", err)
	}
	return &domain.OutboxEvent{
		AggregateID: strconv.FormatInt(o.ID, 10),
		EventType:   domain.EventOrderCreated,
		Payload:     payload,
	}, nil
}

// ListOrders returns the buyer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	return s.store.ListOrdersByBuyer(ctx, buyerID)
}

func (s *Service) GetOrder(ctx context.Context, buyerID, orderID int64) (*domain.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, domain.Forbidden("order %d does not belong to the caller", orderID)
	}
	return o, nil
}
