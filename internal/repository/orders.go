package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
)

func (q *queries) CreateOrder(ctx context.Context, o *domain.Order) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO orders (buyer_id, total_amount, created_at) VALUES ($1, $2, $3) RETURNING id`,
		o.BuyerID, o.TotalAmount, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (q *queries) CreateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (q *queries) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := q.db.QueryRowContext(ctx,
		`SELECT id, buyer_id, total_amount, created_at FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("order %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query order %d: %w", id, err)
	}

	items, err := q.listOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (q *queries) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, buyer_id, total_amount, created_at FROM orders
		 WHERE buyer_id = $1 ORDER BY created_at DESC, id DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query orders of buyer %d: %w", buyerID, err)
	}

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// items are loaded after the cursor is closed; a transaction holds a
	// single connection
	for _, o := range orders {
		if o.Items, err = q.listOrderItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (q *queries) listOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, p.title, oi.quantity, oi.unit_price
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductTitle, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
