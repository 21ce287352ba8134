package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/lib/pq"
)

const cartItemColumns = `id, buyer_id, product_id, quantity, created_at, updated_at`

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(
		&item.ID,
		&item.BuyerID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (q *queries) UpsertCartItem(ctx context.Context, buyerID, productID int64, quantity int) (*domain.CartItem, error) {
	query := `INSERT INTO cart_items (buyer_id, product_id, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, NOW(), NOW())
	          ON CONFLICT (buyer_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	          WHERE cart_items.quantity + EXCLUDED.quantity <= $4
	          RETURNING ` + cartItemColumns

	item, err := scanCartItem(q.db.QueryRowContext(ctx, query, buyerID, productID, quantity, domain.MaxCartItemQuantity))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Invalid("cart quantity for product %d would exceed %d", productID, domain.MaxCartItemQuantity)
		}
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, domain.NotFound("product %d not found", productID)
		}
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return item, nil
}

func (q *queries) ListCartItems(ctx context.Context, buyerID int64) ([]*domain.CartItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE buyer_id = $1 ORDER BY id`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []*domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *queries) GetCartItem(ctx context.Context, id int64) (*domain.CartItem, error) {
	item, err := scanCartItem(q.db.QueryRowContext(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("cart item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item %d: %w", id, err)
	}
	return item, nil
}

func (q *queries) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	item, err := scanCartItem(q.db.QueryRowContext(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1 RETURNING `+cartItemColumns,
		id, quantity))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("cart item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item %d: %w", id, err)
	}
	return item, nil
}

func (q *queries) DeleteCartItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item %d: %w", id, err)
	}
	return expectAffected(res, domain.NotFound("cart item %d not found", id))
}

func (q *queries) LockCheckoutLines(ctx context.Context, buyerID int64) ([]domain.CheckoutLine, error) {
	query := `SELECT ci.id, ci.product_id, p.title, ci.quantity, p.price
	          FROM cart_items ci
	          JOIN products p ON p.id = ci.product_id
	          WHERE ci.buyer_id = $1
	          ORDER BY ci.id
	          FOR UPDATE OF ci`

	rows, err := q.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query checkout lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CheckoutLine
	for rows.Next() {
		var l domain.CheckoutLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.ProductTitle, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan checkout line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// DeleteCartItems removes exactly the given ids. Rows inserted after the ids
// were read are left alone.
func (q *queries) DeleteCartItems(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}
