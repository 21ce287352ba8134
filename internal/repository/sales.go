package repository

import (
	"context"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/shopspring/decimal"
)

const salesQuery = `SELECT oi.id, o.id, p.id, p.title, oi.quantity, oi.unit_price,
	       o.created_at, u.id, u.name
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	JOIN orders o ON o.id = oi.order_id
	JOIN users u ON u.id = o.buyer_id
	WHERE p.vendor_id = $1`

func (q *queries) ListSalesByVendor(ctx context.Context, vendorID int64) ([]domain.SaleRecord, error) {
	return q.listSales(ctx, salesQuery+` ORDER BY o.created_at DESC, o.id DESC, oi.id`, vendorID)
}

func (q *queries) ListOrderSalesByVendor(ctx context.Context, vendorID, orderID int64) ([]domain.SaleRecord, error) {
	return q.listSales(ctx, salesQuery+` AND o.id = $2 ORDER BY oi.id`, vendorID, orderID)
}

func (q *queries) listSales(ctx context.Context, query string, args ...any) ([]domain.SaleRecord, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.SaleRecord
	for rows.Next() {
		var s domain.SaleRecord
		if err := rows.Scan(
			&s.OrderItemID,
			&s.OrderID,
			&s.ProductID,
			&s.ProductTitle,
			&s.Quantity,
			&s.UnitPrice,
			&s.OrderedAt,
			&s.BuyerID,
			&s.BuyerName,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.LineTotal = s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
