package repository

import (
	"context"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
)

func (q *queries) CreateRating(ctx context.Context, r *domain.Rating) error {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO ratings (product_id, buyer_id, stars, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, created_at`,
		r.ProductID, r.BuyerID, r.Stars, r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.NotFound("product %d not found", r.ProductID)
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (q *queries) ListRatingsByProduct(ctx context.Context, productID int64) ([]*domain.Rating, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, product_id, buyer_id, stars, comment, created_at
		 FROM ratings WHERE product_id = $1 ORDER BY created_at DESC, id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query ratings of product %d: %w", productID, err)
	}
	defer rows.Close()

	var ratings []*domain.Rating
	for rows.Next() {
		var r domain.Rating
		if err := rows.Scan(&r.ID, &r.ProductID, &r.BuyerID, &r.Stars, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &r)
	}
	return ratings, rows.Err()
}
