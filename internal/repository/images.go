package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
)

func (q *queries) CreateProductImage(ctx context.Context, img *domain.ProductImage) error {
	query := `INSERT INTO product_images (product_id, image_url, is_primary, display_order)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	err := q.db.QueryRowContext(ctx, query, img.ProductID, img.URL, img.Primary, img.DisplayOrder).Scan(&img.ID)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.NotFound("product %d not found", img.ProductID)
		}
		return fmt.Errorf("insert product image: %w", err)
	}
	return nil
}

func (q *queries) ListProductImages(ctx context.Context, productID int64) ([]*domain.ProductImage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, product_id, image_url, is_primary, display_order
		 FROM product_images WHERE product_id = $1 ORDER BY display_order, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	var images []*domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Primary, &img.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}

func (q *queries) GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	var img domain.ProductImage
	err := q.db.QueryRowContext(ctx,
		`SELECT id, product_id, image_url, is_primary, display_order FROM product_images WHERE id = $1`, id,
	).Scan(&img.ID, &img.ProductID, &img.URL, &img.Primary, &img.DisplayOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("image %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query image %d: %w", id, err)
	}
	return &img, nil
}

func (q *queries) DeleteProductImage(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	return expectAffected(res, domain.NotFound("image %d not found", id))
}
