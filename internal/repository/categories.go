package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
)

func (q *queries) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (q *queries) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("category %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query category %d: %w", id, err)
	}
	return &c, nil
}
