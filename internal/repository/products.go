package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_marketplace/internal/domain"
)

const productColumns = `id, asin, title, description, price, quantity_available, category_id,
	vendor_id, rating, rating_count, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p          domain.Product
		categoryID sql.NullInt64
	)
	if err := row.Scan(
		&p.ID,
		&p.ASIN,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.QuantityAvailable,
		&categoryID,
		&p.VendorID,
		&p.Rating,
		&p.RatingCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	return &p, nil
}

func (q *queries) listProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SearchProducts builds one SELECT with a WHERE clause per set filter field.
func (q *queries) SearchProducts(ctx context.Context, f domain.SearchFilter) ([]*domain.Product, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != nil {
		conds = append(conds, "category_id = "+arg(*f.CategoryID))
	}
	if kw := f.NormalizedKeyword(); kw != "" {
		p := arg("%" + likeEscaper.Replace(kw) + "%")
		conds = append(conds, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", p, p))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*f.MinRating))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")

	return q.listProducts(ctx, sb.String(), args...)
}

func (q *queries) ListAvailableProducts(ctx context.Context) ([]*domain.Product, error) {
	return q.listProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE quantity_available > 0 ORDER BY id`)
}

func (q *queries) ListProductsByVendor(ctx context.Context, vendorID int64) ([]*domain.Product, error) {
	return q.listProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE vendor_id = $1 ORDER BY id`, vendorID)
}

func (q *queries) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("product %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	return p, nil
}

func (q *queries) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (asin, title, description, price, quantity_available, category_id, vendor_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING id, rating, rating_count, created_at, updated_at`

	err := q.db.QueryRowContext(ctx, query,
		p.ASIN,
		p.Title,
		p.Description,
		p.Price,
		p.QuantityAvailable,
		p.CategoryID,
		p.VendorID,
	).Scan(&p.ID, &p.Rating, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.Conflict("product with asin %q already exists", p.ASIN)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (q *queries) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products
	          SET title = $2, description = $3, price = $4, quantity_available = $5, category_id = $6, updated_at = NOW()
	          WHERE id = $1
	          RETURNING updated_at`

	err := q.db.QueryRowContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.Price,
		p.QuantityAvailable,
		p.CategoryID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("product %d not found", p.ID)
	}
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}

func (q *queries) DeleteProduct(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return domain.Conflict("product %d has orders and cannot be deleted", id)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return expectAffected(res, domain.NotFound("product %d not found", id))
}

func (q *queries) RefreshProductRating(ctx context.Context, productID int64) error {
	query := `UPDATE products p
	          SET rating = COALESCE(r.avg_stars, 0), rating_count = COALESCE(r.cnt, 0), updated_at = NOW()
	          FROM (SELECT AVG(stars)::numeric(3,2) AS avg_stars, COUNT(*) AS cnt
	                FROM ratings WHERE product_id = $1) r
	          WHERE p.id = $1`

	res, err := q.db.ExecContext(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("refresh rating of product %d: %w", productID, err)
	}
	return expectAffected(res, domain.NotFound("product %d not found", productID))
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
