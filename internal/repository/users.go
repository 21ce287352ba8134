package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_marketplace/internal/domain"
)

const userColumns = `id, name, email, role, active, created_at`

func (q *queries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return q.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (q *queries) LockUser(ctx context.Context, id int64) (*domain.User, error) {
	return q.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (q *queries) getUser(ctx context.Context, query string, id int64) (*domain.User, error) {
	var u domain.User
	err := q.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	return &u, nil
}
